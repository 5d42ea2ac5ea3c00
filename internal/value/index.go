package value

// Index implements the IDEX opcode's read path across every indexable
// variant: negative array/string indices count from the end, object
// indexing looks up by key, range indexing treats the range as its
// materialized array. An Integer index selects a single element; a
// Range index selects a substring/subarray/sub-range, collapsing back
// to a single element when the selected span has length 1.
func Index(container, idx Value) (Value, *Error) {
	switch c := container.(type) {
	case *Array:
		start, end, err := indexAsRange(idx, int64(len(c.Elements)))
		if err != nil {
			return nil, err
		}
		if end-start == 1 {
			return c.Elements[start], nil
		}
		elems := make([]Value, end-start)
		copy(elems, c.Elements[start:end])
		return &Array{Elements: elems}, nil
	case String:
		runes := []rune(string(c))
		start, end, err := indexAsRange(idx, int64(len(runes)))
		if err != nil {
			return nil, err
		}
		if end-start == 1 {
			return String(string(runes[start])), nil
		}
		return String(string(runes[start:end])), nil
	case *Object:
		return c.GetByValue(idx)
	case *Range:
		start, end, err := indexAsRange(idx, c.Len())
		if err != nil {
			return nil, err
		}
		rs, re := c.Start+start, c.Start+end
		if re-rs == 1 {
			return NewIntegerFromInt64(rs), nil
		}
		return &Range{Start: rs, End: re}, nil
	default:
		return nil, NewError(ErrTypeMismatch, "cannot index into %s", container.Type())
	}
}

// SetIndex implements the write path: IDEX followed by WREF when the
// target of an assignment is an index expression.
func SetIndex(container, idx, v Value) *Error {
	switch c := container.(type) {
	case *Array:
		i, err := indexAsInt(idx)
		if err != nil {
			return err
		}
		return c.Set(i, v)
	case *Object:
		return c.SetByValue(idx, v)
	default:
		return NewError(ErrTypeMismatch, "cannot assign into index of %s", container.Type())
	}
}

func indexAsInt(idx Value) (int64, *Error) {
	i, ok := idx.(*Integer)
	if !ok {
		return 0, NewError(ErrTypeMismatch, "index must be an integer, got %s", idx.Type())
	}
	return i.Big().Int64(), nil
}

// indexAsRange resolves idx into a [start, end) span against a
// container of the given length. A plain integer resolves a single
// element the same way a bare index always has (negative counts from
// the end); a Range selects an arbitrary span directly by its bounds,
// with no negative-from-end adjustment of its own.
func indexAsRange(idx Value, length int64) (start, end int64, rerr *Error) {
	switch i := idx.(type) {
	case *Integer:
		n := i.Big().Int64()
		pos, ok := resolveIndex(n, int(length))
		if !ok {
			return 0, 0, NewError(ErrIndexOutOfBounds, "index %d out of bounds (len %d)", n, length)
		}
		return int64(pos), int64(pos) + 1, nil
	case *Range:
		if i.Start < 0 || i.End > length {
			return 0, 0, NewError(ErrIndexOutOfBounds, "range %s out of bounds (len %d)", i.String(), length)
		}
		return i.Start, i.End, nil
	default:
		return 0, 0, NewError(ErrTypeMismatch, "index must be an integer or range, got %s", idx.Type())
	}
}
