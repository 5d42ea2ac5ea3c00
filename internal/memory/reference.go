package memory

import "lavendeux/internal/value"

// Reference is the language's l-value: a two-state sum of an
// Unresolved name (not yet looked up in a MemoryManager) or a
// Resolved SlotRef plus a composed index path — `a[i][j]` builds a
// Reference to `a`, then two AddIndex calls, without ever needing a
// distinct "l-value AST node" in the compiler.
//
// Reference implements value.Value so it can sit on the VM's working
// stack like any other value between REF and its final WREF/DREF/RREF.
type Reference struct {
	resolved  bool
	name      string
	ref       SlotRef
	indexPath []value.Value
}

func NewUnresolvedReference(name string) *Reference {
	return &Reference{name: name}
}

func (r *Reference) Type() value.Type { return value.TypeReference }
func (r *Reference) Truthy() bool     { return true }

func (r *Reference) String() string {
	if !r.resolved {
		return "<ref " + r.name + ">"
	}
	return "<ref>"
}

// AddIndex returns a new Reference with idx appended to the index
// path — composition is non-destructive so the original reference
// (e.g. still on the stack beneath it) is unaffected.
func (r *Reference) AddIndex(idx value.Value) *Reference {
	path := make([]value.Value, len(r.indexPath), len(r.indexPath)+1)
	copy(path, r.indexPath)
	path = append(path, idx)
	return &Reference{resolved: r.resolved, name: r.name, ref: r.ref, indexPath: path}
}

// Resolve looks up the base name against a MemoryManager, turning an
// Unresolved reference into a Resolved one. A reference that is
// already resolved is returned unchanged.
func (r *Reference) Resolve(mm *MemoryManager) (*Reference, error) {
	if r.resolved {
		return r, nil
	}
	ref, ok := mm.GetRef(r.name)
	if !ok {
		return nil, &ErrUndefined{Name: r.name}
	}
	return &Reference{resolved: true, name: r.name, ref: ref, indexPath: r.indexPath}, nil
}

// Value reads through the reference: the base slot's value, then each
// index in indexPath applied via value.Index.
func (r *Reference) Value(mm *MemoryManager) (value.Value, error) {
	resolved, err := r.Resolve(mm)
	if err != nil {
		return nil, err
	}
	base, err := mm.Read(resolved.ref)
	if err != nil {
		return nil, err
	}
	cur := base
	for _, idx := range resolved.indexPath {
		v, verr := value.Index(cur, idx)
		if verr != nil {
			return nil, verr
		}
		cur = v
	}
	return cur, nil
}

// Write stores v through the reference. With an empty index path it
// replaces the slot's whole value; otherwise it walks to the
// second-to-last container and mutates it in place (Array/Object are
// reference types in Go, so the mutation is visible through the base
// slot without writing anything back).
func (r *Reference) Write(mm *MemoryManager, v value.Value) error {
	resolved, err := r.Resolve(mm)
	if err != nil {
		return err
	}
	if len(resolved.indexPath) == 0 {
		return mm.WriteRef(resolved.ref, v)
	}
	base, err := mm.Read(resolved.ref)
	if err != nil {
		return err
	}
	container := base
	for _, idx := range resolved.indexPath[:len(resolved.indexPath)-1] {
		next, verr := value.Index(container, idx)
		if verr != nil {
			return verr
		}
		container = next
	}
	last := resolved.indexPath[len(resolved.indexPath)-1]
	if verr := value.SetIndex(container, last, v); verr != nil {
		return verr
	}
	return nil
}

// WriteOrDeclare stores v through the reference like Write, except a
// bare name with no existing binding and no index path declares it
// into the currently-visible scope instead of failing with
// ErrUndefined. This language has no separate variable-declaration
// syntax, so a plain `x = 5` is both the first assignment and the
// declaration — WREF goes through this path, not Write, so that the
// first `=` to a name succeeds the same way every later one does.
// Writing through an index path (`x[0] = 5`) still requires `x` to
// already exist: there's no container to create on demand.
func (r *Reference) WriteOrDeclare(mm *MemoryManager, v value.Value) error {
	if !r.resolved && len(r.indexPath) == 0 {
		if _, ok := mm.GetRef(r.name); !ok {
			mm.Write(r.name, v)
			return nil
		}
	}
	return r.Write(mm, v)
}

// Delete removes the slot (empty index path) or the final key in the
// path from its containing Object. Deleting an index from any other
// container (an Array included) is a type-mismatch error.
func (r *Reference) Delete(mm *MemoryManager) error {
	resolved, err := r.Resolve(mm)
	if err != nil {
		return err
	}
	if len(resolved.indexPath) == 0 {
		return mm.Delete(resolved.ref)
	}
	base, err := mm.Read(resolved.ref)
	if err != nil {
		return err
	}
	container := base
	for _, idx := range resolved.indexPath[:len(resolved.indexPath)-1] {
		next, verr := value.Index(container, idx)
		if verr != nil {
			return verr
		}
		container = next
	}
	last := resolved.indexPath[len(resolved.indexPath)-1]
	obj, ok := container.(*value.Object)
	if !ok {
		return value.NewError(value.ErrTypeMismatch, "cannot delete an index from %s", container.Type())
	}
	if verr := obj.DeleteByValue(last); verr != nil {
		return verr
	}
	return nil
}

func (r *Reference) SlotRef() (SlotRef, bool) { return r.ref, r.resolved }
