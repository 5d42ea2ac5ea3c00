// Command lavendeux is a thin frontend over the lexer/parser/compiler/
// vm pipeline: run a script, or disassemble its compiled form. Full
// project tooling (build/watch/package management/LSP/REPL, as seen in
// the command this is grounded on) is out of scope here — this is a
// driver for exercising the engine, not a developer toolchain.
package main

import (
	"fmt"
	"os"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/compiler"
	"lavendeux/internal/disasm"
	"lavendeux/internal/lexer"
	"lavendeux/internal/memory"
	"lavendeux/internal/parser"
	"lavendeux/internal/vm"
)

var commandAliases = map[string]string{
	"r": "run",
	"d": "disasm",
	"c": "check",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "help", "--help", "-h":
		showUsage()
	case "version", "--version", "-v":
		fmt.Println("lavendeux (dev build)")
	case "run":
		requireFile(args, runFile)
	case "disasm":
		requireFile(args, disasmFile)
	case "check":
		requireFile(args, checkFile)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func requireFile(args []string, fn func(path string)) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "missing file argument")
		os.Exit(1)
	}
	fn(args[1])
}

func showUsage() {
	fmt.Println(`lavendeux - scripting language compiler and VM

Usage:
  lavendeux run <file>      Compile and run a script          (alias: r)
  lavendeux disasm <file>   Print disassembled bytecode        (alias: d)
  lavendeux check <file>    Parse and compile without running  (alias: c)
  lavendeux help            Show this message
  lavendeux version         Show version`)
}

// compileFile reads, lexes, parses, and compiles path, printing and
// exiting on the first failure at whichever stage it occurs. The
// file's top-level expressions are wrapped in a single BlockExpr
// before compiling, the same way a `{ ... }` block would be.
func compileFile(path string) *bytecode.Chunk {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", path, err)
		os.Exit(1)
	}

	scanner := lexer.NewScannerWithFile(string(source), path)
	tokens := scanner.ScanTokens()

	p := parser.NewParserWithFile(tokens, path)
	exprs, perr := p.Parse()
	if perr != nil {
		fmt.Fprintf(os.Stderr, "%v\n", perr)
		os.Exit(1)
	}

	program := parser.NewBlockExpr(1, exprs)
	chunk, cerrs := compiler.NewCompiler(path).Compile(program)
	if len(cerrs) > 0 {
		for _, e := range cerrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		os.Exit(1)
	}
	return chunk
}

func runFile(path string) {
	chunk := compileFile(path)
	mm := memory.NewMemoryManager()
	result, rerr := vm.New(chunk, mm).Run()
	if rerr != nil {
		fmt.Fprintf(os.Stderr, "runtime error: %v\n", rerr)
		os.Exit(1)
	}
	fmt.Println(result.String())
}

func disasmFile(path string) {
	chunk := compileFile(path)
	fmt.Print(disasm.Disassemble(chunk))
}

func checkFile(path string) {
	compileFile(path)
	fmt.Printf("%s: compiled successfully\n", path)
}
