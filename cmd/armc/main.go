package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/teris-io/cli"

	"arm-compiler/pkg/arm"
	"arm-compiler/pkg/lang"
)

var Description = strings.ReplaceAll(`
The ARM Compiler takes a single source file written in this repository's small C-like
language and compiles it, in one pass, straight to GNU-style ARM (AArch32) assembly
text. There is no intermediate VM representation: parsing, type checking and code
generation run back to back over one translation unit.
`, "\n", " ")

// The factorial program from the language's own testable-scenarios set (recursive
// call, conditional, arithmetic); used by '--demo' so the tool is runnable without a
// source file on disk.
const demoSource = `
function f(n) {
	if (n == 0) {
		return 1;
	} else {
		return n * f(n - 1);
	}
}
function main() {
	return f(5);
}
`

var ArmCompiler = cli.New(Description).
	WithArg(cli.NewArg("input", "The source file to compile").AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("demo", "Compiles the embedded factorial demo instead of reading a file").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("typecheck", "Runs the type checker and stops before code generation").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("print-ir", "Prints the lowered arm.Statement IR instead of assembly text").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("out", "Writes the output to this file instead of stdout").
		WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	_, demo := options["demo"]

	var source string
	switch {
	case demo:
		source = demoSource
	case len(args) >= 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("ERROR: Unable to open input file: %s\n", err)
			return -1
		}
		source = string(content)
	default:
		fmt.Printf("ERROR: Provide a source file or pass --demo, use --help\n")
		return -1
	}

	program, err := lang.Parse(source)
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'parsing' pass: %s\n", err)
		return -1
	}

	checker := lang.NewChecker()
	if err := checker.Check(program); err != nil {
		fmt.Printf("ERROR: Unable to complete 'typecheck' pass: %s\n", err)
		return -1
	}

	if _, typecheckOnly := options["typecheck"]; typecheckOnly {
		fmt.Println("OK: program type-checks")
		return 0
	}

	lowerer := lang.NewLowerer(program)
	statements, err := lowerer.Lower()
	if err != nil {
		fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
		return -1
	}

	var lines []string
	if _, printIR := options["print-ir"]; printIR {
		for _, s := range statements {
			lines = append(lines, fmt.Sprintf("%#v", s))
		}
	} else {
		codegen := arm.NewCodeGenerator(statements)
		lines, err = codegen.Generate()
		if err != nil {
			fmt.Printf("ERROR: Unable to complete 'codegen' pass: %s\n", err)
			return -1
		}
	}

	out := os.Stdout
	if path, redirect := options["out"]; redirect {
		file, err := os.Create(path)
		if err != nil {
			fmt.Printf("ERROR: Unable to open output file: %s\n", err)
			return -1
		}
		defer file.Close()
		out = file
	}

	for _, line := range lines {
		fmt.Fprintf(out, "%s\n", line)
	}

	return 0
}

func main() { os.Exit(ArmCompiler.Run(os.Args, os.Stdout)) }
