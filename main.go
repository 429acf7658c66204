// This is the main-driver for our compiler.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/ecco-lang/ecco/compiler"
	"github.com/ecco-lang/ecco/diagnostics"
	"github.com/ecco-lang/ecco/optimizer"
)

func main() {
	app := cli.NewApp()
	app.Name = "ecco"
	app.Usage = "Compile a small C-subset program to LLVM-style textual IR."
	app.Version = "1.0.0"
	app.ArgsUsage = "PROGRAM"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "output",
			Usage: "write the generated IR to `PATH` (defaults to the input's stem with a .ll suffix)",
		},
		cli.StringFlag{
			Name:  "logging",
			Value: "INFO",
			Usage: "set the logging threshold: NONE, DEBUG, INFO, WARNING, ERROR, or CRITICAL",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress all non-fatal logging output (equivalent to --logging NONE)",
		},
		cli.IntFlag{
			Name:  "opt",
			Value: 1,
			Usage: "optimization level: 0 (off), 1 (single pass), or 2 (fold to a fixpoint)",
		},
	}

	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run implements the CLI's single action: read PROGRAM, compile it, and
// write the resulting IR to the output path.
func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("Usage: ecco PROGRAM [--output PATH] [--logging LEVEL] [--quiet] [--opt N]", 1)
	}
	programPath := ctx.Args().Get(0)

	level := diagnostics.ParseLevel(strings.ToUpper(ctx.String("logging")))
	if ctx.Bool("quiet") {
		level = diagnostics.LevelNone
	}
	logger := diagnostics.NewLogger(level, os.Stdout)

	opt := optimizer.Level(ctx.Int("opt"))
	if opt < optimizer.LevelOff || opt > optimizer.LevelFixpoint {
		opt = optimizer.LevelOnce
	}

	source, err := os.ReadFile(programPath)
	if err != nil {
		var diag *diagnostics.Diagnostic
		if os.IsNotExist(err) {
			diag = diagnostics.FileNotFound(diagnostics.Location{}, programPath)
		} else {
			diag = diagnostics.FileError(diagnostics.Location{}, err)
		}
		logger.LogDiagnostic(diag)
		return cli.NewExitError("", diag.ExitCode())
	}

	outputPath := ctx.String("output")
	if outputPath == "" {
		outputPath = stem(programPath) + ".ll"
	}

	out, err := os.Create(outputPath)
	if err != nil {
		diag := diagnostics.FileError(diagnostics.Location{}, err)
		logger.LogDiagnostic(diag)
		return cli.NewExitError("", diag.ExitCode())
	}
	defer out.Close()

	logger.Log(diagnostics.LevelInfo, fmt.Sprintf("compiling %s -> %s (opt=%d)", programPath, outputPath, opt))

	c := compiler.New(stem(programPath), opt, logger)
	ir, diag := c.Compile(string(source))
	if diag != nil {
		logger.LogDiagnostic(diag)
		return cli.NewExitError("", diag.ExitCode())
	}

	if _, err := out.WriteString(ir); err != nil {
		diag := diagnostics.FileError(diagnostics.Location{}, err)
		logger.LogDiagnostic(diag)
		return cli.NewExitError("", diag.ExitCode())
	}

	logger.Log(diagnostics.LevelInfo, "done")
	return nil
}

// stem strips a path's directory and trailing extension, e.g.
// "examples/fib.ecco" -> "fib".
func stem(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
