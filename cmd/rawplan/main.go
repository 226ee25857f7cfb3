package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/schema"
)

const usage = `rawplan resolves codec declarations and inspects the resulting plans.

Usage:
  rawplan resolve [-o out.plans] <file>...   resolve declarations, optionally write a bundle
  rawplan show [-i] [--type name] <file>...  print plans, or browse them with -i
  rawplan check <old> <new>                  check that new plans can read old data and back

Inputs are YAML declaration files (.yaml, .yml), WIT packages as printed by
"wasm-tools component wit --json" (.json) and plan bundles (.plans).

Flags:
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		output      string
		typeName    string
		interactive bool
		verbose     bool
	)
	flags := pflag.NewFlagSet("rawplan", pflag.ContinueOnError)
	flags.StringVarP(&output, "output", "o", "", "write resolved plans to this bundle file")
	flags.StringVarP(&typeName, "type", "t", "", "show only this type")
	flags.BoolVarP(&interactive, "interactive", "i", false, "browse plans in a terminal UI")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log loading and resolution details")
	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		rawcodec.SetLogger(logger)
	}

	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return fmt.Errorf("missing command")
	}
	cmd, files := rest[0], rest[1:]

	switch cmd {
	case "resolve":
		return resolve(out, files, output)
	case "show":
		if interactive {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("interactive mode needs a terminal")
			}
			return runInteractive(files)
		}
		return show(out, files, typeName)
	case "check":
		return check(out, files)
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func resolve(out io.Writer, files []string, output string) error {
	if len(files) == 0 {
		return fmt.Errorf("resolve: no input files")
	}
	plans, err := loadPlans(files)
	if err != nil {
		return err
	}
	for _, p := range plans {
		fmt.Fprintln(out, summary(p))
	}
	if output == "" {
		return nil
	}

	data, err := schema.MarshalBundle(plans)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	fmt.Fprintf(out, "\nWrote %d plans to %s (%d bytes)\n", len(plans), output, len(data))
	return nil
}

func show(out io.Writer, files []string, typeName string) error {
	if len(files) == 0 {
		return fmt.Errorf("show: no input files")
	}
	plans, err := loadPlans(files)
	if err != nil {
		return err
	}
	if typeName != "" {
		p, ok := planIndex(plans)[typeName]
		if !ok {
			return fmt.Errorf("type %q not found", typeName)
		}
		plans = []*schema.Plan{p}
	}
	for i, p := range plans {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprint(out, describe(p))
	}
	return nil
}

// check compares every type present in both inputs. Types only one side
// declares are listed but not treated as failures.
func check(out io.Writer, files []string) error {
	if len(files) != 2 {
		return fmt.Errorf("check: want <old> <new>, got %d files", len(files))
	}
	oldPlans, err := loadPlans(files[:1])
	if err != nil {
		return fmt.Errorf("old: %w", err)
	}
	newPlans, err := loadPlans(files[1:])
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}

	next := planIndex(newPlans)
	failed := 0
	for _, old := range oldPlans {
		p, ok := next[old.Name]
		if !ok {
			fmt.Fprintf(out, "removed  %s\n", old.Name)
			continue
		}
		delete(next, old.Name)
		if err := schema.CheckCompatible(old, p); err != nil {
			failed++
			fmt.Fprintf(out, "BREAKING %s\n  %v\n", old.Name, err)
			continue
		}
		fmt.Fprintf(out, "ok       %s\n", old.Name)
	}
	for _, p := range newPlans {
		if _, added := next[p.Name]; added {
			fmt.Fprintf(out, "added    %s\n", p.Name)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d incompatible types", failed)
	}
	return nil
}
