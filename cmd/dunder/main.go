// Package main provides the dunder command, which lowers infix arithmetic on
// tensors into method calls.
//
// Usage:
//
//	dunder [flags] [packages]
//	dunder version
//
// The lowered sources of the selected packages (default ".") are written
// below the output directory, mirroring their location in the source tree.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/born-ml/dunder/internal/config"
	"github.com/born-ml/dunder/internal/driver"
)

const version = "v0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("dunder: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns its exit code: 0 on success, 1 when
// loading, checking or writing fails, 2 on a usage error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "version" {
		fmt.Fprintf(stdout, "dunder %s\n", version)
		return 0
	}

	fs := flag.NewFlagSet("dunder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		outDir     = fs.String("out", "", "output `directory` (default \"dist\")")
		configPath = fs.String("config", "", "YAML configuration `file`")
		tags       = fs.String("tags", "", "comma-separated build `tags`")
		dryRun     = fs.Bool("n", false, "lower and check, but write nothing")
		noEmit     = fs.Bool("noemit-on-error", false, "write nothing if the lowered program has errors")
		verbose    = fs.Bool("v", false, "log each lowered file")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: dunder [flags] [packages]\n       dunder version\n\nflags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := log.New(stderr, log.Prefix(), log.Flags())

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Print(err)
			return 2
		}
		cfg = loaded
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if *tags != "" {
		cfg.Tags = strings.Split(*tags, ",")
	}
	if *noEmit {
		cfg.NoEmitOnError = true
	}

	rules, err := cfg.Rules()
	if err != nil {
		logger.Print(err)
		return 2
	}

	opts := driver.Options{
		Patterns:      fs.Args(),
		OutDir:        cfg.OutDir,
		Tags:          cfg.Tags,
		Rules:         rules,
		DryRun:        *dryRun,
		NoEmitOnError: cfg.NoEmitOnError,
	}
	if *verbose {
		opts.Logf = logger.Printf
	}

	report, err := driver.Run(ctx, opts)
	if report != nil {
		for _, d := range report.Diagnostics {
			fmt.Fprintln(stderr, d)
		}
		if *dryRun {
			for _, f := range report.Files {
				if f.Result.Changed() {
					fmt.Fprintln(stdout, f.Output)
				}
			}
		}
	}
	if err != nil {
		logger.Print(err)
		return 1
	}
	return 0
}
