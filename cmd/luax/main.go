package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"luax/ast"
	"luax/builtins"
	"luax/eval"
	"luax/trace"
	"luax/types"
)

const historyFile = ".luax_history"

func main() {
	inline := flag.String("e", "", "Run an inline serialized chunk")
	check := flag.Bool("check", false, "Decode and resolve only, report a summary")
	repl := flag.Bool("repl", false, "Interactive driver: one serialized chunk per line")

	// Trace flags
	traceEnabled := flag.Bool("trace", false, "Enable execution tracing")
	traceFilter := flag.String("trace-filter", "", "Trace filter pattern (glob, e.g., 'f*' or 'string.*')")

	// Budget flags
	maxDepth := flag.Int("max-depth", 0, "Call depth budget (0 = default)")
	steps := flag.Int64("steps", 0, "Statement budget per run (0 = unlimited)")

	noCrypto := flag.Bool("no-crypto", false, "Skip the crypto host library")

	flag.Parse()

	// Initialize tracer
	if *traceEnabled {
		var filters []string
		if *traceFilter != "" {
			filters = strings.Split(*traceFilter, ",")
			for i := range filters {
				filters[i] = strings.TrimSpace(filters[i])
			}
		}
		trace.Init(true, filters, os.Stderr)
	} else {
		trace.Init(false, nil, nil)
	}

	opts := eval.Options{
		MaxDepth:  *maxDepth,
		StepLimit: *steps,
	}
	if !*noCrypto {
		opts.Extend = func(r *builtins.Registry) {
			r.RegisterCryptoBuiltins()
		}
	}

	switch {
	case *repl:
		os.Exit(runRepl(opts))
	case *inline != "":
		os.Exit(runChunk(opts, []byte(*inline), "-e", flag.Args()))
	case *check:
		if flag.NArg() < 1 {
			log.Fatalf("usage: luax -check chunk.json")
		}
		os.Exit(checkChunk(flag.Arg(0)))
	default:
		if flag.NArg() < 1 {
			log.Fatalf("usage: luax [flags] chunk.json [args...]")
		}
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatalf("cannot read %s: %v", flag.Arg(0), err)
		}
		os.Exit(runChunk(opts, data, flag.Arg(0), flag.Args()[1:]))
	}
}

// runChunk executes one serialized chunk and prints its returned values
func runChunk(opts eval.Options, data []byte, name string, scriptArgs []string) int {
	in := eval.New(opts)
	args := make([]types.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		args[i] = types.NewStr(a)
	}

	vals, err := in.Run(context.Background(), data, args...)
	if err != nil {
		reportError(err)
		return 1
	}
	printValues(vals)
	return 0
}

// checkChunk decodes and resolves a chunk without running it
func checkChunk(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("cannot read %s: %v", path, err)
	}
	stmts, err := ast.DecodeChunk(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "luax: %s: %v\n", path, err)
		return 1
	}
	if err := eval.Check(data); err != nil {
		fmt.Fprintf(os.Stderr, "luax: %s: %v\n", path, err)
		return 1
	}
	fmt.Printf("%s: ok (%d top-level statements)\n", path, len(stmts))
	return 0
}

// runRepl reads serialized chunks line by line against one persistent
// interpreter, so globals survive between lines.
func runRepl(opts eval.Options) int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("luax interactive driver. One serialized chunk per line; Ctrl+D exits.")

	in := eval.New(opts)
	for {
		line, err := ln.Prompt("luax> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "luax: %v\n", err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		vals, err := in.Run(context.Background(), []byte(line))
		if err != nil {
			reportError(err)
			continue
		}
		printValues(vals)
	}
}

// reportError prints a script fault with its traceback
func reportError(err error) {
	var lerr *eval.LuaError
	if errors.As(err, &lerr) {
		fmt.Fprintf(os.Stderr, "luax: %s\n", lerr.Error())
		if tb := lerr.Traceback(); tb != "" {
			fmt.Fprintln(os.Stderr, tb)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "luax: %v\n", err)
}

// printValues prints a chunk's returned values, tab separated
func printValues(vals []types.Value) {
	if len(vals) == 0 {
		return
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	fmt.Println(strings.Join(parts, "\t"))
}
