// Avtcheck loads Aventuro games and reports whether they are valid. For
// each valid game it prints the named directions of every room and any
// warnings.
// Usage: avtcheck [--quiet] <game>...
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nathoo/aventuro/builder"
	"github.com/nathoo/aventuro/loader"
	"github.com/nathoo/aventuro/types"
)

const usage = "Usage: avtcheck [--quiet] <game>...\n"

// result is the outcome of checking one file.
type result struct {
	def *types.Definition
	err error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	quiet := false
	var paths []string
	for _, arg := range os.Args[1:] {
		if arg == "--quiet" {
			quiet = true
			continue
		}
		paths = append(paths, arg)
	}
	if len(paths) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	results, err := check(ctx, paths, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if report(os.Stdout, paths, results, quiet) > 0 {
		os.Exit(1)
	}
}

// check loads every path concurrently. A file that fails to load is
// recorded in its result; only cancellation stops the whole run.
func check(ctx context.Context, paths []string, logger *zap.Logger) ([]result, error) {
	results := make([]result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i := i
		path := path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			def, err := loader.Load(path, loader.WithLogger(logger.Named("load")))
			if err != nil {
				logger.Debug("load failed", zap.String("path", path), zap.Error(err))
			}
			results[i] = result{def: def, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// report prints the results in argument order and returns how many files
// failed.
func report(w io.Writer, paths []string, results []result, quiet bool) int {
	failed := 0
	for i, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "%s: %v\n", paths[i], r.err)
			continue
		}
		def := r.def
		fmt.Fprintf(w, "%s: %s (%d rooms, %d objects, %d monsters, %d rules)\n",
			paths[i], def.Name, len(def.Rooms), len(def.Objects), len(def.Monsters), len(def.Rules))
		if quiet {
			continue
		}
		for _, line := range directions(def) {
			fmt.Fprintf(w, "  %s\n", line)
		}
		for _, warning := range builder.Warnings(def) {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}
	return failed
}

// directions lists the named directions of each room that has any, as
// "room: pordo->kelo, fenestro->korto".
func directions(def *types.Definition) []string {
	var lines []string
	for _, room := range def.Rooms {
		if len(room.Directions) == 0 {
			continue
		}
		links := make([]string, 0, len(room.Directions))
		for _, d := range room.Directions {
			links = append(links, fmt.Sprintf("%so->%s", d.Name, def.Rooms[d.Target].Name))
		}
		lines = append(lines, room.Name+": "+strings.Join(links, ", "))
	}
	return lines
}
