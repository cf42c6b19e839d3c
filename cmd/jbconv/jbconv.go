// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program jbconv rebuilds JSON files through the binary tree
// representation: each input is parsed with jbin, optionally after
// JWCC standardization, and regenerated as formatted JSON text with
// jout. With -stats it also reports the measurements of each build.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/creachadair/jbin"
	"github.com/creachadair/jbin/jout"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tailscale/hujson"
	"golang.org/x/sync/errgroup"
)

var (
	outPath     = flag.String("out", "", "Output file path (single input only; default stdout)")
	suffix      = flag.String("suffix", ".out.json", "Output suffix for multiple inputs")
	indent      = flag.String("indent", "  ", "Indentation unit (up to 32 bytes)")
	doComments  = flag.Bool("comments", false, "Allow C-style comments in the input")
	standardize = flag.Bool("std", false, "Standardize JWCC input (comments, trailing commas) before parsing")
	hashOnly    = flag.Bool("hash", false, "Store only key hashes, not key strings")
	showStats   = flag.Bool("stats", false, "Report build statistics to stderr")
	numJobs     = flag.Int("jobs", 4, "Maximum concurrent conversions")
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: jbconv [options] file.json ...")
	}
	if *outPath != "" && flag.NArg() > 1 {
		log.Fatal("the -out flag requires exactly one input")
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}

	var g errgroup.Group
	g.SetLimit(max(*numJobs, 1))
	for _, path := range flag.Args() {
		g.Go(func() error { return convert(path) })
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
}

func convert(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if *standardize {
		std, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("standardize %s: %w", path, err)
		}
		data = std
	}

	tree, err := jbin.Build(data, &jbin.Options{
		AllowComments:  *doComments,
		AllowRootArray: true,
		SurrogatePairs: true,
		HandleBOM:      true,
		HashKeysOnly:   *hashOnly,
	})
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	if *showStats {
		printStats(path, tree.Stats())
	}

	out, done, err := openOutput(path)
	if err != nil {
		return err
	}
	w := jout.New(out)
	w.SetIndent(*indent)
	writeTree(w, tree)
	if w.Err() != nil {
		done()
		return fmt.Errorf("write %s: %w", path, w.Err())
	}
	return done()
}

func openOutput(path string) (io.Writer, func() error, error) {
	name := *outPath
	if name == "" {
		if flag.NArg() == 1 {
			return os.Stdout, func() error { return nil }, nil
		}
		name = strings.TrimSuffix(path, filepath.Ext(path)) + *suffix
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeTree(w *jout.Writer, tree *jbin.Tree) {
	root := tree.Root()
	if root.Type() == jbin.Array {
		w.PushArray("")
	} else {
		w.PushObject("")
	}
	writeChildren(w, root)
	w.Close()
}

func writeChildren(w *jout.Writer, parent jbin.Item) {
	for kid := range parent.Children() {
		writeItem(w, kid)
	}
}

func writeItem(w *jout.Writer, it jbin.Item) {
	switch it.Type() {
	case jbin.Object:
		if w.InArray() {
			w.ElementObject()
		} else {
			w.PushObject(it.Name())
		}
		writeChildren(w, it)
		w.Close()
	case jbin.Array:
		if w.InArray() {
			w.ElementArray()
		} else {
			w.PushArray(it.Name())
		}
		writeChildren(w, it)
		w.Close()
	case jbin.String:
		w.PushString(it.Name(), it.Str())
	case jbin.Int:
		w.PushInt(it.Name(), it.Int())
	case jbin.Float:
		w.PushFloat(it.Name(), it.Float())
	case jbin.Bool:
		w.PushBool(it.Name(), it.Bool())
	case jbin.NullTag:
		w.PushNull("")
	case jbin.NullValue:
		w.PushNull(it.Name())
	}
}

func printStats(path string, st jbin.Stats) {
	head := color.New(color.FgCyan, color.Bold)
	num := color.New(color.FgGreen)
	head.Fprintf(os.Stderr, "%s:\n", path)
	row := func(label string, v int) {
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", label, num.Sprintf("%d", v))
	}
	row("bytes read", st.BytesRead)
	row("items", st.ItemCount)
	row("binary size", st.TotalBytes)
	row("text size", st.TextBytes)
	row("source text size", st.SourceTextBytes)
	row("unique strings", st.UniqueStrings)
	row("total strings", st.StringOccurrences)
}
