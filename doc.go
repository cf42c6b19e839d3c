// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package jbin converts JSON text into a compact, relocatable binary
// representation optimized for fast traversal.
//
// # Building
//
// Call [Build] with the complete input in memory. The builder runs a
// two-pass recognizer over the input: the first pass counts items and
// collects the set of unique strings, the second fills a flat item array
// followed by an interned string blob, all inside one allocation:
//
//	tree, err := jbin.Build(data, nil)
//	if err != nil {
//	   log.Fatalf("Build failed: %v", err)
//	}
//
// In case of a malformed input the returned error has concrete type
// [*BuildError], which reports an [ErrorCode] and the line and column at
// which parsing stopped.
//
// # Reading
//
// A built tree is immutable and may be read concurrently without
// synchronization. Items occur in depth-first order by ascending index;
// a container's first child is the next item, and each child records the
// index delta to its next sibling:
//
//	root := tree.Root()
//	for kid := range root.Children() {
//	   log.Printf("%s = %v", kid.Name(), kid.Type())
//	}
//
// All string references inside the tree are byte offsets relative to the
// referencing field, so the backing image may be written to disk with
// [Tree.Bytes] and reattached at any address with [Load] without fixup.
// Images use host byte order; they are not portable across endianness.
//
// # Input extensions
//
// The recognizer accepts plain RFC 8259 input by default. A leading
// UTF-8 BOM, C-style comments, a bare array at the root, and UTF-16
// surrogate pair escapes are each enabled independently through
// [Options].
package jbin
