// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package cursor_test

import (
	"testing"

	"github.com/creachadair/jbin"
	"github.com/creachadair/jbin/cursor"
)

const testInput = `{
  "list": [1, 5, 9],
  "nested": {"inner": {"deep": true}, "other": "x"},
  "mixed": [{"p": 1}, {"p": 2}]
}`

func mustTree(t *testing.T) *jbin.Tree {
	t.Helper()
	tree, err := jbin.Build([]byte(testInput), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tree
}

func TestPath(t *testing.T) {
	root := mustTree(t).Root()

	t.Run("Index", func(t *testing.T) {
		it, err := cursor.Path(root, "list", 1)
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if got := it.Int(); got != 5 {
			t.Errorf("Value: got %d, want 5", got)
		}
	})
	t.Run("NegativeIndex", func(t *testing.T) {
		it, err := cursor.Path(root, "list", -1)
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if got := it.Int(); got != 9 {
			t.Errorf("Value: got %d, want 9", got)
		}
	})
	t.Run("DeepKeys", func(t *testing.T) {
		it, err := cursor.Path(root, "nested", "inner", "deep")
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if !it.Bool() {
			t.Error("Value: got false, want true")
		}
	})
	t.Run("ObjectInArray", func(t *testing.T) {
		it, err := cursor.Path(root, "mixed", 1, "p")
		if err != nil {
			t.Fatalf("Path: %v", err)
		}
		if got := it.Int(); got != 2 {
			t.Errorf("Value: got %d, want 2", got)
		}
	})
	t.Run("MissingKey", func(t *testing.T) {
		if _, err := cursor.Path(root, "nonesuch"); err == nil {
			t.Error("Path: got nil, want error")
		}
	})
	t.Run("OutOfBounds", func(t *testing.T) {
		if _, err := cursor.Path(root, "list", 3); err == nil {
			t.Error("Path: got nil, want error")
		}
		if _, err := cursor.Path(root, "list", -4); err == nil {
			t.Error("Path: got nil, want error")
		}
	})
	t.Run("BadElement", func(t *testing.T) {
		if _, err := cursor.Path(root, 1.5); err == nil {
			t.Error("Path: got nil, want error")
		}
	})
}

func TestCursor(t *testing.T) {
	root := mustTree(t).Root()
	c := cursor.New(root)

	if !c.AtOrigin() {
		t.Error("AtOrigin: got false, want true")
	}
	if c.Down("nested", "inner").Err() != nil {
		t.Fatalf("Down: %v", c.Err())
	}
	if got := c.Item().Name(); got != "inner" {
		t.Errorf("Item name: got %q, want inner", got)
	}
	if got := c.Up().Item().Name(); got != "nested" {
		t.Errorf("After Up: got %q, want nested", got)
	}

	// A failed step leaves the error for Err.
	if c.Down("nonesuch").Err() == nil {
		t.Error("Down(nonesuch): want error")
	}
	c.Reset()
	if !c.AtOrigin() || c.Err() != nil {
		t.Errorf("After Reset: origin=%v err=%v", c.AtOrigin(), c.Err())
	}
}
