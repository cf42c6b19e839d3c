// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the items of a built tree.
package cursor

import (
	"fmt"

	"github.com/creachadair/jbin"
)

// Path traverses a sequential path into the structure of it, where path
// elements are as documented for the Cursor.Down method. This is a
// convenience wrapper for creating a cursor, applying the path, and
// retrieving its item.
func Path(it jbin.Item, path ...any) (jbin.Item, error) {
	c := New(it).Down(path...)
	if err := c.Err(); err != nil {
		return jbin.Item{}, err
	}
	return c.Item(), nil
}

// A Cursor is a pointer that navigates into the structure of a tree.
type Cursor struct {
	org jbin.Item
	stk []jbin.Item
	err error
}

// New constructs a new Cursor to traverse the structure of origin.
func New(origin jbin.Item) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin item of c.
func (c *Cursor) Origin() jbin.Item { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Item reports the current item under the cursor.
func (c *Cursor) Item() jbin.Item {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1]
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position upward in the structure, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset resets the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting
// from the current item. If a path element is a string, the current
// item must be a root or object, and the string resolves the first
// child with that name. If a path element is an integer, the current
// item must be a container, and the integer indexes its children;
// negative indices count backward from the end (-1 is last). If the
// path cannot be completely consumed, traversal stops and an error is
// recorded; use Err to recover it.
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil // reset error
	cur := c.Item()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			kid := cur.Find(t)
			if !kid.Valid() {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(kid)

		case int:
			n := cur.ChildCount()
			i, ok := fixArrayBound(n, t)
			if !ok {
				return c.setErrorf("index %d out of bounds (n=%d)", t, n)
			}
			kid := cur.FirstChild()
			for range i {
				kid = kid.NextSibling()
			}
			cur = c.push(kid)

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(it jbin.Item) jbin.Item { c.stk = append(c.stk, it); return it }

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
