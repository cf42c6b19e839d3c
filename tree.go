// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jbin

import (
	"encoding/binary"
	"fmt"
)

// A Tree is the result of building a binary representation from JSON
// text. The entire tree lives in a single byte slice: a flat array of
// fixed-size items in depth-first order, followed by the blob of unique
// encoded strings. A Tree is immutable after Build returns and may be
// shared freely between goroutines.
type Tree struct {
	data     []byte
	nitems   int
	enc      Encoding
	hashOnly bool
	stats    Stats
}

// Stats record measurements taken while building a tree.
type Stats struct {
	BytesRead         int // input bytes consumed, including any BOM
	ItemCount         int // number of items, including the synthetic root
	TotalBytes        int // size of the complete binary image
	TextBytes         int // size of the encoded string blob, including terminators
	SourceTextBytes   int // total size of quoted text in the input, with duplication
	UniqueStrings     int // number of unique strings stored
	StringOccurrences int // number of quoted strings in the input
}

// Root returns the root item of the tree. The root is a container of
// type Root, or Array when the input had an array at its outermost
// position.
func (t *Tree) Root() Item { return Item{t, 0} }

// Len reports the number of items in the tree, including the root.
func (t *Tree) Len() int { return t.nitems }

// Stats returns the build statistics of the tree.
func (t *Tree) Stats() Stats { return t.stats }

// Bytes returns the backing image of the tree. The image is valid to
// write to disk and reattach with Load; it uses host byte order. The
// caller must not modify the returned slice.
func (t *Tree) Bytes() []byte { return t.data }

// MustBuild is a convenience wrapper for Build that panics if the input
// does not parse. It is intended for static fixtures and tests.
func MustBuild(data []byte, opts *Options) *Tree {
	t, err := Build(data, opts)
	if err != nil {
		panic(fmt.Sprintf("jbin: build failed: %v", err))
	}
	return t
}

// Load reattaches a tree image previously obtained from Bytes. The
// image is validated structurally: the depth-first layout, sibling
// links, and string references are all checked before any accessor can
// observe them. The options must match the ones the image was built
// with; only Encoding and HashKeysOnly are consulted. Load does not
// copy data, and the caller must not modify it afterward.
func Load(data []byte, opts *Options) (*Tree, error) {
	o := opts.resolve()
	if len(data) < itemSize {
		return nil, fmt.Errorf("image too short (%d bytes)", len(data))
	}
	t := &Tree{data: data, enc: o.Encoding, hashOnly: o.HashKeysOnly}

	// Walk the item graph from the root. In a valid image the depth-first
	// traversal visits exactly indices 0..n-1 in order, so the walk both
	// counts items and verifies every sibling link lands where the layout
	// demands.
	maxItems := len(data) / itemSize
	root := t.Root()
	if rt := root.Type(); rt != Root && rt != Array {
		return nil, fmt.Errorf("invalid root type %v", rt)
	}
	type frame struct{ remain, sibling int }
	stack := []frame{{root.ChildCount(), 1}}
	count, cur := 1, 1
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.remain == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		if top.sibling != cur {
			return nil, fmt.Errorf("item %d: sibling link points at %d", cur, top.sibling)
		}
		if cur >= maxItems {
			return nil, fmt.Errorf("item %d out of bounds", cur)
		}
		it := Item{t, cur}
		count++
		top.remain--
		step := it.SiblingStep()
		if top.remain > 0 {
			if step <= 0 {
				return nil, fmt.Errorf("item %d: missing sibling link", cur)
			}
			top.sibling = cur + step
		} else if step != 0 {
			return nil, fmt.Errorf("item %d: sibling link past last child", cur)
		}
		n := it.ChildCount()
		if n < 0 || n > maxItems {
			return nil, fmt.Errorf("item %d: invalid child count %d", cur, n)
		}
		cur++
		if n > 0 {
			stack = append(stack, frame{n, cur})
		}
	}
	t.nitems = count
	blob := count * itemSize

	// Validate string references against the blob bounds.
	for i := range count {
		it := Item{t, i}
		if rel := it.u32(offName); rel != 0 {
			if err := t.checkRef(i*itemSize+offName, int(rel), int(it.u32(offNameLen)), blob); err != nil {
				return nil, fmt.Errorf("item %d name: %w", i, err)
			}
		}
		if it.Type() == String {
			if rel := it.u32(offValue); rel != 0 {
				if err := t.checkRef(i*itemSize+offValue, int(rel), int(it.u32(offStrLen)), blob); err != nil {
					return nil, fmt.Errorf("item %d value: %w", i, err)
				}
			}
		}
	}
	t.stats = Stats{ItemCount: count, TotalBytes: len(data), TextBytes: len(data) - blob}
	return t, nil
}

func (t *Tree) checkRef(field, rel, units, blob int) error {
	unit := 1
	if t.enc == UTF16 {
		unit = 2
	}
	pos := field + rel
	end := pos + (units+1)*unit // include terminator
	if pos < blob || end > len(t.data) {
		return fmt.Errorf("reference %d..%d outside string blob", pos, end)
	}
	for i := range unit {
		if t.data[pos+units*unit+i] != 0 {
			return fmt.Errorf("string at %d not terminated", pos)
		}
	}
	return nil
}

// writers used by the builder during pass 2

func (t *Tree) putPacked(index int, typ Type, step int) {
	binary.NativeEndian.PutUint32(t.data[index*itemSize+offPacked:], uint32(typ)|uint32(step)<<8)
}

func (t *Tree) putHash(index int, h uint32) {
	binary.NativeEndian.PutUint32(t.data[index*itemSize+offHash:], h)
}

func (t *Tree) putName(index int, blobPos, units int) {
	field := index*itemSize + offName
	binary.NativeEndian.PutUint32(t.data[field:], uint32(blobPos-field))
	binary.NativeEndian.PutUint32(t.data[field+4:], uint32(units))
}

func (t *Tree) putStrRef(index int, blobPos, units int) {
	field := index*itemSize + offValue
	binary.NativeEndian.PutUint32(t.data[field:], uint32(blobPos-field))
	binary.NativeEndian.PutUint32(t.data[field+4:], uint32(units))
}

func (t *Tree) putValue(index int, v uint64) {
	binary.NativeEndian.PutUint64(t.data[index*itemSize+offValue:], v)
}

func (t *Tree) addChild(index int) {
	pos := index*itemSize + offValue
	n := binary.NativeEndian.Uint64(t.data[pos:])
	binary.NativeEndian.PutUint64(t.data[pos:], n+1)
}

func (t *Tree) setStep(index, step int) {
	pos := index*itemSize + offPacked
	packed := binary.NativeEndian.Uint32(t.data[pos:])
	binary.NativeEndian.PutUint32(t.data[pos:], packed&0xff|uint32(step)<<8)
}
