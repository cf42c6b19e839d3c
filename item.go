// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jbin

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"unicode/utf16"
)

// Type is the type tag of an item in a built tree.
type Type byte

// Constants defining the valid Type values.
const (
	Root      Type = iota // synthetic document root
	Object                // object, an item with named children
	Array                 // array of unnamed children
	String                // string value
	Int                   // integer value
	Float                 // floating-point value
	Bool                  // boolean value
	NullTag               // a bare null placeholder
	NullValue             // a named field whose value is null
)

var typeStr = [...]string{
	Root:      "root",
	Object:    "object",
	Array:     "array",
	String:    "string",
	Int:       "int",
	Float:     "float",
	Bool:      "bool",
	NullTag:   "null",
	NullValue: "null value",
}

func (t Type) String() string {
	if int(t) >= len(typeStr) {
		return fmt.Sprintf("type %d", byte(t))
	}
	return typeStr[t]
}

// isContainer reports whether items of type t carry a child count.
func (t Type) isContainer() bool { return t == Root || t == Object || t == Array }

// Fixed layout of one item record. The packed field holds the type tag
// in its low 8 bits and the sibling step in the upper 24; string
// reference offsets are relative to the byte position of the field that
// holds them, which is what makes the image relocatable.
const (
	itemSize   = 24
	offHash    = 0  // uint32 name hash
	offPacked  = 4  // uint32: type | siblingStep<<8
	offName    = 8  // uint32 name offset, relative to this field; 0 = absent
	offNameLen = 12 // uint32 encoded name length, in storage units
	offValue   = 16 // 8-byte value slot; string offset is relative to this field
	offStrLen  = 20 // uint32 encoded string length, in storage units
)

const maxSiblingStep = 1<<23 - 1

// An Item is a read-only view of one record in a built tree. The zero
// Item is invalid; traversal accessors return it to mean "no item", and
// all accessors of an invalid Item report zero values.
type Item struct {
	tree  *Tree
	index int
}

// Valid reports whether it designates an item in a tree.
func (it Item) Valid() bool { return it.tree != nil }

// Index reports the position of the item in depth-first order.
// The root is index 0.
func (it Item) Index() int { return it.index }

func (it Item) base() int { return it.index * itemSize }

func (it Item) u32(off int) uint32 {
	if it.tree == nil {
		return 0
	}
	return binary.NativeEndian.Uint32(it.tree.data[it.base()+off:])
}

func (it Item) u64(off int) uint64 {
	if it.tree == nil {
		return 0
	}
	return binary.NativeEndian.Uint64(it.tree.data[it.base()+off:])
}

// Type returns the type tag of the item.
func (it Item) Type() Type { return Type(it.u32(offPacked) & 0xff) }

// SiblingStep returns the index delta to the next sibling, or 0 if the
// item is the last child of its parent.
func (it Item) SiblingStep() int { return int(it.u32(offPacked) >> 8) }

// Hash returns the 32-bit FNV-1a hash of the item's name, or 0 for
// unnamed items.
func (it Item) Hash() uint32 { return it.u32(offHash) }

// Name returns the decoded name of the item, or "" if it has none.
// When the tree was built with Options.HashKeysOnly, named items render
// as the hexadecimal hash, "0x12345678".
func (it Item) Name() string {
	if it.tree == nil {
		return ""
	}
	rel := it.u32(offName)
	if rel == 0 {
		if it.tree.hashOnly && it.Hash() != 0 {
			return fmt.Sprintf("0x%08x", it.Hash())
		}
		return ""
	}
	return it.tree.decodeString(it.base()+offName+int(rel), int(it.u32(offNameLen)))
}

// NameLen returns the encoded length of the name in storage units
// (bytes for UTF-8 trees, 16-bit units for UTF-16 trees).
func (it Item) NameLen() int { return int(it.u32(offNameLen)) }

// Int returns the integer value of the item. Float items are truncated;
// items of other types report 0.
func (it Item) Int() int64 {
	switch it.Type() {
	case Int:
		return int64(it.u64(offValue))
	case Float:
		return int64(math.Float64frombits(it.u64(offValue)))
	}
	return 0
}

// Float returns the floating-point value of the item. Int items are
// converted; items of other types report 0.
func (it Item) Float() float64 {
	switch it.Type() {
	case Float:
		return math.Float64frombits(it.u64(offValue))
	case Int:
		return float64(int64(it.u64(offValue)))
	}
	return 0
}

// Bool returns the boolean value of the item, or false if the item is
// not of type Bool.
func (it Item) Bool() bool { return it.Type() == Bool && it.u64(offValue) != 0 }

// Str returns the decoded string value of the item. Non-string items
// and empty strings report "".
func (it Item) Str() string {
	if it.tree == nil || it.Type() != String {
		return ""
	}
	rel := it.u32(offValue)
	if rel == 0 {
		return ""
	}
	return it.tree.decodeString(it.base()+offValue+int(rel), int(it.u32(offStrLen)))
}

// StrLen returns the encoded length of the string value in storage
// units, or 0 for non-string items.
func (it Item) StrLen() int {
	if it.Type() != String {
		return 0
	}
	return int(it.u32(offStrLen))
}

// ChildCount returns the number of direct children of a container item,
// or 0 for leaves.
func (it Item) ChildCount() int {
	if !it.Type().isContainer() {
		return 0
	}
	return int(int64(it.u64(offValue)))
}

// Len is an alias for ChildCount.
func (it Item) Len() int { return it.ChildCount() }

// FirstChild returns the first child of a container item, which in
// depth-first layout is the next item. It returns an invalid Item for
// leaves and empty containers.
func (it Item) FirstChild() Item {
	if it.ChildCount() == 0 {
		return Item{}
	}
	return Item{it.tree, it.index + 1}
}

// NextSibling returns the next item at the same depth, or an invalid
// Item after the last child.
func (it Item) NextSibling() Item {
	step := it.SiblingStep()
	if step == 0 {
		return Item{}
	}
	return Item{it.tree, it.index + step}
}

// Children returns an iterator over the direct children of it in order.
func (it Item) Children() iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for kid := it.FirstChild(); kid.Valid(); kid = kid.NextSibling() {
			if !yield(kid) {
				return
			}
		}
	}
}

// FindByHash returns the first child of it whose name hash equals h.
// It returns an invalid Item if no child matches, or if it is not a
// root or object. Distinct keys may collide on the same hash; callers
// accepting untrusted input should confirm with Name.
func (it Item) FindByHash(h uint32) Item {
	if t := it.Type(); t != Root && t != Object {
		return Item{}
	}
	for kid := range it.Children() {
		if kid.Hash() == h {
			return kid
		}
	}
	return Item{}
}

// Find returns the first child of it named name, or an invalid Item.
// The lookup is by hash with a name comparison to confirm; in hash-only
// trees the confirmation is skipped.
func (it Item) Find(name string) Item {
	h := HashString(name)
	if t := it.Type(); t != Root && t != Object {
		return Item{}
	}
	for kid := range it.Children() {
		if kid.Hash() != h {
			continue
		}
		if it.tree.hashOnly || kid.Name() == name {
			return kid
		}
	}
	return Item{}
}

// decodeString decodes the blob string at byte offset pos with the
// given length in storage units.
func (t *Tree) decodeString(pos, units int) string {
	if t.enc == UTF16 {
		u := make([]uint16, units)
		for i := range u {
			u[i] = binary.NativeEndian.Uint16(t.data[pos+2*i:])
		}
		return string(utf16.Decode(u))
	}
	return string(t.data[pos : pos+units])
}
