// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jbin

import (
	"bytes"
	"math/bits"

	"github.com/creachadair/jbin/internal/escape"
	"go4.org/mem"
)

// FNV-1a parameters, also used for name hashes.
const (
	fnvSeed  = 2166136261
	fnvPrime = 16777619
)

// fnv1a hashes raw bytes. Intern-table keys hash the source slice
// before any escape decoding, so lookups between the counting and
// filling pass are exact byte matches.
func fnv1a(data []byte) uint32 {
	h := uint32(fnvSeed)
	for _, b := range data {
		h = (uint32(b) ^ h) * fnvPrime
	}
	return h
}

// HashString returns the name hash of s: FNV-1a over its UTF-8 bytes.
// The hash of a decoded key equals HashString of the same text, so the
// result can be passed to Item.FindByHash.
func HashString(s string) uint32 {
	h := uint32(fnvSeed)
	for i := range len(s) {
		h = (uint32(s[i]) ^ h) * fnvPrime
	}
	return h
}

// hashKey hashes a raw (still escaped) key slice by decoding it one
// code point at a time and hashing the UTF-8 encoding of each, which
// makes the result independent of how the input spelled the key.
func hashKey(raw []byte, pairs bool) uint32 {
	h := uint32(fnvSeed)
	src := mem.B(raw)
	var buf [4]byte
	for src.Len() > 0 {
		r, n := escape.DecodeRune(src, pairs)
		src = src.SliceFrom(n)
		for _, b := range escape.AppendRune(buf[:0], r, false) {
			h = (uint32(b) ^ h) * fnvPrime
		}
	}
	return h
}

// A strEntry records one unique string: its source slice, the raw hash,
// the chain link, and (after finalize) its position in the encoded
// blob.
type strEntry struct {
	hash      uint32
	pos, len  int   // source slice in the input
	next      int32 // next entry with the same table slot, or -1
	off       int   // byte offset of the encoded string in the image
	encodeLen int   // encoded length in storage units, without terminator
}

// A stringTable dedups the quoted strings of one input. It is scratch
// state: built during the counting pass, resolved during the filling
// pass, and discarded when Build returns.
type stringTable struct {
	src     []byte
	table   []int32 // slot -> entry index, or -1
	entries []strEntry
	max     int // pre-counted occurrence bound
}

// newStringTable sizes the table for an input with max quoted string
// occurrences. The slot count is max/4 with a floor of 1024.
func newStringTable(src []byte, max int) *stringTable {
	size := max / 4
	if size < 1024 {
		size = 1024
	}
	table := make([]int32, size)
	for i := range table {
		table[i] = -1
	}
	return &stringTable{
		src:     src,
		table:   table,
		entries: make([]strEntry, 0, max),
		max:     max,
	}
}

func (st *stringTable) slot(hash uint32) int {
	return int((hash ^ bits.RotateLeft32(hash, 16)) % uint32(len(st.table)))
}

// lookup returns the entry index for the string at src[pos:pos+n], or
// -1 if it was never added. Hash matches are confirmed by byte compare.
func (st *stringTable) lookup(pos, n int) int {
	key := st.src[pos : pos+n]
	hash := fnv1a(key)
	for i := st.table[st.slot(hash)]; i >= 0; i = st.entries[i].next {
		e := &st.entries[i]
		if e.hash == hash && e.len == n && bytes.Equal(st.src[e.pos:e.pos+e.len], key) {
			return int(i)
		}
	}
	return -1
}

// add records the string at src[pos:pos+n] if it is not already present.
// It reports whether the table has room; the occurrence pre-count bounds
// the number of unique strings, so a full table indicates a builder bug.
func (st *stringTable) add(pos, n int) bool {
	if st.lookup(pos, n) >= 0 {
		return true
	}
	if len(st.entries) >= st.max {
		return false
	}
	hash := fnv1a(st.src[pos : pos+n])
	slot := st.slot(hash)
	st.entries = append(st.entries, strEntry{
		hash: hash,
		pos:  pos,
		len:  n,
		next: st.table[slot],
	})
	st.table[slot] = int32(len(st.entries) - 1)
	return true
}

// blobSize returns the total byte size of the finalized blob for the
// given encoding, terminators included.
func (st *stringTable) blobSize(wide, pairs bool) int {
	unit := 1
	if wide {
		unit = 2
	}
	var units int
	for i := range st.entries {
		e := &st.entries[i]
		units += escape.EncodedLen(mem.B(st.src[e.pos:e.pos+e.len]), wide, pairs) + 1
	}
	return units * unit
}

// finalize encodes each unique string into blob in insertion order,
// recording its offset and encoded length. Offsets are positions in the
// final image: base, the byte position of the blob inside the image,
// plus the string's position in the blob.
func (st *stringTable) finalize(blob []byte, base int, wide, pairs bool) {
	unit := 1
	if wide {
		unit = 2
	}
	out := blob[:0]
	for i := range st.entries {
		e := &st.entries[i]
		start := len(out)
		out = escape.AppendEncoded(out, mem.B(st.src[e.pos:e.pos+e.len]), wide, pairs)
		e.off = base + start
		e.encodeLen = (len(out) - start) / unit
		for range unit {
			out = append(out, 0) // terminator
		}
	}
}
