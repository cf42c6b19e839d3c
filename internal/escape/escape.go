// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package escape decodes the bodies of raw JSON strings and re-encodes
// them for storage in a tree's string blob.
//
// Input slices are the bytes between the enclosing quotation marks,
// escapes intact. Decoding yields one Unicode scalar value at a time;
// encoding produces either UTF-8 bytes or native-order 16-bit code
// units ("wide" encoding). None of the decoding functions allocate.
package escape

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// DecodeRune returns the next logical code point of src and the number
// of source bytes it occupies.
//
// Backslash escapes are resolved, including \uXXXX; when pairs is true
// a high surrogate is speculatively combined with an immediately
// following \uXXXX low surrogate into one supplementary-plane code
// point. An unrecognized or incomplete escape yields a literal
// backslash consuming one byte, so the following byte is processed on
// its own. Invalid \u digits and unpaired surrogates yield
// utf8.RuneError. Multi-byte UTF-8 sequences decode as usual, with
// invalid sequences also mapping to utf8.RuneError over one byte.
//
// A zero size is returned only for empty input.
func DecodeRune(src mem.RO, pairs bool) (rune, int) {
	if src.Len() == 0 {
		return 0, 0
	}
	if c := src.At(0); c != '\\' || src.Len() < 2 {
		if c < utf8.RuneSelf {
			return rune(c), 1
		}
		return mem.DecodeRune(src)
	}
	switch c := src.At(1); c {
	case '"', '\\', '/':
		return rune(c), 2
	case 'b':
		return '\b', 2
	case 'f':
		return '\f', 2
	case 'n':
		return '\n', 2
	case 'r':
		return '\r', 2
	case 't':
		return '\t', 2
	case 'u':
		if src.Len() < 6 {
			break
		}
		v, ok := hex4(src, 2)
		if !ok {
			return utf8.RuneError, 6
		}
		if v >= 0xd800 && v < 0xe000 {
			if pairs && v < 0xdc00 && src.Len() >= 12 && src.At(6) == '\\' && lower(src.At(7)) == 'u' {
				if w, ok := hex4(src, 8); ok && w >= 0xdc00 && w < 0xe000 {
					return rune((v&0x3ff)<<10|w&0x3ff) + 0x10000, 12
				}
			}
			return utf8.RuneError, 6 // unpaired surrogate
		}
		return rune(v), 6
	}
	return '\\', 1
}

// hex4 decodes four hexadecimal digits of src starting at offset pos.
func hex4(src mem.RO, pos int) (uint32, bool) {
	var v uint32
	for i := pos; i < pos+4; i++ {
		b := src.At(i)
		switch {
		case b >= '0' && b <= '9':
			v = v<<4 | uint32(b-'0')
		case b >= 'a' && b <= 'f':
			v = v<<4 | uint32(b-'a'+10)
		case b >= 'A' && b <= 'F':
			v = v<<4 | uint32(b-'A'+10)
		default:
			return 0, false
		}
	}
	return v, true
}

func lower(b byte) byte { return b | 0x20 }

// EncodedLen reports the number of storage units the decoded form of
// src occupies: bytes for UTF-8, 16-bit code units when wide is true.
// The terminator is not included.
func EncodedLen(src mem.RO, wide, pairs bool) int {
	var n int
	for src.Len() > 0 {
		r, size := DecodeRune(src, pairs)
		src = src.SliceFrom(size)
		if wide {
			n++
			if r >= 0x10000 {
				n++
			}
		} else {
			n += utf8.RuneLen(r)
		}
	}
	return n
}

// AppendEncoded decodes src and appends its encoded form to dst,
// without a terminator. Wide output is appended as native-order byte
// pairs, two per code unit.
func AppendEncoded(dst []byte, src mem.RO, wide, pairs bool) []byte {
	for src.Len() > 0 {
		r, size := DecodeRune(src, pairs)
		src = src.SliceFrom(size)
		dst = AppendRune(dst, r, wide)
	}
	return dst
}

// AppendRune appends the encoded form of a single code point to dst.
func AppendRune(dst []byte, r rune, wide bool) []byte {
	if !wide {
		return utf8.AppendRune(dst, r)
	}
	if r >= 0x10000 {
		hi, lo := utf16.EncodeRune(r)
		dst = binary.NativeEndian.AppendUint16(dst, uint16(hi))
		return binary.NativeEndian.AppendUint16(dst, uint16(lo))
	}
	return binary.NativeEndian.AppendUint16(dst, uint16(r))
}
