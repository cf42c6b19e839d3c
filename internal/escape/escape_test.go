// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"testing"
	"unicode/utf8"

	"github.com/creachadair/jbin/internal/escape"
	"github.com/google/go-cmp/cmp"
	"go4.org/mem"
)

// decodeAll decodes src completely and returns the code points and the
// sizes consumed for each.
func decodeAll(src string, pairs bool) (rs []rune, sizes []int) {
	v := mem.S(src)
	for v.Len() > 0 {
		r, n := escape.DecodeRune(v, pairs)
		rs = append(rs, r)
		sizes = append(sizes, n)
		v = v.SliceFrom(n)
	}
	return
}

func TestDecodeRune(t *testing.T) {
	tests := []struct {
		input string
		pairs bool
		want  []rune
	}{
		{"", false, nil},
		{"abc", false, []rune{'a', 'b', 'c'}},
		{`a\nb`, false, []rune{'a', '\n', 'b'}},
		{`\"\\\/\b\f\n\r\t`, false, []rune{'"', '\\', '/', '\b', '\f', '\n', '\r', '\t'}},
		{`Aé`, false, []rune{'A', 'é'}},
		{`A`, false, []rune{'A'}},
		{"café", false, []rune{'c', 'a', 'f', 'é'}}, // raw multi-byte
		{"世界", false, []rune{'世', '界'}},
		{"\U0001F600", false, []rune{0x1F600}}, // raw 4-byte sequence

		// Unrecognized escapes pass the backslash through literally.
		{`\q`, false, []rune{'\\', 'q'}},
		{`\`, false, []rune{'\\'}},
		{`\u12`, false, []rune{'\\', 'u', '1', '2'}}, // incomplete escape

		// Invalid hex digits map to the replacement rune.
		{`\uZZZZ`, false, []rune{utf8.RuneError}},

		// Surrogate pairs combine only when enabled.
		{`\uD83D\uDE00`, true, []rune{0x1F600}},
		{`\uD83D\uDE00`, false, []rune{utf8.RuneError, utf8.RuneError}},
		{"\U0001F600", true, []rune{0x1F600}}, // raw form needs no pairing
		{`\uD83D`, true, []rune{utf8.RuneError}},         // unpaired high
		{`\uDE00`, true, []rune{utf8.RuneError}},         // unpaired low
		{`\uD83Dx`, true, []rune{utf8.RuneError, 'x'}},   // high not followed by escape
		{`\uD83D\n`, true, []rune{utf8.RuneError, '\n'}}, // high followed by other escape
	}
	for _, tc := range tests {
		got, sizes := decodeAll(tc.input, tc.pairs)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("Decode %#q (pairs=%v): (-want, +got)\n%s", tc.input, tc.pairs, diff)
		}
		var total int
		for _, n := range sizes {
			total += n
		}
		if total != len(tc.input) {
			t.Errorf("Decode %#q: consumed %d bytes, want %d", tc.input, total, len(tc.input))
		}
	}
}

func TestEncodedLen(t *testing.T) {
	tests := []struct {
		input string
		wide  bool
		pairs bool
		want  int
	}{
		{"", false, false, 0},
		{"abc", false, false, 3},
		{`café`, false, false, 5},              // é is 2 UTF-8 bytes
		{`café`, true, false, 4},               // but 1 UTF-16 unit
		{`\uD83D\uDE00`, false, true, 4},       // one 4-byte UTF-8 sequence
		{`\uD83D\uDE00`, true, true, 2},        // one surrogate pair
		{`a\tb`, false, false, 3},
		{"世界", true, false, 2},
	}
	for _, tc := range tests {
		if got := escape.EncodedLen(mem.S(tc.input), tc.wide, tc.pairs); got != tc.want {
			t.Errorf("EncodedLen(%#q, wide=%v): got %d, want %d", tc.input, tc.wide, got, tc.want)
		}
	}
}

func TestAppendEncoded(t *testing.T) {
	tests := []struct {
		input string
		pairs bool
		want  string // decoded UTF-8 result
	}{
		{`plain`, false, "plain"},
		{`tab\there`, false, "tab\there"},
		{`ABC`, false, "ABC"},
		{`café`, false, "café"},
		{`\uD83D\uDE00!`, true, "\U0001F600!"},
	}
	for _, tc := range tests {
		got := escape.AppendEncoded(nil, mem.S(tc.input), false, tc.pairs)
		if string(got) != tc.want {
			t.Errorf("AppendEncoded(%#q): got %#q, want %#q", tc.input, got, tc.want)
		}
		if n := escape.EncodedLen(mem.S(tc.input), false, tc.pairs); n != len(got) {
			t.Errorf("EncodedLen(%#q): got %d, want %d", tc.input, n, len(got))
		}
	}
}
