// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jbin

import (
	"errors"
	"math"
	"strconv"
)

// A numValue is the result of scanning one numeric literal. A single
// pass produces both interpretations: callers store the integer when
// the literal had no fractional or exponent part, and the float
// otherwise. An integer literal outside the configured width is not
// representable.
type numValue struct {
	i             int64
	f             float64
	size          int  // bytes of input consumed
	isReal        bool // a '.', 'e', or 'E' was seen
	representable bool // the value fits the configured width
}

// maxIntDigit bounds integer accumulation: one more digit past this
// point may overflow uint64.
const maxIntDigit = ^uint64(0) / 10

// scanNumber scans a numeric literal at the front of data. Leading
// whitespace, a leading '+' or '-', and redundant leading zeros are all
// accepted. Integer digit overflow is tracked but does not stop the
// scan; overflowed digits only matter when the literal turns out not to
// be real.
func scanNumber(data []byte, width32 bool) numValue {
	var nv numValue
	pos, n := 0, len(data)

	for pos < n && data[pos] <= ' ' {
		pos++
	}
	start := pos

	neg := false
	if pos < n && (data[pos] == '-' || data[pos] == '+') {
		neg = data[pos] == '-'
		pos++
	}

	var mag uint64
	overflow := false
	for pos < n && data[pos] >= '0' && data[pos] <= '9' {
		if mag < maxIntDigit {
			mag = mag*10 + uint64(data[pos]-'0')
		} else {
			overflow = true
		}
		pos++
	}
	if pos < n && data[pos] == '.' {
		nv.isReal = true
		pos++
		for pos < n && data[pos] >= '0' && data[pos] <= '9' {
			pos++
		}
	}
	digitEnd := pos
	if pos < n && (data[pos] == 'e' || data[pos] == 'E') {
		nv.isReal = true
		pos++
		if pos < n && (data[pos] == '-' || data[pos] == '+') {
			pos++
		}
		expStart := pos
		for pos < n && data[pos] >= '0' && data[pos] <= '9' {
			pos++
		}
		if pos > expStart {
			digitEnd = pos
		}
	}
	nv.size = pos

	if nv.isReal {
		nv.f, nv.representable = parseReal(data[start:digitEnd], width32)
		nv.i = int64(nv.f)
		return nv
	}

	nv.representable = !overflow && intFits(mag, neg, width32)
	if !nv.representable {
		return nv
	}
	if neg && mag == 1<<63 {
		nv.i = math.MinInt64
	} else if neg {
		nv.i = -int64(mag)
	} else {
		nv.i = int64(mag)
	}
	nv.f = float64(nv.i)
	return nv
}

// parseReal converts the delimited literal text to a float. ParseFloat
// is correctly rounded, which keeps the stored value within one ulp of
// the literal at any width. Degenerate literals the scanner admits but
// ParseFloat rejects (such as ".") read as zero, and a literal whose
// magnitude overflows the width is unrepresentable. An exponent marker
// with no digits is not part of lit, so "1e" reads as 1.
func parseReal(lit []byte, width32 bool) (float64, bool) {
	bitSize := 64
	if width32 {
		bitSize = 32
	}
	f, err := strconv.ParseFloat(string(lit), bitSize)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && ne.Err == strconv.ErrRange {
			return 0, false
		}
		return 0, true
	}
	return f, true
}

func intFits(mag uint64, neg, width32 bool) bool {
	if width32 {
		if neg {
			return mag <= 1<<31
		}
		return mag <= math.MaxInt32
	}
	if neg {
		return mag <= 1<<63
	}
	return mag <= math.MaxInt64
}
