// Package span locates text fragments inside larger documents while tolerating
// differences in whitespace run length.
package span

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize collapses every maximal run of whitespace to a single ASCII space
// and trims leading and trailing whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Find returns the substring of haystack equivalent to needle.
//
// A verbatim occurrence is returned as is. Otherwise the earliest, then
// shortest, substring whose normalized form equals the normalized needle is
// returned. ok is false when no such substring exists.
func Find(haystack, needle string) (match string, ok bool) {
	start, end, ok := Locate(haystack, needle)
	if !ok {
		return "", false
	}
	return haystack[start:end], true
}

// Locate is Find returning byte offsets into haystack.
func Locate(haystack, needle string) (start, end int, ok bool) {
	target := Normalize(needle)
	if target == "" {
		return 0, 0, false
	}
	if i := strings.Index(haystack, needle); i >= 0 {
		return i, i + len(needle), true
	}
	if !strings.Contains(Normalize(haystack), target) {
		return 0, 0, false
	}

	first, _ := utf8.DecodeRuneInString(target)
	for i := 0; i < len(haystack); {
		r, size := utf8.DecodeRuneInString(haystack[i:])
		// A span with leading whitespace normalizes the same as the tighter span
		// after it, so only non-space starts can be the shortest match.
		if r == first {
			if j, matched := matchAt(haystack, i, target); matched {
				return i, j, true
			}
		}
		i += size
	}
	return 0, 0, false
}

// matchAt streams haystack from i against the normalized target and returns
// the end offset of the shortest span that normalizes to target.
func matchAt(haystack string, i int, target string) (int, bool) {
	p, k := i, 0
	for k < len(target) {
		if p >= len(haystack) {
			return 0, false
		}
		hr, hsize := utf8.DecodeRuneInString(haystack[p:])
		if target[k] == ' ' {
			if !unicode.IsSpace(hr) {
				return 0, false
			}
			for p < len(haystack) {
				r, size := utf8.DecodeRuneInString(haystack[p:])
				if !unicode.IsSpace(r) {
					break
				}
				p += size
			}
			k++
			continue
		}
		tr, tsize := utf8.DecodeRuneInString(target[k:])
		if hr != tr {
			return 0, false
		}
		p += hsize
		k += tsize
	}
	return p, true
}
