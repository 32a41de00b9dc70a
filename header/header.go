// SPDX-License-Identifier: ice License 1.0

package header

import (
	"strings"
	"unicode/utf8"

	"github.com/gobwas/httphead"
)

// One implements the single-value header contract: it succeeds only if the header
// occurred exactly once and its value is valid UTF-8. Zero or multiple occurrences
// yield no value, they are never concatenated.
func One[T ~string](raw []string) (T, bool) {
	if len(raw) != 1 || !utf8.ValidString(raw[0]) {
		return "", false
	}

	return T(raw[0]), true
}

func ParseOrigin(raw []string) (Origin, bool) {
	return One[Origin](raw)
}

func ParseKey(raw []string) (Key, bool) {
	return One[Key](raw)
}

func ParseVersion(raw []string) (Version, bool) {
	return One[Version](raw)
}

func (o Origin) Bytes() []byte {
	return []byte(o)
}

func (k Key) Bytes() []byte {
	return []byte(k)
}

func (v Version) Bytes() []byte {
	return []byte(v)
}

// ParseTokens scans every raw occurrence as a comma-separated token list.
// A nil result means the header was absent, a non-nil empty one means it was
// present but carried no valid token.
func ParseTokens(raw []string) Tokens {
	if len(raw) == 0 {
		return nil
	}
	tokens := Tokens{}
	for i := range raw {
		httphead.ScanTokens([]byte(raw[i]), func(v []byte) bool {
			tokens = append(tokens, string(v))

			return true
		})
	}

	return tokens
}

// Contains reports whether the set carries the token, compared case-insensitively.
func (t Tokens) Contains(token string) bool {
	for i := range t {
		if strings.EqualFold(t[i], token) {
			return true
		}
	}

	return false
}

func ParseProtocol(raw []string) Protocol {
	return Protocol(ParseTokens(raw))
}

// ParseExtensions scans every raw occurrence as a comma-separated option list,
// keeping extension parameters attached to their option.
func ParseExtensions(raw []string) Extensions {
	if len(raw) == 0 {
		return nil
	}
	exts := Extensions{}
	for i := range raw {
		index := -1
		var current httphead.Option
		httphead.ScanOptions([]byte(raw[i]), func(idx int, name, attr, val []byte) httphead.Control {
			if idx != index {
				if current.Size() > 0 {
					exts = append(exts, current.Clone())
				}
				index = idx
				current = httphead.Option{Name: name}
			}
			if attr != nil {
				current.Parameters.Set(attr, val)
			}

			return httphead.ControlContinue
		})
		if current.Size() > 0 {
			exts = append(exts, current.Clone())
		}
	}

	return exts
}
