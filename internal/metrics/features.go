// Package metrics derives size features from message text. Only counts are
// produced; the text itself never leaves this package.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: countLines(s),
	}
}

// Add returns the element-wise sum of f and o.
func (f Features) Add(o Features) Features {
	return Features{
		Bytes: f.Bytes + o.Bytes,
		Runes: f.Runes + o.Runes,
		Words: f.Words + o.Words,
		Lines: f.Lines + o.Lines,
	}
}

// Fields renders f for a telemetry event.
func (f Features) Fields() map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
