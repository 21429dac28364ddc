package textsplit

import "strings"

// Split cuts text into pieces of at most maxRunes runes, overlapping by
// overlap runes so that facts straddling a boundary stay retrievable from
// both sides. Boundaries prefer the last whitespace before the cut so words
// are not severed mid-rune-sequence.
func Split(text string, maxRunes, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []string{text}
	}
	if overlap < 0 || overlap >= maxRunes {
		overlap = 0
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + maxRunes
		if end >= len(runes) {
			parts = append(parts, strings.TrimSpace(string(runes[start:])))
			break
		}

		cut := lastBreak(runes[start:end])
		if cut <= overlap {
			cut = maxRunes // no usable whitespace, hard cut
		}

		parts = append(parts, strings.TrimSpace(string(runes[start:start+cut])))
		start += cut - overlap
	}

	return parts
}

// lastBreak returns the index just past the last whitespace rune in window,
// or the window length when it contains none.
func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == ' ' || window[i] == '\n' || window[i] == '\t' {
			return i + 1
		}
	}
	return len(window)
}
