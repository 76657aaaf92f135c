package llm

import "errors"

// ErrNoJSON is returned when a reply contains no balanced JSON value.
var ErrNoJSON = errors.New("no JSON found in model reply")

// ExtractObject returns the first balanced {...} in text, skipping braces
// that appear inside string literals.
func ExtractObject(text string) (string, bool) {
	return extractBalanced(text, '{', '}')
}

// ExtractArray returns the first balanced [...] in text.
func ExtractArray(text string) (string, bool) {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, close byte) (string, bool) {
	for start := 0; start < len(text); start++ {
		if text[start] != open {
			continue
		}
		if end, ok := scanBalanced(text, start, open, close); ok {
			return text[start : end+1], true
		}
	}
	return "", false
}

func scanBalanced(text string, start int, open, close byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
