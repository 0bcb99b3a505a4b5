package editor

import "strings"

// LineEnding is the preferred newline sequence when saving. Text is stored
// LF-normalized internally regardless.
type LineEnding uint8

const (
	// LineEndingLF is Unix-style "\n".
	LineEndingLF LineEnding = iota
	// LineEndingCRLF is Windows-style "\r\n".
	LineEndingCRLF
)

// String returns the escaped representation of the line ending.
func (le LineEnding) String() string {
	if le == LineEndingCRLF {
		return "\\r\\n"
	}
	return "\\n"
}

// Sequence returns the actual newline characters.
func (le LineEnding) Sequence() string {
	if le == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// DetectLineEnding returns CRLF when the text contains any "\r\n",
// LF otherwise.
func DetectLineEnding(text string) LineEnding {
	if strings.Contains(text, "\r\n") {
		return LineEndingCRLF
	}
	return LineEndingLF
}

// normalizeNewlines converts CRLF and stray CR to LF.
func normalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// applyLineEnding converts LF-normalized text to the given line ending.
func applyLineEnding(text string, le LineEnding) string {
	if le == LineEndingCRLF {
		return strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}
