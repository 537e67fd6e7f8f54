package services

import (
	"strings"
	"unicode/utf8"
)

const MaxIdeaLength = 5000

const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"
)

// ContentFilter decides whether an idea text can become a report. Any
// non-empty text within MaxIdeaLength runes is accepted; the wording itself
// is never judged.
type ContentFilter struct {
	maxRunes int
}

func NewContentFilter() *ContentFilter {
	return &ContentFilter{maxRunes: MaxIdeaLength}
}

// Check returns a rejection reason, or "" when the text is acceptable.
func (f *ContentFilter) Check(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ReasonEmpty
	}
	if utf8.RuneCountInString(text) > f.maxRunes {
		return ReasonTooLong
	}
	return ""
}

// RejectionMessage is the Indonesian text shown to the user for a reason.
func RejectionMessage(reason string) string {
	switch reason {
	case ReasonEmpty:
		return "Deskripsi ide bisnis tidak boleh kosong."
	case ReasonTooLong:
		return "Deskripsi ide bisnis terlalu panjang (maksimal 5000 karakter)."
	default:
		return "Deskripsi ide bisnis tidak valid."
	}
}
