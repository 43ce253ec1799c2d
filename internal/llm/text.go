package llm

import (
	"encoding/json"
	"strings"
	"unicode"
)

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// RemoveThinkTags drops every <think>...</think> block, matching the tags
// case-insensitively. An unterminated block swallows the rest of the text
// and a stray closing tag is removed on its own.
func RemoveThinkTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inThink := false
	for i := 0; i < len(s); {
		switch {
		case hasPrefixFold(s[i:], thinkOpen):
			inThink = true
			i += len(thinkOpen)
		case hasPrefixFold(s[i:], thinkClose):
			inThink = false
			i += len(thinkClose)
		default:
			if !inThink {
				b.WriteByte(s[i])
			}
			i++
		}
	}
	return b.String()
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ExtractJSON returns the JSON document embedded in an LLM reply. The
// candidate runs from the first '[' (or '{' when there is none) to the last
// ']' (or '}'). When the candidate does not parse, control characters other
// than newline and tab are stripped and it is tried once more.
func ExtractJSON(s string) (string, bool) {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		start = strings.IndexByte(s, '{')
	}
	end := strings.LastIndexByte(s, ']')
	if end < 0 {
		end = strings.LastIndexByte(s, '}')
	}
	if start < 0 || end < start {
		return "", false
	}
	candidate := s[start : end+1]
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, candidate)
	if json.Valid([]byte(cleaned)) {
		return cleaned, true
	}
	return "", false
}
