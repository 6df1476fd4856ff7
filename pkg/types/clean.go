package types

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MaxCommentBytes is the maximum size of cleaned comment text.
const MaxCommentBytes = 81920

var (
	newlineRun = regexp.MustCompile(`\n{3,}`)
	crlf       = strings.NewReplacer("\r\n", "\n", "\r", "\n")
	lineBreaks = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
)

// CleanCommentString strips markup, trims, truncates to MaxCommentBytes,
// normalizes line endings to LF and collapses runs of three or more
// newlines to two. Truncation happens before newline normalization, so a
// cut inside a newline run is still collapsed; whitespace the cut leaves
// at the end is trimmed. The steps repeat until the result is stable, so
// cleaning a cleaned string returns it unchanged.
func CleanCommentString(s string) string {
	return untilStable(s, cleanOnce)
}

// cleanLine strips markup, truncates to max bytes and turns CR, LF and TAB
// into spaces, repeating until the result is stable.
func cleanLine(s string, max int) string {
	return untilStable(s, func(s string) string {
		s = StripTags(s)
		if len(s) > max {
			s = s[:max]
		}
		return lineBreaks.Replace(s)
	})
}

// untilStable applies fn until its output equals its input. Every step fn
// performs either shortens the string or replaces CR with another byte,
// so the loop ends.
func untilStable(s string, fn func(string) string) string {
	for {
		next := fn(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(s string) string {
	s = strings.TrimSpace(StripTags(strings.TrimSpace(s)))
	if len(s) > MaxCommentBytes {
		s = s[:MaxCommentBytes]
	}
	s = crlf.Replace(s)
	if strings.Contains(s, "\n\n\n") {
		s = newlineRun.ReplaceAllString(s, "\n\n")
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// StripTags removes tags, comments and doctypes and keeps text exactly as
// written, entities included. An unterminated tag at the end of input is
// dropped. Removing a tag can join a stray "<" with the text after it into
// a new tag, so passes repeat until nothing more is removed.
func StripTags(s string) string {
	for strings.Contains(s, "<") {
		next := stripOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func stripOnce(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}
