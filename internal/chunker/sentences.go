package chunker

import (
	"regexp"
	"strings"
)

// SentenceSplitter splits retrieved passages into sentences.
type SentenceSplitter struct {
	splitter *regexp.Regexp
}

func NewSentenceSplitter() *SentenceSplitter {
	return &SentenceSplitter{splitter: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)}
}

// Split returns the trimmed, non-empty sentences of text. Trailing text
// without terminal punctuation becomes the last sentence.
func (c *SentenceSplitter) Split(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range c.splitter.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Window returns the bounds [start, end) of at most size sentences out of n
// around center, keeping center inside and shifting at the edges.
func Window(n, center, size int) (start, end int) {
	if n <= 0 {
		return 0, 0
	}
	if size <= 0 || size > n {
		size = n
	}
	center = min(max(center, 0), n-1)
	start = center - (size-1)/2
	if start < 0 {
		start = 0
	}
	end = start + size
	if end > n {
		end = n
		start = end - size
	}
	return start, end
}
