package summarizer

import (
	"math"
	"regexp"
	"strings"

	"ragdesk/internal/chunker"
)

// Excerpt is the part of a source passage shown under an answer. Best is
// the sentence that answers the query; Before and After give context.
type Excerpt struct {
	Before  string
	Best    string
	After   string
	Matched bool
}

// Excerpter picks the sentence of a passage that best matches a query,
// falling back to word-frequency ranking when nothing overlaps.
type Excerpter struct {
	splitter     *chunker.SentenceSplitter
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	window       int
}

// NewExcerpter keeps at most window sentences around the best one.
func NewExcerpter(window int) *Excerpter {
	if window <= 0 {
		window = 3
	}
	return &Excerpter{
		splitter:     chunker.NewSentenceSplitter(),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
		window:       window,
	}
}

func (s *Excerpter) Excerpt(content, query string) Excerpt {
	sentences := s.splitter.Split(content)
	if len(sentences) == 0 {
		return Excerpt{}
	}
	best, matched := s.bestByOverlap(sentences, query)
	if !matched {
		best = s.bestByFrequency(sentences)
	}
	start, end := chunker.Window(len(sentences), best, s.window)
	return Excerpt{
		Before:  strings.Join(sentences[start:best], " "),
		Best:    sentences[best],
		After:   strings.Join(sentences[best+1:end], " "),
		Matched: matched,
	}
}

func (s *Excerpter) bestByOverlap(sentences []string, query string) (int, bool) {
	q := map[string]struct{}{}
	for _, tok := range s.tokens(query) {
		if _, stop := s.stopwords[tok]; !stop {
			q[tok] = struct{}{}
		}
	}
	if len(q) == 0 {
		return 0, false
	}
	bestIdx, bestScore := 0, 0
	for i, sent := range sentences {
		seen := map[string]struct{}{}
		score := 0
		for _, tok := range s.tokens(sent) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			if _, ok := q[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx, bestScore > 0
}

func (s *Excerpter) bestByFrequency(sentences []string) int {
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF == 0 {
		return 0
	}
	bestIdx, bestScore := 0, -1.0
	for i, sent := range sentences {
		toks := s.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok] / maxF
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	return bestIdx
}

func (s *Excerpter) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "why", "when", "where", "do", "does", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
