package pipeline

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pustaka-id/book-ingest/pkg/logger"
)

// Below this many characters of raw text, frequency ranking is pointless
// and keywords come straight from the filename.
const minRankableText = 30

var (
	shortTextKeywords  = []string{"document", "book", "content", "text", "reading"}
	unfilteredKeywords = []string{"document", "content", "book", "text", "reading"}
	lastResortKeywords = []string{"document", "content", "text"}
)

// Ranker derives representative keywords from extracted book text. Rank is
// a total function: whatever the input looks like, it returns a best-effort
// list and never an error.
type Ranker struct {
	logger logger.Logger
	extra  map[string]struct{}
}

type RankerOption func(*Ranker)

// WithExtraStopwords extends the built-in stopword set.
func WithExtraStopwords(words []string) RankerOption {
	return func(r *Ranker) {
		for _, w := range words {
			r.extra[strings.ToLower(w)] = struct{}{}
		}
	}
}

func NewRanker(log logger.Logger, opts ...RankerOption) *Ranker {
	r := &Ranker{
		logger: log,
		extra:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rank selects up to maxKeywords lowercase alphabetic keywords from rawText,
// most frequent first. sourcePath feeds the filename fallback when the text
// is too short to rank.
func (r *Ranker) Rank(rawText, sourcePath string, maxKeywords int) []string {
	if maxKeywords <= 0 {
		return nil
	}

	if len(strings.TrimSpace(rawText)) < minRankableText {
		r.logger.Warn("Too little text to rank, deriving keywords from filename",
			logger.String("path", sourcePath),
		)
		return r.basicKeywords(sourcePath, maxKeywords)
	}

	cleaned := Clean(rawText)
	if cleaned == "" {
		r.logger.Warn("No text left after cleaning",
			logger.String("path", sourcePath),
		)
		return nil
	}

	filtered := r.filterTokens(Tokenize(cleaned))
	if len(filtered) == 0 {
		return r.rawTextFallback(rawText, maxKeywords)
	}

	keywords := rankByFrequency(filtered, maxKeywords)
	if len(keywords) == 0 {
		// every frequent token was shorter than 4 runes; cannot happen after
		// filterTokens, but guard anyway
		keywords = distinctLongTokens(filtered, maxKeywords)
	}
	if len(keywords) == 0 {
		keywords = lastResortKeywords
	}
	return truncate(keywords, maxKeywords)
}

// basicKeywords builds a keyword set from the filename plus fixed generic
// terms, for documents with no rankable text.
func (r *Ranker) basicKeywords(sourcePath string, maxKeywords int) []string {
	keywords := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{})
	appendUnique := func(w string) {
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}

	for _, w := range filenameWords(sourcePath, 3) {
		appendUnique(strings.ToLower(w))
	}
	for _, w := range shortTextKeywords {
		appendUnique(w)
	}

	return truncate(keywords, maxKeywords)
}

func (r *Ranker) isStopword(word string) bool {
	if _, ok := stopwords[word]; ok {
		return true
	}
	_, ok := r.extra[word]
	return ok
}

// filterTokens keeps lowercase alphabetic tokens longer than 3 runes that
// are not stopwords.
func (r *Ranker) filterTokens(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		w := strings.ToLower(stripNonLetters(tok))
		if len(w) > 3 && isAlpha(w) && !r.isStopword(w) {
			out = append(out, w)
		}
	}
	return out
}

// rawTextFallback re-derives candidates straight from the unclean text when
// stopword filtering removed everything.
func (r *Ranker) rawTextFallback(rawText string, maxKeywords int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range strings.Fields(rawText) {
		cw := strings.ToLower(stripNonLetters(w))
		if len(cw) > 4 && isAlpha(cw) {
			if _, ok := seen[cw]; !ok {
				seen[cw] = struct{}{}
				out = append(out, cw)
				if len(out) >= maxKeywords {
					break
				}
			}
		}
	}

	if len(out) == 0 {
		return truncate(unfilteredKeywords, maxKeywords)
	}
	return out
}

// rankByFrequency counts token frequency, takes the 3*max most frequent,
// and keeps tokens of length >= 4 until max are collected. Equal counts
// keep first-seen order, so the result is deterministic for a given token
// sequence.
func rankByFrequency(tokens []string, maxKeywords int) []string {
	type entry struct {
		word  string
		count int
		first int
	}

	index := make(map[string]*entry, len(tokens))
	var order []*entry
	for i, tok := range tokens {
		if e, ok := index[tok]; ok {
			e.count++
			continue
		}
		e := &entry{word: tok, count: 1, first: i}
		index[tok] = e
		order = append(order, e)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})

	if len(order) > 3*maxKeywords {
		order = order[:3*maxKeywords]
	}

	var keywords []string
	for _, e := range order {
		if len(e.word) >= 4 {
			keywords = append(keywords, e.word)
		}
		if len(keywords) >= maxKeywords {
			break
		}
	}
	return keywords
}

// distinctLongTokens returns up to max distinct tokens longer than 4 runes,
// in first-seen order.
func distinctLongTokens(tokens []string, maxKeywords int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range tokens {
		if len(tok) <= 4 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) >= maxKeywords {
			break
		}
	}
	return out
}

func isAlpha(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(word) > 0
}

func truncate(list []string, max int) []string {
	if len(list) <= max {
		return list
	}
	out := make([]string, max)
	copy(out, list[:max])
	return out
}
