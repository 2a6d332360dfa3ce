package analysis

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// minGroupSize gates keyword extraction: groups with fewer texts yield no
// keywords. Extraction is a reporting aid and degrades silently.
const minGroupSize = 10

// english stopwords (extend as needed)
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
	"my": {}, "me": {}, "i": {}, "so": {}, "if": {}, "its": {}, "can": {}, "do": {}, "does": {}, "very": {}, "when": {},
	"all": {}, "no": {}, "just": {}, "they": {}, "them": {}, "there": {}, "what": {}, "get": {}, "also": {}, "am": {},
}

// TopKeywords ranks the group's unigrams and bigrams by aggregate TF-IDF
// weight and returns the k heaviest terms, ties broken alphabetically.
// Returns nil for groups below minGroupSize or when stop-word removal leaves
// an empty vocabulary.
func TopKeywords(texts []string, k int) []string {
	if len(texts) < minGroupSize || k <= 0 {
		return nil
	}

	// term -> per-document raw counts, and document frequency
	termDocs := map[string][]int{}
	docFreq := map[string]int{}
	for i, text := range texts {
		seen := map[string]struct{}{}
		for _, term := range ngrams(tokens(text)) {
			counts, ok := termDocs[term]
			if !ok {
				counts = make([]int, len(texts))
				termDocs[term] = counts
			}
			counts[i]++
			if _, dup := seen[term]; !dup {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(termDocs) == 0 {
		return nil
	}

	// smoothed idf, weight = sum of tf*idf across the group
	n := float64(len(texts))
	type weighted struct {
		term   string
		weight float64
	}
	list := make([]weighted, 0, len(termDocs))
	for term, counts := range termDocs {
		idf := math.Log((1+n)/(1+float64(docFreq[term]))) + 1
		var w float64
		for _, c := range counts {
			w += float64(c) * idf
		}
		list = append(list, weighted{term, w})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].weight == list[j].weight {
			return list[i].term < list[j].term
		}
		return list[i].weight > list[j].weight
	})

	if k > len(list) {
		k = len(list)
	}
	out := make([]string, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, list[i].term)
	}
	return out
}

// tokens lowercases, splits on non-alphanumerics and drops stopwords and
// single-character fragments.
func tokens(text string) []string {
	sep := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	words := strings.FieldsFunc(Normalize(text), sep)
	out := words[:0]
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ngrams emits the unigrams plus adjacent bigrams of the filtered tokens.
func ngrams(toks []string) []string {
	out := make([]string, 0, len(toks)*2)
	for i, t := range toks {
		out = append(out, t)
		if i+1 < len(toks) {
			out = append(out, t+" "+toks[i+1])
		}
	}
	return out
}
