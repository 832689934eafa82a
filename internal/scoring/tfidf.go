package scoring

import (
	"math"
	"strings"
	"unicode"
)

// Corpus is a TF-IDF term index built per request from a set of documents.
// It is not safe for concurrent mutation and is meant to be constructed,
// used, and discarded inside a single recommendation computation rather
// than shared across callers.
type Corpus struct {
	terms map[string]int // term -> column in the vector
	order []string
	df    []int // document frequency per column
	docs  int
}

// NewCorpus tokenizes the given documents and builds the term index.
func NewCorpus(documents []string) *Corpus {
	c := &Corpus{terms: make(map[string]int)}
	for _, doc := range documents {
		c.addDocument(doc)
	}
	return c
}

func (c *Corpus) addDocument(doc string) {
	c.docs++
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(doc) {
		idx, ok := c.terms[tok]
		if !ok {
			idx = len(c.order)
			c.terms[tok] = idx
			c.order = append(c.order, tok)
			c.df = append(c.df, 0)
		}
		if _, dup := seen[tok]; !dup {
			c.df[idx]++
			seen[tok] = struct{}{}
		}
	}
}

// Vector projects a document onto the corpus vocabulary as TF-IDF weights.
// Terms outside the vocabulary are ignored.
func (c *Corpus) Vector(doc string) []float64 {
	vec := make([]float64, len(c.order))
	if c.docs == 0 {
		return vec
	}

	tokens := Tokenize(doc)
	if len(tokens) == 0 {
		return vec
	}
	counts := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := c.terms[tok]; ok {
			counts[idx]++
		}
	}
	for idx, n := range counts {
		tf := float64(n) / float64(len(tokens))
		idf := math.Log(1 + float64(c.docs)/float64(1+c.df[idx]))
		vec[idx] = tf * idf
	}
	return vec
}

// Similarity is the cosine similarity of two documents under this corpus.
func (c *Corpus) Similarity(a, b string) float64 {
	return CosineSimilarity(c.Vector(a), c.Vector(b))
}

// Tokenize lowercases and splits on anything that is not a letter or digit.
func Tokenize(doc string) []string {
	return strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
