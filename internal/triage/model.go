package triage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"
)

type sparseVec = map[int]float64

// modelArtifact is the serialized form produced by the offline training
// pipeline: a fitted TF-IDF vocabulary plus logistic-regression
// coefficients. One coefficient row means a binary model scored with a
// sigmoid; one row per class means multinomial softmax.
type modelArtifact struct {
	Classes    []string       `json:"classes"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Coef       [][]float64    `json:"coef"`
	Intercept  []float64      `json:"intercept"`
}

// Model is the statistical fallback classifier. Immutable after load,
// safe for concurrent use. A nil *Model means "no artifact available",
// which is a normal configuration state, not a fault.
type Model struct {
	classes   []string
	vocab     map[string]int
	terms     []string // index -> vocabulary string
	idf       []float64
	coef      [][]float64
	intercept []float64
}

// LoadModel reads a model artifact from disk. A missing file yields
// (nil, nil): absence is expected before the first training run.
func LoadModel(path string) (*Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if len(art.Classes) < 2 {
		return nil, fmt.Errorf("model artifact has %d classes, need at least 2", len(art.Classes))
	}
	if len(art.IDF) != len(art.Vocabulary) {
		return nil, fmt.Errorf("model artifact idf length %d does not match vocabulary size %d", len(art.IDF), len(art.Vocabulary))
	}
	if len(art.Coef) != 1 && len(art.Coef) != len(art.Classes) {
		return nil, fmt.Errorf("model artifact has %d coefficient rows for %d classes", len(art.Coef), len(art.Classes))
	}
	if len(art.Intercept) != len(art.Coef) {
		return nil, fmt.Errorf("model artifact intercept length %d does not match coefficient rows %d", len(art.Intercept), len(art.Coef))
	}
	for i, row := range art.Coef {
		if len(row) != len(art.Vocabulary) {
			return nil, fmt.Errorf("model artifact coefficient row %d has %d entries, want %d", i, len(row), len(art.Vocabulary))
		}
	}

	terms := make([]string, len(art.Vocabulary))
	for term, idx := range art.Vocabulary {
		if idx < 0 || idx >= len(terms) {
			return nil, fmt.Errorf("model artifact vocabulary index %d out of range", idx)
		}
		terms[idx] = term
	}

	return &Model{
		classes:   art.Classes,
		vocab:     art.Vocabulary,
		terms:     terms,
		idf:       art.IDF,
		coef:      art.Coef,
		intercept: art.Intercept,
	}, nil
}

// Predict transforms normalized text into a TF-IDF vector and returns
// the arg-max class, its probability, and up to 3 vocabulary terms that
// are present in this specific input, heaviest first.
func (m *Model) Predict(text string) (string, float64, []string) {
	vec := m.vectorize(text)
	probs := m.predictProba(vec)

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return m.classes[best], probs[best], m.topTerms(vec, maxEvidenceTerms)
}

// vectorize computes l2-normalized TF-IDF weights over the fitted
// vocabulary. Unknown tokens are dropped.
func (m *Model) vectorize(text string) sparseVec {
	tf := make(map[int]int)
	for _, tok := range tokenize(text) {
		if idx, ok := m.vocab[tok]; ok {
			tf[idx]++
		}
	}

	vec := make(sparseVec, len(tf))
	var norm float64
	for idx, count := range tf {
		w := float64(count) * m.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func (m *Model) predictProba(vec sparseVec) []float64 {
	decisions := make([]float64, len(m.coef))
	for row := range m.coef {
		d := m.intercept[row]
		for idx, w := range vec {
			d += m.coef[row][idx] * w
		}
		decisions[row] = d
	}

	if len(m.coef) == 1 {
		// Binary model: sigmoid gives P(classes[1]).
		p := 1.0 / (1.0 + math.Exp(-decisions[0]))
		return []float64{1.0 - p, p}
	}

	// Multinomial: softmax over per-class decisions.
	max := decisions[0]
	for _, d := range decisions[1:] {
		if d > max {
			max = d
		}
	}
	probs := make([]float64, len(decisions))
	var sum float64
	for i, d := range decisions {
		probs[i] = math.Exp(d - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// topTerms returns the k heaviest nonzero dimensions mapped back to
// vocabulary strings. Ties break on vocabulary index so the output is
// deterministic.
func (m *Model) topTerms(vec sparseVec, k int) []string {
	type weighted struct {
		idx    int
		weight float64
	}
	entries := make([]weighted, 0, len(vec))
	for idx, w := range vec {
		if w > 0 {
			entries = append(entries, weighted{idx, w})
		}
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].weight != entries[b].weight {
			return entries[a].weight > entries[b].weight
		}
		return entries[a].idx < entries[b].idx
	})
	if len(entries) > k {
		entries = entries[:k]
	}

	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.idx < len(m.terms) && m.terms[e.idx] != "" {
			terms = append(terms, m.terms[e.idx])
		}
	}
	return terms
}

func tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	var cur strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			if cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
			}
		}
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}
