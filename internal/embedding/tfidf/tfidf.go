package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"naicstag/internal/domain"
)

const (
	DefaultMinDF          = 0.002
	DefaultMaxDF          = 0.1
	DefaultMinTokenLength = 2
)

// Options controls vocabulary pruning.
type Options struct {
	// MinDF and MaxDF are document-frequency proportions in [0, 1]. A term
	// is kept when MinDF*N <= df <= MaxDF*N over N documents.
	MinDF float64
	MaxDF float64
	// Tokens shorter than MinTokenLength bytes never enter the vocabulary.
	MinTokenLength int
	StopWords      map[string]struct{}
}

// DefaultOptions returns the pruning used for subsector matching.
func DefaultOptions() Options {
	return Options{
		MinDF:          DefaultMinDF,
		MaxDF:          DefaultMaxDF,
		MinTokenLength: DefaultMinTokenLength,
		StopWords:      EnglishStopWords(),
	}
}

// Relaxed returns a copy of o that admits every non-stop-word term.
func (o Options) Relaxed() Options {
	o.MinDF = 0
	o.MaxDF = 1
	return o
}

// Validate checks that the frequency bounds are usable.
func (o Options) Validate() error {
	if o.MinDF < 0 || o.MinDF > 1 {
		return fmt.Errorf("min_df must be within [0, 1], got %v", o.MinDF)
	}
	if o.MaxDF < 0 || o.MaxDF > 1 {
		return fmt.Errorf("max_df must be within [0, 1], got %v", o.MaxDF)
	}
	if o.MaxDF < o.MinDF {
		return fmt.Errorf("max_df (%v) is lower than min_df (%v)", o.MaxDF, o.MinDF)
	}
	return nil
}

// Matrix is a document-term weight matrix. Every non-empty row has unit
// Euclidean norm; a document with no vocabulary term has an empty row.
type Matrix struct {
	Vocabulary []string
	IDF        []float64
	Rows       []Row
}

// Dimension returns the number of vocabulary columns.
func (m *Matrix) Dimension() int { return len(m.Vocabulary) }

// Builder computes TF-IDF matrices over a full document set.
type Builder struct {
	opts Options
}

// NewBuilder creates a Builder with the given pruning options.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Options returns the pruning options of the builder.
func (b *Builder) Options() Options { return b.opts }

// Build weights documents, keeping their order as matrix rows. Documents are
// cleaned text whose tokens are separated by whitespace.
func (b *Builder) Build(documents []string) (*Matrix, error) {
	tokenized := make([][]string, len(documents))
	for i, d := range documents {
		tokenized[i] = tokenize(d, b.opts)
	}
	v, err := fit(tokenized, b.opts)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(tokenized))
	for i, toks := range tokenized {
		rows[i] = v.weigh(toks)
	}
	return &Matrix{Vocabulary: v.terms, IDF: v.idf, Rows: rows}, nil
}

// vocabulary holds the sorted retained terms and their smoothed IDF values.
type vocabulary struct {
	terms []string
	index map[string]int
	idf   []float64
}

func fit(tokenized [][]string, opts Options) (*vocabulary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(tokenized) == 0 {
		return nil, fmt.Errorf("%w: no documents", domain.ErrDegenerateVocabulary)
	}
	df := make(map[string]int)
	for _, toks := range tokenized {
		seen := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	n := float64(len(tokenized))
	low, high := opts.MinDF*n, opts.MaxDF*n
	terms := make([]string, 0, len(df))
	for term, count := range df {
		c := float64(count)
		if c < low || c > high {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w (%d documents, %d candidate terms)", domain.ErrDegenerateVocabulary, len(tokenized), len(df))
	}
	sort.Strings(terms)
	v := &vocabulary{
		terms: terms,
		index: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.index[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

// weigh computes the L2-normalized raw-count TF-IDF row of tokens.
func (v *vocabulary) weigh(tokens []string) Row {
	tf := make(map[int]int)
	for _, tok := range tokens {
		if idx, ok := v.index[tok]; ok {
			tf[idx]++
		}
	}
	if len(tf) == 0 {
		return Row{}
	}
	row := Row{
		Indices: make([]int, 0, len(tf)),
		Values:  make([]float64, 0, len(tf)),
	}
	for idx := range tf {
		row.Indices = append(row.Indices, idx)
	}
	sort.Ints(row.Indices)
	for _, idx := range row.Indices {
		row.Values = append(row.Values, float64(tf[idx])*v.idf[idx])
	}
	row.normalize()
	return row
}

func tokenize(text string, opts Options) []string {
	raw := strings.Fields(text)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if len(t) < opts.MinTokenLength {
			continue
		}
		if _, isStop := opts.StopWords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Embedder implements domain.Embedder with a vocabulary fixed from the
// corpus alone. Queries are projected onto that vocabulary, so terms unseen
// during Prepare are ignored.
type Embedder struct {
	opts     Options
	vocab    *vocabulary
	prepared bool
}

// NewEmbedder creates an unprepared TF-IDF embedder.
func NewEmbedder(opts Options) *Embedder {
	return &Embedder{opts: opts}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	tokenized := make([][]string, len(corpus))
	for i, text := range corpus {
		tokenized[i] = tokenize(text, e.opts)
	}
	v, err := fit(tokenized, e.opts)
	if err != nil {
		return err
	}
	e.vocab = v
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int {
	if e.vocab == nil {
		return 0
	}
	return len(e.vocab.terms)
}

// Vocabulary returns the sorted vocabulary terms.
func (e *Embedder) Vocabulary() []string {
	if e.vocab == nil {
		return nil
	}
	return e.vocab.terms
}

// Embed computes the dense TF-IDF embedding for the given cleaned text.
func (e *Embedder) Embed(text string) ([]float64, error) {
	row, err := e.EmbedRow(text)
	if err != nil {
		return nil, err
	}
	return row.Dense(e.Dimension()), nil
}

// EmbedRow computes the sparse TF-IDF row for the given cleaned text.
func (e *Embedder) EmbedRow(text string) (Row, error) {
	if !e.prepared {
		return Row{}, errors.New("tfidf embedder not prepared")
	}
	return e.vocab.weigh(tokenize(text, e.opts)), nil
}
