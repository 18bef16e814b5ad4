package domain

// Subsector is one row of the reference taxonomy. Content has already been
// passed through the same Normalizer that is applied to queries.
type Subsector struct {
	Code    string
	Name    string
	Content string
}

// ScoredIndex pairs a corpus position with its similarity to the query.
type ScoredIndex struct {
	Index int
	Score float64
}

// Match is a single ranked subsector returned to the caller.
type Match struct {
	Rank   int      `json:"rank"`
	Code   string   `json:"subsector_code"`
	Name   string   `json:"subsector_name"`
	Score  float64  `json:"score"`
	Shared []string `json:"shared_terms,omitempty"`
}

// MatchReport holds exactly MatchCount matches in descending similarity order.
type MatchReport struct {
	Query   string  `json:"query"`
	Cleaned string  `json:"cleaned"`
	Matches []Match `json:"matches"`
}

// MatchCount is the number of subsectors a MatchReport carries.
const MatchCount = 3

// Normalizer turns free text into a cleaned, space-joined stem sequence.
type Normalizer interface {
	Normalize(text string) string
	Tokens(text string) []string
}

// Embedder converts cleaned text into a numeric vector using a vocabulary
// fixed during a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// CorpusProvider supplies the reference taxonomy in its original order.
type CorpusProvider interface {
	Load() ([]Subsector, error)
}

// Classifier defines the operations exposed by the application core.
type Classifier interface {
	Classify(query string) (*MatchReport, error)
}
