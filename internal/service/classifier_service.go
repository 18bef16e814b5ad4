package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"naicstag/internal/config"
	"naicstag/internal/domain"
	"naicstag/internal/embedding/tfidf"
	"naicstag/internal/ranking"
	"naicstag/internal/vectorstore"
)

// Options controls classification behavior.
type Options struct {
	// Mode is config.ModePerQuery (weights rebuilt over query+corpus on
	// every call) or config.ModeCached (corpus-only vocabulary, queries
	// projected onto it).
	Mode         string
	OnDegenerate string
	EmptyQuery   string
	ExplainTerms int
	Workers      int
}

// ClassifierServiceImpl matches free-text descriptions against a read-only
// subsector corpus. Classify is safe for concurrent use once a corpus is
// loaded.
type ClassifierServiceImpl struct {
	normalizer domain.Normalizer
	weights    tfidf.Options
	newStore   StoreFactory
	opts       Options
	logger     *slog.Logger

	mu       sync.RWMutex
	corpus   []domain.Subsector
	contents []string
	embedder *tfidf.Embedder
	store    vectorstore.Storage
}

// StoreFactory returns an empty vector store. Cached mode fills a new store
// for every corpus and swaps it in together with the embedder.
type StoreFactory func() vectorstore.Storage

func NewClassifierService(normalizer domain.Normalizer, weights tfidf.Options, newStore StoreFactory, opts Options, logger *slog.Logger) *ClassifierServiceImpl {
	if opts.Mode == "" {
		opts.Mode = config.ModePerQuery
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifierServiceImpl{normalizer: normalizer, weights: weights, newStore: newStore, opts: opts, logger: logger}
}

// LoadCorpus reads the corpus from provider and prepares it for ranking.
func (s *ClassifierServiceImpl) LoadCorpus(provider domain.CorpusProvider) error {
	records, err := provider.Load()
	if err != nil {
		return domain.AtStage(domain.StageLoad, err)
	}
	return s.SetCorpus(records)
}

// SetCorpus replaces the corpus. In cached mode the vocabulary and the
// reference vectors are computed here once.
func (s *ClassifierServiceImpl) SetCorpus(records []domain.Subsector) error {
	if len(records) < domain.MatchCount {
		return domain.AtStage(domain.StageLoad, fmt.Errorf("%w: got %d", domain.ErrInsufficientCorpus, len(records)))
	}
	corpus := make([]domain.Subsector, len(records))
	copy(corpus, records)
	contents := make([]string, len(corpus))
	for i, rec := range corpus {
		contents[i] = rec.Content
	}

	var (
		embedder *tfidf.Embedder
		store    vectorstore.Storage
	)
	if s.opts.Mode == config.ModeCached {
		var err error
		embedder, store, err = s.prepareIndex(corpus, contents)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.corpus = corpus
	s.contents = contents
	s.embedder = embedder
	s.store = store
	s.mu.Unlock()
	s.logger.Info("corpus loaded", "entries", len(corpus), "mode", s.opts.Mode)
	return nil
}

func (s *ClassifierServiceImpl) prepareIndex(corpus []domain.Subsector, contents []string) (*tfidf.Embedder, vectorstore.Storage, error) {
	if s.newStore == nil {
		return nil, nil, domain.AtStage(domain.StageWeight, errors.New("cached mode requires a vector store"))
	}
	var embedder *tfidf.Embedder
	err := s.withDegeneratePolicy(func(opts tfidf.Options) error {
		embedder = tfidf.NewEmbedder(opts)
		return embedder.Prepare(contents)
	})
	if err != nil {
		return nil, nil, domain.AtStage(domain.StageWeight, err)
	}
	vectors := make([][]float64, len(contents))
	for i, text := range contents {
		vec, err := embedder.Embed(text)
		if err != nil {
			return nil, nil, domain.AtStage(domain.StageWeight, err)
		}
		vectors[i] = vec
	}
	store := s.newStore()
	if err := store.Init(embedder.Dimension()); err != nil {
		return nil, nil, domain.AtStage(domain.StageWeight, err)
	}
	if err := store.Upsert(corpus, vectors); err != nil {
		return nil, nil, domain.AtStage(domain.StageWeight, err)
	}
	s.logger.Debug("corpus index built", "terms", embedder.Dimension())
	return embedder, store, nil
}

// Corpus returns the loaded subsectors.
func (s *ClassifierServiceImpl) Corpus() []domain.Subsector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Classify returns the three subsectors most similar to query.
func (s *ClassifierServiceImpl) Classify(query string) (*domain.MatchReport, error) {
	s.mu.RLock()
	corpus, contents, embedder, store := s.corpus, s.contents, s.embedder, s.store
	s.mu.RUnlock()

	if len(corpus) < domain.MatchCount {
		return nil, domain.AtStage(domain.StageSelect, fmt.Errorf("%w: got %d", domain.ErrInsufficientCorpus, len(corpus)))
	}

	tokens := s.normalizer.Tokens(query)
	if len(tokens) == 0 && s.opts.EmptyQuery != config.EmptyQueryCorpusOrder {
		return nil, domain.AtStage(domain.StageNormalize, domain.ErrEmptyQuery)
	}
	cleaned := s.normalizer.Normalize(query)

	var (
		ranked     []domain.ScoredIndex
		vocabulary []string
		queryRow   tfidf.Row
		rowOf      func(int) tfidf.Row
		err        error
	)
	if embedder != nil {
		queryRow, err = embedder.EmbedRow(cleaned)
		if err != nil {
			return nil, domain.AtStage(domain.StageWeight, err)
		}
		ranked, err = store.Search(queryRow.Dense(embedder.Dimension()), 0)
		if err != nil {
			return nil, domain.AtStage(domain.StageRank, err)
		}
		vocabulary = embedder.Vocabulary()
		rowOf = func(i int) tfidf.Row {
			_, vec, _ := store.Record(i)
			return tfidf.FromDense(vec)
		}
	} else {
		docs := make([]string, 0, len(contents)+1)
		docs = append(docs, cleaned)
		docs = append(docs, contents...)
		var m *tfidf.Matrix
		err = s.withDegeneratePolicy(func(opts tfidf.Options) error {
			var berr error
			m, berr = tfidf.NewBuilder(opts).Build(docs)
			return berr
		})
		if err != nil {
			return nil, domain.AtStage(domain.StageWeight, err)
		}
		ranked, err = ranking.Rank(m)
		if err != nil {
			return nil, domain.AtStage(domain.StageRank, err)
		}
		vocabulary = m.Vocabulary
		queryRow = m.Rows[0]
		rowOf = func(i int) tfidf.Row { return m.Rows[i+1] }
	}

	if queryRow.Len() == 0 && s.opts.EmptyQuery != config.EmptyQueryCorpusOrder {
		return nil, domain.AtStage(domain.StageWeight, domain.ErrEmptyQuery)
	}

	matches, err := ranking.Select(ranked, corpus)
	if err != nil {
		return nil, domain.AtStage(domain.StageSelect, err)
	}
	if s.opts.ExplainTerms > 0 {
		for i := range matches {
			matches[i].Shared = ranking.Explain(vocabulary, queryRow, rowOf(ranked[i].Index), s.opts.ExplainTerms)
		}
	}
	return &domain.MatchReport{Query: query, Cleaned: cleaned, Matches: matches}, nil
}

// ClassifyBatch classifies queries concurrently against the shared corpus.
// Reports are returned in input order; the first failure cancels the rest.
func (s *ClassifierServiceImpl) ClassifyBatch(ctx context.Context, queries []string) ([]*domain.MatchReport, error) {
	reports := make([]*domain.MatchReport, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			report, err := s.Classify(q)
			if err != nil {
				return fmt.Errorf("query %d: %w", i+1, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug("batch classified", "queries", len(queries), "workers", s.opts.Workers)
	return reports, nil
}

// withDegeneratePolicy runs build with the configured weights and, under the
// relax policy, retries once with frequency thresholds disabled.
func (s *ClassifierServiceImpl) withDegeneratePolicy(build func(tfidf.Options) error) error {
	err := build(s.weights)
	if err == nil || !errors.Is(err, domain.ErrDegenerateVocabulary) || s.opts.OnDegenerate != config.OnDegenerateRelax {
		return err
	}
	s.logger.Warn("vocabulary empty after pruning, retrying without frequency thresholds",
		"min_df", s.weights.MinDF, "max_df", s.weights.MaxDF)
	return build(s.weights.Relaxed())
}
