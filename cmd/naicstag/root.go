package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"naicstag/internal/config"
	"naicstag/internal/corpus"
	"naicstag/internal/embedding/tfidf"
	"naicstag/internal/logging"
	"naicstag/internal/normalizer"
	"naicstag/internal/service"
	"naicstag/internal/vectorstore"
	"naicstag/internal/vectorstore/memory"
)

// configEnv names a config file when --config is not given.
const configEnv = "NAICSTAG_CONFIG"

type rootOptions struct {
	configPath string
	corpusPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "naicstag",
		Short:         "Tag company descriptions with NAICS subsectors",
		Long:          "naicstag ranks a free-text business description against a NAICS subsector corpus by TF-IDF cosine similarity and reports the three closest subsectors.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config file (default: $"+configEnv+", ./config.yaml, then ~/.config/naicstag/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.corpusPath, "corpus", "", "Path to the subsector CSV/TSV (overrides corpus.path)")

	cmd.AddCommand(newClassifyCmd(opts))
	cmd.AddCommand(newInteractiveCmd(opts))
	cmd.AddCommand(newCleanCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig() (*config.AppConfig, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	if o.corpusPath != "" {
		cfg.Corpus.Path = o.corpusPath
	}
	return cfg, nil
}

func newLogger(cfg *config.AppConfig) (*slog.Logger, error) {
	return logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func newNormalizer(cfg *config.AppConfig) *normalizer.Normalizer {
	return normalizer.New(normalizer.Options{NoiseWords: cfg.Normalizer.NoiseWords})
}

func corpusColumns(cfg *config.AppConfig) corpus.Columns {
	return corpus.Columns{
		Code:    cfg.Corpus.CodeColumn,
		Name:    cfg.Corpus.NameColumn,
		Content: cfg.Corpus.ContentColumn,
		Raw:     cfg.Corpus.RawColumn,
	}
}

func weightOptions(cfg *config.AppConfig) tfidf.Options {
	w := cfg.Weighting
	var stop map[string]struct{}
	if w.StopWords == "none" {
		stop = tfidf.StopWordSet(w.ExtraStopWords)
	} else {
		stop = tfidf.EnglishStopWords()
		for _, s := range w.ExtraStopWords {
			stop[s] = struct{}{}
		}
	}
	return tfidf.Options{
		MinDF:          w.MinDF,
		MaxDF:          w.MaxDF,
		MinTokenLength: w.MinTokenLength,
		StopWords:      stop,
	}
}

// buildService assembles the classifier and loads the corpus.
func buildService(cfg *config.AppConfig, logger *slog.Logger) (*service.ClassifierServiceImpl, error) {
	norm := newNormalizer(cfg)

	var newStore service.StoreFactory
	if cfg.Ranking.Mode == config.ModeCached {
		newStore = func() vectorstore.Storage { return memory.NewStorage() }
	}

	svc := service.NewClassifierService(norm, weightOptions(cfg), newStore, service.Options{
		Mode:         cfg.Ranking.Mode,
		OnDegenerate: cfg.Weighting.OnDegenerate,
		EmptyQuery:   cfg.Ranking.EmptyQuery,
		ExplainTerms: cfg.Ranking.ExplainTerms,
		Workers:      cfg.Batch.Workers,
	}, logger)

	provider := corpus.NewCSVProvider(cfg.Corpus.Path, corpusColumns(cfg), norm)
	if err := svc.LoadCorpus(provider); err != nil {
		return nil, err
	}
	return svc, nil
}
