package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ModePerQuery = "per_query"
	ModeCached   = "cached"

	OnDegenerateError = "error"
	OnDegenerateRelax = "relax"

	EmptyQueryError       = "error"
	EmptyQueryCorpusOrder = "corpus_order"
)

// CorpusConfig locates the reference subsector file and its columns.
type CorpusConfig struct {
	Path          string `yaml:"path" validate:"required"`
	CodeColumn    string `yaml:"code_column" validate:"required"`
	NameColumn    string `yaml:"name_column" validate:"required"`
	ContentColumn string `yaml:"content_column" validate:"required"`
	// RawColumn, when set, is normalized on load instead of reading ContentColumn.
	RawColumn string `yaml:"raw_column,omitempty"`
}

// NormalizerConfig configures text cleaning.
type NormalizerConfig struct {
	NoiseWords []string `yaml:"noise_words"`
}

// WeightingConfig configures vocabulary pruning and TF-IDF weighting.
type WeightingConfig struct {
	MinDF          float64  `yaml:"min_df" validate:"gte=0,lte=1"`
	MaxDF          float64  `yaml:"max_df" validate:"gte=0,lte=1,gtefield=MinDF"`
	MinTokenLength int      `yaml:"min_token_length" validate:"gte=1"`
	StopWords      string   `yaml:"stop_words" validate:"oneof=english none"`
	ExtraStopWords []string `yaml:"extra_stop_words,omitempty"`
	OnDegenerate   string   `yaml:"on_degenerate" validate:"oneof=error relax"`
}

// RankingConfig selects how queries are scored.
type RankingConfig struct {
	Mode         string `yaml:"mode" validate:"oneof=per_query cached"`
	EmptyQuery   string `yaml:"empty_query" validate:"oneof=error corpus_order"`
	ExplainTerms int    `yaml:"explain_terms" validate:"gte=0"`
}

// BatchConfig bounds concurrent classification of many queries.
type BatchConfig struct {
	Workers int `yaml:"workers" validate:"gte=1"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text console json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Weighting  WeightingConfig  `yaml:"weighting"`
	Ranking    RankingConfig    `yaml:"ranking"`
	Batch      BatchConfig      `yaml:"batch"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/naicstag/config.yaml.
// If neither exists, it writes defaults to ~/.config/naicstag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	// Namespace is "AppConfig.<section>.<key>"
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: unknown value %q (want one of %s)", field, fe.Value(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s (%v) is lower than min_df", field, fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s: %v fails %s=%s", field, fe.Value(), fe.Tag(), fe.Param())
	}
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "naicstag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Corpus: CorpusConfig{
			Path:          "subsector_cleaned_data.csv",
			CodeColumn:    "subsector_code",
			NameColumn:    "subsector_name",
			ContentColumn: "cleaned_content",
		},
		Normalizer: NormalizerConfig{NoiseWords: []string{"industry"}},
		Weighting: WeightingConfig{
			MinDF:          0.002,
			MaxDF:          0.1,
			MinTokenLength: 2,
			StopWords:      "english",
			OnDegenerate:   OnDegenerateRelax,
		},
		Ranking: RankingConfig{Mode: ModePerQuery, EmptyQuery: EmptyQueryError, ExplainTerms: 3},
		Batch:   BatchConfig{Workers: 4},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	d := Default()
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = d.Corpus.Path
	}
	if cfg.Corpus.CodeColumn == "" {
		cfg.Corpus.CodeColumn = d.Corpus.CodeColumn
	}
	if cfg.Corpus.NameColumn == "" {
		cfg.Corpus.NameColumn = d.Corpus.NameColumn
	}
	if cfg.Corpus.ContentColumn == "" {
		cfg.Corpus.ContentColumn = d.Corpus.ContentColumn
	}
	if cfg.Weighting.MinTokenLength <= 0 {
		cfg.Weighting.MinTokenLength = d.Weighting.MinTokenLength
	}
	if cfg.Weighting.StopWords == "" {
		cfg.Weighting.StopWords = d.Weighting.StopWords
	}
	if cfg.Weighting.OnDegenerate == "" {
		cfg.Weighting.OnDegenerate = d.Weighting.OnDegenerate
	}
	if cfg.Ranking.Mode == "" {
		cfg.Ranking.Mode = d.Ranking.Mode
	}
	if cfg.Ranking.EmptyQuery == "" {
		cfg.Ranking.EmptyQuery = d.Ranking.EmptyQuery
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = d.Batch.Workers
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
}
