package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Retrieval holds the tuning knobs for chunking, expansion, fusion and the
// chat tool loop. Values come from defaults, optionally overlaid by a YAML file.
type Retrieval struct {
	ChunkSize            int           `yaml:"chunk_size"`
	ChunkOverlap         int           `yaml:"chunk_overlap"`
	Expansions           int           `yaml:"expansions"`
	PerVariantK          int           `yaml:"per_variant_k"`
	TopK                 int           `yaml:"top_k"`
	RRFK                 int           `yaml:"rrf_k"`
	MaxParallelSearches  int           `yaml:"max_parallel_searches"`
	ExposeFusedScore     bool          `yaml:"expose_fused_score"`
	SearchTimeout        time.Duration `yaml:"search_timeout"`
	ExpansionTimeout     time.Duration `yaml:"expansion_timeout"`
	EmbedTimeout         time.Duration `yaml:"embed_timeout"`
	ChatTimeout          time.Duration `yaml:"chat_timeout"`
	LLMRequestsPerSecond float64       `yaml:"llm_requests_per_second"`
	LLMBurst             int           `yaml:"llm_burst"`
	ChatMaxToolRounds    int           `yaml:"chat_max_tool_rounds"`
}

// DefaultRetrieval returns the reference tuning.
func DefaultRetrieval() Retrieval {
	return Retrieval{
		ChunkSize:            1000,
		ChunkOverlap:         200,
		Expansions:           3,
		PerVariantK:          5,
		TopK:                 6,
		RRFK:                 60,
		MaxParallelSearches:  8,
		SearchTimeout:        10 * time.Second,
		ExpansionTimeout:     15 * time.Second,
		EmbedTimeout:         30 * time.Second,
		ChatTimeout:          30 * time.Second,
		LLMRequestsPerSecond: 5,
		LLMBurst:             10,
		ChatMaxToolRounds:    4,
	}
}

// LoadRetrieval returns the default tuning overlaid with the YAML file at path.
// An empty path means defaults only. Keys missing from the file keep their defaults.
func LoadRetrieval(path string) (Retrieval, error) {
	r := DefaultRetrieval()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Retrieval{}, fmt.Errorf("failed to read retrieval config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Retrieval{}, fmt.Errorf("failed to parse retrieval config %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Retrieval{}, fmt.Errorf("invalid retrieval config %s: %w", path, err)
	}
	return r, nil
}

// Validate checks that every knob is usable.
func (r Retrieval) Validate() error {
	switch {
	case r.ChunkSize <= 0:
		return fmt.Errorf("chunk_size must be greater than 0")
	case r.ChunkOverlap < 0:
		return fmt.Errorf("chunk_overlap must not be negative")
	case r.ChunkOverlap >= r.ChunkSize:
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", r.ChunkOverlap, r.ChunkSize)
	case r.Expansions < 0:
		return fmt.Errorf("expansions must not be negative")
	case r.PerVariantK <= 0:
		return fmt.Errorf("per_variant_k must be greater than 0")
	case r.TopK <= 0:
		return fmt.Errorf("top_k must be greater than 0")
	case r.RRFK < 0:
		return fmt.Errorf("rrf_k must not be negative")
	case r.MaxParallelSearches <= 0:
		return fmt.Errorf("max_parallel_searches must be greater than 0")
	case r.SearchTimeout <= 0, r.ExpansionTimeout <= 0, r.EmbedTimeout <= 0, r.ChatTimeout <= 0:
		return fmt.Errorf("timeouts must be greater than 0")
	case r.LLMRequestsPerSecond < 0 || r.LLMBurst < 0:
		return fmt.Errorf("llm rate limit must not be negative")
	case r.ChatMaxToolRounds <= 0:
		return fmt.Errorf("chat_max_tool_rounds must be greater than 0")
	}
	return nil
}
