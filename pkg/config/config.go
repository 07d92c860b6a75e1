package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wahlkompass/internal/models"
)

type Config struct {
	LLM struct {
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float64 `yaml:"temperature"`
		APIKey         string  `yaml:"-"`
		BaseURL        string  `yaml:"base_url"`
	} `yaml:"llm"`

	Database struct {
		URL       string `yaml:"url"`
		TableName string `yaml:"table_name"`
		VectorDim int    `yaml:"vector_dim"`
		BatchSize int    `yaml:"batch_size"`
	} `yaml:"database"`

	Processor struct {
		ChunkSize         int `yaml:"chunk_size"`
		ChunkOverlap      int `yaml:"chunk_overlap"`
		MinSentenceLength int `yaml:"min_sentence_length"`
	} `yaml:"processor"`

	Retriever struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retriever"`

	Server struct {
		Addr      string  `yaml:"addr"`
		RateLimit float64 `yaml:"rate_limit"`
		Burst     int     `yaml:"burst"`
	} `yaml:"server"`

	// Sources overrides the built-in manifesto list when set.
	Sources []models.SourceDocument `yaml:"sources"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/wahlkompass/config.yaml"),
			"/etc/wahlkompass/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4"
	}
	if config.LLM.EmbeddingModel == "" {
		config.LLM.EmbeddingModel = "text-embedding-ada-002"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 2000
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "manifesto_chunks"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 1536
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 100
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 1000
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 200
	}
	if config.Processor.MinSentenceLength == 0 {
		config.Processor.MinSentenceLength = 120
	}

	if config.Retriever.TopK == 0 {
		config.Retriever.TopK = 15
	}

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.RateLimit == 0 {
		config.Server.RateLimit = 0.2
	}
	if config.Server.Burst == 0 {
		config.Server.Burst = 5
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.BaseURL = baseURL
	}
}
