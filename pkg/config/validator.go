package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap < 0 || c.Processor.ChunkOverlap >= c.Processor.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	if c.Retriever.TopK < 1 || c.Retriever.TopK > 50 {
		errors = append(errors, ValidationError{
			Field:   "retriever.top_k",
			Message: "top_k must be between 1 and 50",
		})
	}

	if c.Server.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	for i, doc := range c.Sources {
		if doc.FilePath == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sources[%d].file_path", i),
				Message: "file_path is required",
			})
		}
		if doc.Party == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("sources[%d].party", i),
				Message: "party is required",
			})
		}
	}

	return errors
}
