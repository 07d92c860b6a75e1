package ingest

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"wahlkompass/internal/models"
	"wahlkompass/internal/types"
	"wahlkompass/pkg/extract"
	"wahlkompass/pkg/party"
	"wahlkompass/pkg/processor"
)

// DefaultSources lists the manifesto PDFs of the seven parties covered by
// the analysis, with their official display names.
var DefaultSources = []models.SourceDocument{
	{FilePath: "data/manifestos/AFD.pdf", Party: "Alternative für Deutschland", Category: "platform"},
	{FilePath: "data/manifestos/BSW.pdf", Party: "Bündnis Sahra Wagenknecht", Category: "platform"},
	{FilePath: "data/manifestos/CDU_CSU.pdf", Party: "CDU/CSU", Category: "platform"},
	{FilePath: "data/manifestos/Die_Linke.pdf", Party: "DIE LINKE", Category: "platform"},
	{FilePath: "data/manifestos/FDP.pdf", Party: "Freie Demokratische Partei", Category: "platform"},
	{FilePath: "data/manifestos/Gruene.pdf", Party: "BÜNDNIS 90/DIE GRÜNEN", Category: "platform"},
	{FilePath: "data/manifestos/SPD.pdf", Party: "Sozialdemokratische Partei Deutschlands", Category: "platform"},
}

type BuilderConfig struct {
	Chunker   processor.Chunker
	Embedder  types.Embedder
	Store     types.VectorStore
	BatchSize int

	// ExtractPages substitutes the PDF extractor, used by tests.
	ExtractPages func(path string) ([]models.Page, error)

	// OnProgress is called after each document, successful or not.
	OnProgress func(doc models.SourceDocument, chunks int)
}

// Builder runs the offline ingestion batch: extract, clean, chunk, embed,
// and publish the index in one replacement step.
type Builder struct {
	config BuilderConfig
}

// Report summarizes one ingestion run.
type Report struct {
	Chunks  int
	Skipped []string
}

func NewBuilderWithConfig(config BuilderConfig) (*Builder, error) {
	if config.Embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.ExtractPages == nil {
		config.ExtractPages = extract.Pages
	}
	return &Builder{config: config}, nil
}

// Run ingests the given source documents and replaces the published index.
// An unreadable document is skipped and reported; it never aborts the
// whole batch.
func (b *Builder) Run(ctx context.Context, docs []models.SourceDocument) (*Report, error) {
	report := &Report{}
	var all []models.Chunk

	for _, doc := range docs {
		chunks, err := b.chunkDocument(doc)
		if err != nil {
			log.Printf("skipping %s: %v", doc.FilePath, err)
			report.Skipped = append(report.Skipped, doc.FilePath)
			if b.config.OnProgress != nil {
				b.config.OnProgress(doc, 0)
			}
			continue
		}
		all = append(all, chunks...)
		if b.config.OnProgress != nil {
			b.config.OnProgress(doc, len(chunks))
		}
	}

	if len(all) == 0 {
		return report, fmt.Errorf("no chunks extracted from %d documents", len(docs))
	}

	embeddings, err := b.embedAll(ctx, all)
	if err != nil {
		return report, err
	}

	if err := b.config.Store.Rebuild(ctx, all, embeddings); err != nil {
		return report, fmt.Errorf("failed to publish index: %w", err)
	}

	report.Chunks = len(all)
	return report, nil
}

// chunkDocument turns one manifesto into chunks, carrying the page number
// of each chunk's originating page into its metadata.
func (b *Builder) chunkDocument(doc models.SourceDocument) ([]models.Chunk, error) {
	pages, err := b.config.ExtractPages(doc.FilePath)
	if err != nil {
		return nil, err
	}

	key := party.Normalize(doc.Party)
	source := filepath.Base(doc.FilePath)

	var chunks []models.Chunk
	for _, page := range pages {
		cleaned := processor.Clean(page.Text)
		if cleaned == "" {
			continue
		}
		pageNum := page.Number
		for i, text := range b.config.Chunker.Split(cleaned) {
			num := pageNum
			chunks = append(chunks, models.Chunk{
				ID:       fmt.Sprintf("%s_%d_%d", key, pageNum, i),
				Party:    doc.Party,
				Category: doc.Category,
				Source:   source,
				Page:     &num,
				Content:  text,
			})
		}
	}

	return chunks, nil
}

func (b *Builder) embedAll(ctx context.Context, chunks []models.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += b.config.BatchSize {
		end := start + b.config.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}
		batch, err := b.config.Embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), len(texts))
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}
