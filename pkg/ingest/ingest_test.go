package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wahlkompass/internal/models"
	"wahlkompass/pkg/extract"
	"wahlkompass/pkg/ingest"
	"wahlkompass/pkg/processor"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

type fakeStore struct {
	chunks     []models.Chunk
	embeddings [][]float32
	rebuilds   int
	err        error
}

func (f *fakeStore) Rebuild(_ context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.rebuilds++
	f.chunks = chunks
	f.embeddings = embeddings
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, _ int) ([]models.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeStore) Ready(_ context.Context) error { return nil }
func (f *fakeStore) Close()                        {}

func fakePages(perDoc map[string][]models.Page) func(string) ([]models.Page, error) {
	return func(path string) ([]models.Page, error) {
		pages, ok := perDoc[path]
		if !ok {
			return nil, &extract.ExtractionError{Path: path, Err: errors.New("no such file")}
		}
		return pages, nil
	}
}

func longPage(num int, sentence string) models.Page {
	return models.Page{Number: num, Text: strings.Repeat(sentence+" ", 8)}
}

func TestBuilderRun(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}

	builder, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{
		Chunker:  processor.NewChunkerWithConfig(processor.ChunkerConfig{ChunkSize: 200, ChunkOverlap: 40, MinSentenceLength: 30}),
		Embedder: embedder,
		Store:    store,
		ExtractPages: fakePages(map[string][]models.Page{
			"spd.pdf": {
				longPage(1, "Im Jahr 2025 fordern wir deutlich mehr Investitionen in Bildung und Infrastruktur."),
				longPage(2, "Der Mindestlohn von 12 Euro muss weiter angehoben werden für alle."),
			},
		}),
	})
	require.NoError(t, err)

	docs := []models.SourceDocument{
		{FilePath: "spd.pdf", Party: "Sozialdemokratische Partei Deutschlands", Category: "platform"},
	}
	report, err := builder.Run(context.Background(), docs)

	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, len(store.chunks), report.Chunks)
	assert.Equal(t, 1, store.rebuilds)
	require.NotEmpty(t, store.chunks)
	assert.Len(t, store.embeddings, len(store.chunks))

	for _, chunk := range store.chunks {
		assert.Equal(t, "Sozialdemokratische Partei Deutschlands", chunk.Party)
		assert.Equal(t, "platform", chunk.Category)
		assert.Equal(t, "spd.pdf", chunk.Source)
		require.NotNil(t, chunk.Page)
		assert.Contains(t, []int{1, 2}, *chunk.Page)
		assert.True(t, strings.HasPrefix(chunk.ID, "spd_"))
		// Cleaning ran before chunking.
		assert.NotContains(t, chunk.Content, "2025")
		assert.NotContains(t, chunk.Content, "12")
	}
}

func TestBuilderSkipsUnreadableDocument(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	var progress []string

	builder, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{
		Chunker:  processor.NewChunker(),
		Embedder: embedder,
		Store:    store,
		ExtractPages: fakePages(map[string][]models.Page{
			"ok.pdf": {longPage(1, "Ein ordentlicher Absatz über die Rentenpolitik der Partei im Detail.")},
		}),
		OnProgress: func(doc models.SourceDocument, chunks int) {
			progress = append(progress, doc.FilePath)
		},
	})
	require.NoError(t, err)

	docs := []models.SourceDocument{
		{FilePath: "broken.pdf", Party: "CDU/CSU", Category: "platform"},
		{FilePath: "ok.pdf", Party: "DIE LINKE", Category: "platform"},
	}
	report, err := builder.Run(context.Background(), docs)

	require.NoError(t, err, "one unreadable document must not abort the batch")
	assert.Equal(t, []string{"broken.pdf"}, report.Skipped)
	assert.Equal(t, []string{"broken.pdf", "ok.pdf"}, progress)
	assert.Equal(t, 1, store.rebuilds)
}

func TestBuilderFailsWhenNothingExtracted(t *testing.T) {
	builder, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{
		Chunker:      processor.NewChunker(),
		Embedder:     &fakeEmbedder{},
		Store:        &fakeStore{},
		ExtractPages: fakePages(nil),
	})
	require.NoError(t, err)

	report, err := builder.Run(context.Background(), []models.SourceDocument{
		{FilePath: "missing.pdf", Party: "SPD", Category: "platform"},
	})

	require.Error(t, err)
	assert.Len(t, report.Skipped, 1)
}

func TestBuilderEmbedsInBatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}

	pages := make([]models.Page, 0, 5)
	for i := 1; i <= 5; i++ {
		pages = append(pages, longPage(i, "Jede Seite liefert genug Text für mehrere eigenständige Abschnitte hier."))
	}

	builder, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{
		Chunker:      processor.NewChunkerWithConfig(processor.ChunkerConfig{ChunkSize: 150, ChunkOverlap: 30, MinSentenceLength: 30}),
		Embedder:     embedder,
		Store:        store,
		BatchSize:    3,
		ExtractPages: fakePages(map[string][]models.Page{"doc.pdf": pages}),
	})
	require.NoError(t, err)

	report, err := builder.Run(context.Background(), []models.SourceDocument{
		{FilePath: "doc.pdf", Party: "FDP", Category: "platform"},
	})

	require.NoError(t, err)
	expected := (report.Chunks + 2) / 3
	assert.Equal(t, expected, embedder.calls)
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{Store: &fakeStore{}})
	assert.Error(t, err)

	_, err = ingest.NewBuilderWithConfig(ingest.BuilderConfig{Embedder: &fakeEmbedder{}})
	assert.Error(t, err)
}

func TestDefaultSourcesCoverAllParties(t *testing.T) {
	assert.Len(t, ingest.DefaultSources, 7)
	seen := map[string]bool{}
	for _, doc := range ingest.DefaultSources {
		assert.NotEmpty(t, doc.FilePath)
		assert.Equal(t, "platform", doc.Category)
		seen[doc.Party] = true
	}
	assert.Len(t, seen, 7)
}
