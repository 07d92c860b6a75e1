package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"wahlkompass/internal/models"
	"wahlkompass/pkg/analyzer"
	"wahlkompass/pkg/config"
	"wahlkompass/pkg/ingest"
	"wahlkompass/pkg/llm"
	"wahlkompass/pkg/party"
	"wahlkompass/pkg/processor"
	"wahlkompass/pkg/retriever"
	"wahlkompass/pkg/store"
	"wahlkompass/server"
)

type options struct {
	configPath string
	ingestDocs bool
	serve      bool
}

func main() {
	// Optional; the environment may carry OPENAI_API_KEY and DATABASE_URL
	// directly.
	godotenv.Load()

	opts := parseFlags()

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		log.Fatal(err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	if err := run(opts, cfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.BoolVar(&opts.ingestDocs, "ingest", false, "Rebuild the manifesto index from the source PDFs")
	flag.BoolVar(&opts.serve, "serve", false, "Start the HTTP analysis server")
	flag.Parse()
	return opts
}

func run(opts options, cfg *config.Config) error {
	ctx := context.Background()

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     cfg.LLM.EmbeddingModel,
		BatchSize: cfg.Database.BatchSize,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vectorStore, err := store.NewWithConfig(store.VectorStoreConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
		VectorDim:  cfg.Database.VectorDim,
		BatchSize:  cfg.Database.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector store: %w", err)
	}
	defer vectorStore.Close()

	if opts.ingestDocs {
		return runIngest(ctx, cfg, embedder, vectorStore)
	}

	// Query paths need a published index; a missing one is fatal to the
	// whole service, not per-request.
	if err := vectorStore.Ready(ctx); err != nil {
		return err
	}

	ret, err := retriever.New(embedder, vectorStore, cfg.Retriever.TopK)
	if err != nil {
		return err
	}

	chatEngine, err := llm.NewChatWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat engine: %w", err)
	}

	engine, err := analyzer.New(ret, chatEngine)
	if err != nil {
		return err
	}

	if opts.serve {
		history, err := store.NewHistoryStore(ctx, vectorStore.Pool())
		if err != nil {
			return err
		}
		srv, err := server.New(server.Config{
			Addr:      cfg.Server.Addr,
			RateLimit: cfg.Server.RateLimit,
			Burst:     cfg.Server.Burst,
		}, engine, history)
		if err != nil {
			return err
		}
		return srv.Run()
	}

	statement := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if statement == "" {
		return fmt.Errorf("no statement provided; pass one as argument or use -ingest/-serve")
	}

	return runAnalysis(ctx, engine, statement)
}

func runIngest(ctx context.Context, cfg *config.Config, embedder *llm.Embedder, vectorStore *store.VectorStore) error {
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = ingest.DefaultSources
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetDescription(color.BlueString("Ingesting manifestos")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	chunker := processor.NewChunkerWithConfig(processor.ChunkerConfig{
		ChunkSize:         cfg.Processor.ChunkSize,
		ChunkOverlap:      cfg.Processor.ChunkOverlap,
		MinSentenceLength: cfg.Processor.MinSentenceLength,
	})

	builder, err := ingest.NewBuilderWithConfig(ingest.BuilderConfig{
		Chunker:   chunker,
		Embedder:  embedder,
		Store:     vectorStore,
		BatchSize: cfg.Database.BatchSize,
		OnProgress: func(doc models.SourceDocument, chunks int) {
			bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	report, err := builder.Run(ctx, sources)
	bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	color.Green("✓ Published index with %d chunks", report.Chunks)
	for _, path := range report.Skipped {
		color.Yellow("  skipped %s", path)
	}
	return nil
}

func runAnalysis(ctx context.Context, engine *analyzer.Engine, statement string) error {
	color.Cyan("Analyzing: %s\n", statement)

	result, err := engine.Analyze(ctx, statement)
	if err != nil {
		return err
	}
	if len(result) == 0 {
		color.Yellow("The model declined to answer.")
		return nil
	}

	printResult(result)
	return nil
}

func printResult(result models.AnalysisResult) {
	partyHeader := color.New(color.FgGreen, color.Bold).PrintfFunc()

	for _, key := range party.Canonical {
		entry := result[key]
		partyHeader("\n%s", key)
		fmt.Printf("  agreement %d/100\n", entry.Agreement)
		fmt.Println(entry.Explanation)
		for _, citation := range entry.Citations {
			fmt.Printf("  [S. %s] %q\n", citation.Page, citation.Text)
		}
	}
}
