package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"candidate-search/internal/chunker"
	"candidate-search/internal/config"
	"candidate-search/internal/domain"
	"candidate-search/internal/embedding/openai"
	"candidate-search/internal/embedding/tfidf"
	"candidate-search/internal/identity"
	"candidate-search/internal/ingest"
	"candidate-search/internal/llm"
	"candidate-search/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()
	log.DefaultLogger = log.Logger{Level: log.InfoLevel, Writer: &log.ConsoleWriter{ColorOutput: true}}

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/candidate-search/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) == 0 {
		fmt.Println("Usage: ingest [--config=config.yaml] <dir|glob|file> [...]")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatal().Msg("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("openai embedder init failed")
		}
		emb = client
	default:
		log.Fatal().Str("type", cfg.Embedder.Type).Msg("unknown embedder")
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		log.Fatal().Str("type", cfg.Chunker.Type).Msg("unknown chunker")
	}

	// A standalone ingest run only makes sense against a persistent store.
	// The memory store lives and dies with one process; pass documents to
	// candidate-search directly for that setup.
	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatal().Msg("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory", "":
		log.Fatal().Msg("vector_store.type must be qdrant for standalone ingest; run candidate-search with document paths to use the memory store")
	default:
		log.Fatal().Str("type", cfg.VectorStore.Type).Msg("unknown vector store")
	}

	var generator domain.Generator
	if cfg.Ingest.ExtractProfessions {
		generator, err = llm.New(llm.Config{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			APIKeyEnv:   cfg.LLM.APIKeyEnv,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("llm init failed")
		}
	}

	assigner := identity.NewAssigner(identity.Config{
		IDMin: cfg.Identity.IDMin,
		IDMax: cfg.Identity.IDMax,
	})

	pipeline := ingest.NewPipeline(ch, emb, st, assigner, generator, ingest.Config{
		ExtractProfessions: cfg.Ingest.ExtractProfessions,
	})

	summary, err := pipeline.Run(context.Background(), inputs)
	if err != nil {
		log.Fatal().Err(err).Msg("ingest failed")
	}

	fmt.Println("============================================================")
	fmt.Println("Ingest Summary")
	fmt.Println("============================================================")
	fmt.Printf("Documents indexed: %d\n", summary.Documents)
	fmt.Printf("Chunks created:    %d\n", summary.Chunks)
	fmt.Printf("Candidates:        %d\n", summary.Candidates)
	fmt.Println("============================================================")
}
