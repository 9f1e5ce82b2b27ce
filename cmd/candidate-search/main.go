package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"candidate-search/internal/agent"
	"candidate-search/internal/candidates"
	"candidate-search/internal/chunker"
	"candidate-search/internal/config"
	"candidate-search/internal/domain"
	"candidate-search/internal/embedding/openai"
	"candidate-search/internal/embedding/tfidf"
	"candidate-search/internal/fusion"
	"candidate-search/internal/identity"
	"candidate-search/internal/ingest"
	"candidate-search/internal/llm"
	"candidate-search/internal/retrieval"
	"candidate-search/internal/service"
	"candidate-search/internal/summarizer"
	"candidate-search/internal/tui"
	"candidate-search/internal/vectorstore/memory"
	"candidate-search/internal/vectorstore/qdrant"
	"candidate-search/internal/wikipedia"
)

func main() {
	_ = godotenv.Load()
	log.DefaultLogger = log.Logger{Level: log.WarnLevel, Writer: &log.IOWriter{Writer: os.Stderr}}

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/candidate-search/config.yaml if not provided)")
	flag.Parse()
	inputs := flag.Args()

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

	var st domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memory.NewStorage()
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
	default:
		log.Fatal().Str("type", cfg.VectorStore.Type).Msg("unknown vector store")
	}

	generator, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		APIKeyEnv:   cfg.LLM.APIKeyEnv,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		if cfg.Summary.Type == "frequency" {
			// offline mode: roster and frequency summaries still work
			log.Warn().Err(err).Msg("llm unavailable, agent queries disabled")
			generator = nil
		} else {
			log.Fatal().Err(err).Msg("llm init failed")
		}
	}

	// The memory store starts empty, so documents are ingested in-process
	// before the UI comes up.
	if len(inputs) > 0 {
		var ch domain.Chunker
		switch cfg.Chunker.Type {
		case "sentence", "":
			ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
		default:
			log.Fatal().Str("type", cfg.Chunker.Type).Msg("unknown chunker")
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
		fmt.Printf("Ingested %d documents (%d chunks, %d candidates)\n",
			summary.Documents, summary.Chunks, summary.Candidates)
	} else if cfg.VectorStore.Type == "memory" || cfg.VectorStore.Type == "" {
		fmt.Println("Usage: candidate-search [--config=config.yaml] <dir|glob|file> [...]")
		fmt.Println("The memory store starts empty; pass documents to ingest, or configure qdrant.")
		os.Exit(1)
	}

	agg := candidates.NewAggregator(st)
	search := retrieval.NewService(emb, st)
	wiki := wikipedia.NewClient(wikipedia.Config{
		BaseURL:          cfg.Wikipedia.BaseURL,
		Timeout:          time.Duration(cfg.Wikipedia.TimeoutSecs) * time.Second,
		DefaultSentences: cfg.Wikipedia.DefaultSentences,
	})
	fuser := fusion.NewEngine(agg, generator, fusion.Config{})

	var ag *agent.Agent
	if generator != nil {
		ag = agent.New(generator, agent.Tools(search, wiki, fuser, cfg.Agent.DefaultTopK), agent.Config{
			MaxTurns:     cfg.Agent.MaxTurns,
			MaxToolCalls: cfg.Agent.MaxToolCalls,
			Timeout:      time.Duration(cfg.Agent.TimeoutSecs) * time.Second,
		})
	}

	svc := service.NewService(agg, generator, ag, summarizer.NewFrequencySummarizer(), service.Config{
		SummaryType:  cfg.Summary.Type,
		MaxSentences: cfg.Summary.MaxSentences,
	})

	if _, err := tea.NewProgram(tui.New(svc)).Run(); err != nil {
		log.Fatal().Err(err).Msg("tui failed")
	}
}
