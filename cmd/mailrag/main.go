package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/custodia-labs/mailrag-cli/internal/adapters/driven/auth"
	embeddingollama "github.com/custodia-labs/mailrag-cli/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/custodia-labs/mailrag-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/mailrag-cli/internal/adapters/driven/vector/pinecone"
	"github.com/custodia-labs/mailrag-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/mailrag-cli/internal/config"
	"github.com/custodia-labs/mailrag-cli/internal/connectors/google"
	"github.com/custodia-labs/mailrag-cli/internal/connectors/google/gmail"
	"github.com/custodia-labs/mailrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/mailrag-cli/internal/core/services"
	"github.com/custodia-labs/mailrag-cli/internal/normalisers/mail"
	"github.com/custodia-labs/mailrag-cli/internal/postprocessors"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	credStore, err := auth.NewCredentialStore(cfg.CredentialsPath, cfg.TokenPath)
	if err != nil {
		return err
	}

	gmailService, err := google.NewGmailService(ctx, google.NewTokenSource(ctx, credStore))
	if err != nil {
		return err
	}
	connector := gmail.New(gmailService, gmail.Config{Timeout: cfg.RequestTimeout})
	defer connector.Close()

	var embedder driven.EmbeddingService = embeddingollama.NewEmbeddingService(embeddingollama.Config{
		BaseURL:    cfg.OllamaURL,
		Model:      cfg.EmbedModel,
		Dimensions: cfg.EmbedDimension,
		Timeout:    cfg.RequestTimeout,
	})
	defer embedder.Close()
	if cfg.RetryAttempts > 0 {
		embedder = services.NewRetryingEmbedder(embedder, cfg.RetryAttempts, services.DefaultRetryDelay)
	}

	llm := llmollama.NewLLMService(llmollama.Config{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.LLMModel,
		Timeout: cfg.RequestTimeout,
	})
	defer llm.Close()

	store := pinecone.New(pinecone.Config{
		Endpoint:  cfg.PineconeEndpoint,
		APIKey:    cfg.PineconeAPIKey,
		Dimension: cfg.EmbedDimension,
		Timeout:   cfg.RequestTimeout,
	})
	defer store.Close()

	ingestor := services.NewIngestService(
		connector,
		mail.New(),
		postprocessors.Default(cfg.ChunkMaxTokens),
		embedder,
		store,
	)
	answerer := services.NewAnswerService(
		embedder,
		store,
		llm,
		services.WithTopK(cfg.TopK),
		services.WithPromptBudget(cfg.PromptBudget),
	)

	cli.SetVersion(version)
	cli.SetServices(ingestor, answerer, credStore)

	return cli.Execute(ctx)
}
