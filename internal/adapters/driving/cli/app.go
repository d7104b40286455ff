package cli

import (
	"fmt"
	"io"

	"github.com/positron-labs/positron/internal/adapters/driven/ai"
	configfile "github.com/positron-labs/positron/internal/adapters/driven/config/file"
	"github.com/positron-labs/positron/internal/adapters/driven/embedding/ollama"
	"github.com/positron-labs/positron/internal/adapters/driven/fetcher/web"
	storesqlite "github.com/positron-labs/positron/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/positron-labs/positron/internal/adapters/driven/vectorstore/sqlite"
	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/core/services"
	"github.com/positron-labs/positron/internal/normalisers"
	"github.com/positron-labs/positron/internal/postprocessors"
)

// Services used by the commands. Wired lazily by initServices so that
// commands which need no AI provider never dial one. Tests inject fakes
// and set servicesReady.
var (
	ingestService   driving.IngestService
	chatService     driving.ChatService
	searchService   driving.SearchService
	documentService driving.DocumentService
	sessionService  driving.SessionService

	appSettings domain.AppSettings
	configStore *configfile.ConfigStore

	servicesReady bool
	closers       []io.Closer
)

// serviceNeeds declares which AI providers a command requires. Providers
// are validated with a ping at startup so failures surface before any
// work is done.
type serviceNeeds struct {
	embedding bool
	llm       bool
}

func initServices(needs serviceNeeds) error {
	if servicesReady {
		return nil
	}

	if err := loadConfig(); err != nil {
		return err
	}

	var embedder driven.EmbeddingProvider
	dimensions := embeddingDimensions(appSettings.Embedding)
	if needs.embedding {
		provider, err := ai.CreateAndValidateEmbeddingProvider(&appSettings.Embedding)
		if err != nil {
			return err
		}
		closers = append(closers, provider)
		embedder = provider
		dimensions = provider.Dimensions()
	}

	var llm driven.LLMProvider
	if needs.llm {
		provider, err := ai.CreateAndValidateLLMProvider(&appSettings.LLM)
		if err != nil {
			return err
		}
		closers = append(closers, provider)
		llm = provider
	}

	store, err := storesqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers = append(closers, store)

	vectors, err := vectorsqlite.NewVectorStore(dataDir, dimensions)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	closers = append(closers, vectors)

	docs := store.DocumentStore()
	sessions := store.SessionStore()

	documentService = services.NewDocumentService(docs, vectors, sessions)
	sessionService = services.NewSessionService(sessions)

	if embedder != nil {
		retriever := services.NewRetriever(embedder, vectors)
		searchService = services.NewSearchService(retriever)

		pipeline, err := buildPipeline(appSettings.Chunking)
		if err != nil {
			return err
		}
		ingestService = services.NewIngestService(
			normalisers.DefaultRegistry(),
			pipeline,
			embedder,
			vectors,
			docs,
			web.NewFetcher(web.Config{}),
		)

		if llm != nil {
			chatService = services.NewChatService(sessions, retriever, llm, appSettings.Chat)
		}
	}

	servicesReady = true
	return nil
}

// buildPipeline assembles the post-processing pipeline from the processor
// registry using the configured chunking parameters.
func buildPipeline(settings domain.ChunkingSettings) (driven.PostProcessorPipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	proc, err := registry.Build("chunker", map[string]any{
		"chunk_size": settings.ChunkSize,
		"overlap":    settings.Overlap,
	})
	if err != nil {
		return nil, fmt.Errorf("build chunker: %w", err)
	}
	return postprocessors.NewPipeline(proc), nil
}

// embeddingDimensions resolves the vector size for the configured model
// without dialling the provider.
func embeddingDimensions(settings domain.EmbeddingSettings) int {
	if dims, ok := domain.EmbeddingDimensions()[settings.Model]; ok {
		return dims
	}
	return ollama.DefaultDimensions
}

func loadConfig() error {
	if configStore != nil {
		return nil
	}

	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config store: %w", err)
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	configStore = store
	appSettings = settings
	return nil
}

// closeServices releases resources opened by initServices, most recently
// opened first.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i].Close()
	}
	closers = nil
	servicesReady = false
}
