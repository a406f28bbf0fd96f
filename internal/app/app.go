package app

import (
	"go.uber.org/zap"

	"ragdesk/internal/backend"
	"ragdesk/internal/config"
	"ragdesk/internal/domain"
	"ragdesk/internal/notify"
	"ragdesk/internal/service"
	"ragdesk/internal/summarizer"
	"ragdesk/internal/vectorstore"
	"ragdesk/internal/vectorstore/qdrant"
)

// Container holds the components shared by the TUI and the headless commands.
type Container struct {
	Config   *config.AppConfig
	Log      *zap.Logger
	Notifier domain.Notifier

	Client    *backend.Client
	Files     *service.FileRegistry
	Chat      *service.ChatSession
	Embedding *service.EmbeddingJobMonitor
	Models    *service.ModelCatalog
	// Inspector is nil when no vector store URL is configured.
	Inspector vectorstore.Inspector
	Excerpter *summarizer.Excerpter
}

// New wires every component from cfg. Notifications are logged before
// reaching notifier.
func New(cfg *config.AppConfig, log *zap.Logger, notifier domain.Notifier) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	n := notify.Logged(notify.Multi(notifier), log.Named("notify"))

	client := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout(),
	}, log.Named("backend"))

	c := &Container{
		Config:    cfg,
		Log:       log,
		Notifier:  n,
		Client:    client,
		Files:     service.NewFileRegistry(client, n, log.Named("files")),
		Chat:      service.NewChatSession(client, n, log.Named("chat"), cfg.Features.ModelSelector),
		Embedding: service.NewEmbeddingJobMonitor(client, n, log.Named("embed")),
		Models:    service.NewModelCatalog(client, n, log.Named("models"), cfg.Models.CacheTTL()),
		Excerpter: summarizer.NewExcerpter(3),
	}
	if cfg.Qdrant.URL != "" {
		c.Inspector = qdrant.NewInspector(qdrant.Config{
			URL:          cfg.Qdrant.URL,
			APIKey:       cfg.Qdrant.APIKey,
			Collection:   cfg.Qdrant.Collection,
			DashboardURL: cfg.Qdrant.DashboardURL,
			Timeout:      cfg.Qdrant.Timeout(),
		}, log.Named("qdrant"))
	}
	return c
}
