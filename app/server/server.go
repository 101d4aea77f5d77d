package server

import (
	"context"

	"clubassist/app/agent"
	"clubassist/app/api"
	"clubassist/app/forms"
	"clubassist/app/retrieval"
	"clubassist/config"
	"clubassist/model"
	"clubassist/store"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *store.PostgresStore
}

func NewServer(cfg *config.Config, logger zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Stop() {
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info().Msg("server stopped")
}

func (s *Server) Run() error {
	ctx := context.Background()

	pool, err := store.NewPostgresStore(ctx, s.cfg.PostgresDSN())
	if err != nil {
		return err
	}
	s.pool = pool

	if err := pool.Init(ctx); err != nil {
		return err
	}

	var (
		embedder  = model.NewOllamaEmbedder(s.cfg.EmbeddingURL, s.cfg.EmbeddingModel)
		assembler = retrieval.NewAssembler(embedder, pool, s.logger)
		fetcher   = retrieval.NewFetcher(s.cfg.ConverterURL, s.logger)
		formatter = retrieval.NewFormatter(s.cfg.ContextTokens)
		gateway   = agent.NewGateway(s.cfg.LLMURL, s.cfg.LLMKey, s.cfg.LLMModel, s.cfg.LLMTimeout)
		formsAPI  = forms.NewClient(s.cfg.FormsAPIURL)

		app = fiber.New(fiber.Config{
			ErrorHandler: api.NewErrorHandler(s.logger),
		})
		checkHandler = api.NewCheckHandler()
		chatHandler  = api.NewChatHandler(
			assembler, fetcher, formatter, gateway, formsAPI,
			s.cfg.MatchCount, s.cfg.MatchThreshold, s.logger,
		)
		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/chat", chatHandler.HandleChat)
	apiv1.Post("/forms/chat", chatHandler.HandleFormsChat)

	return app.Listen(s.cfg.ServerAddr)
}
