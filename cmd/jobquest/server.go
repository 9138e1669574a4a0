package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mark3labs/mcp-go/server"

	"jobquest/internal/api"
	"jobquest/internal/assessment"
	"jobquest/internal/config"
	"jobquest/internal/docs"
	"jobquest/internal/insight"
	"jobquest/internal/jobs"
	"jobquest/internal/kb"
	"jobquest/internal/llm"
	"jobquest/internal/profile"
	"jobquest/internal/seed"
	"jobquest/internal/storage"
)

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
}

// openStore opens the database and seeds the authored tables when empty,
// so a fresh data directory serves assessments without a separate seed run.
func openStore(cfg config.Config, logger *slog.Logger) (*storage.Store, error) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	count, err := store.CountTemplates()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("checking authored templates: %w", err)
	}
	if count == 0 {
		res, err := seed.Run(store)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding authored data: %w", err)
		}
		logger.Info("seeded authored data", "templates", res.Templates, "jobs", res.Jobs)
	}

	return store, nil
}

// buildService wires the assessment pipeline. Each optional collaborator
// degrades on its own: without an OpenAI key insights stay at their
// sentinels, without a knowledge base the retrieval path falls back to
// the precomputed job bank.
func buildService(ctx context.Context, cfg config.Config, store *storage.Store, logger *slog.Logger) *assessment.Service {
	var chatter *llm.Client
	if cfg.OpenAI.APIKey != "" {
		chatter = llm.NewWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	} else {
		logger.Warn("no OpenAI API key configured, insight enrichment and job analysis disabled")
	}

	var evalChatter insight.Chatter
	var jobChatter jobs.Chatter
	if chatter != nil {
		evalChatter = chatter
		jobChatter = chatter
	}
	enricher := insight.NewEnricher(insight.NewEvaluator(evalChatter), evalChatter, logger)

	var retriever jobs.Retriever
	if cfg.KnowledgeBase.BaseURL != "" && cfg.KnowledgeBase.ID != "" {
		retriever = kb.NewClient(cfg.KnowledgeBase.BaseURL, cfg.KnowledgeBase.ID, cfg.KnowledgeBase.RetryDelay, logger)
	} else {
		logger.Warn("no knowledge base configured, free-text submissions use the fallback recommendations")
	}

	var fetcher jobs.DocumentFetcher
	if chatter != nil {
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3.Region)}
		if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			logger.Warn("AWS config unavailable, job documents will not be fetched", "error", err)
		} else {
			fetcher = docs.NewFetcher(s3.NewFromConfig(awsCfg))
		}
	}

	analyzer := jobs.NewAnalyzer(jobChatter, fetcher, logger)
	selector := jobs.NewSelector(store, retriever, analyzer, logger)
	resolver := profile.NewResolver(store)

	return assessment.NewService(store, resolver, enricher, selector, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing storage", "error", err)
		}
	}()

	svc := buildService(ctx, cfg, store, logger)
	handler := api.NewAppHandler(api.AppDeps{Assessor: svc, Logger: logger})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("jobquest listening", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Logs go to stderr; stdout belongs to the MCP transport.
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := buildService(ctx, cfg, store, logger)
	mcpSrv := api.NewMCPServer(api.MCPDeps{Assessor: svc, Store: store})

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
