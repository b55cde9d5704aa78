// Package factory arma el servicio de notas con toda su infraestructura:
// cliente de GitHub, generador de Gemini, cache, guardrails y auditoría.
package factory

import (
	"context"
	"fmt"

	"github.com/maticastro/notaprensa/internal/audit"
	"github.com/maticastro/notaprensa/internal/cache"
	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/guardrails"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/infrastructure/ai/gemini"
	"github.com/maticastro/notaprensa/internal/infrastructure/vcs/github"
	"github.com/maticastro/notaprensa/internal/metrics"
	"github.com/maticastro/notaprensa/internal/services"
)

type NotesServiceFactory struct {
	config *config.Config
	trans  *i18n.Translations
}

func NewNotesServiceFactory(cfg *config.Config, trans *i18n.Translations) *NotesServiceFactory {
	return &NotesServiceFactory{
		config: cfg,
		trans:  trans,
	}
}

func (f *NotesServiceFactory) CreateNotesService(ctx context.Context) (*services.NotesService, error) {
	if f.config.GitHub.Token == "" {
		return nil, fmt.Errorf("%s", f.trans.GetMessage("error_missing_github_token", 0, nil))
	}

	client := github.NewClient(f.config.GitHub.Token)

	generator, err := gemini.NewNotesGenerator(ctx, f.config, f.trans)
	if err != nil {
		return nil, err
	}

	idemCache, err := cache.NewIdempotentCache(f.config.Cache)
	if err != nil {
		return nil, err
	}
	ids, err := cache.NewCommentIDStore(f.config.Cache)
	if err != nil {
		return nil, err
	}
	commenter := github.NewCommenter(client, ids, f.config.Publish.MarkerPreview, f.config.Publish.MarkerKey, f.config.Publish.MaxCommentChars)

	limiter, err := guardrails.NewRateLimiter(f.config.RateLimit)
	if err != nil {
		return nil, err
	}
	auditLog, err := audit.NewLog(f.config.Cache.AuditRoot)
	if err != nil {
		return nil, err
	}
	sink, err := metrics.NewSink(f.config.Metrics)
	if err != nil {
		return nil, err
	}

	diffCB, err := guardrails.NewCircuitBreaker("diff", f.config.Breaker)
	if err != nil {
		return nil, err
	}
	modelCB, err := guardrails.NewCircuitBreaker("gemini", f.config.Breaker)
	if err != nil {
		return nil, err
	}
	githubCB, err := guardrails.NewCircuitBreaker("github_api", f.config.Breaker)
	if err != nil {
		return nil, err
	}

	return services.NewNotesService(f.config, services.Deps{
		Source:        client,
		Generator:     generator,
		Commenter:     commenter,
		Publisher:     client,
		Cache:         idemCache,
		Limiter:       limiter,
		Audit:         auditLog,
		Metrics:       sink,
		DiffBreaker:   diffCB,
		ModelBreaker:  modelCB,
		GitHubBreaker: githubCB,
	}), nil
}
