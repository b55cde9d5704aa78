// Package services orquesta el pipeline completo: fetch del diff, llamada al
// modelo, sanitización, cache y publicación, con los guardrails alrededor de
// cada llamada externa.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/maticastro/notaprensa/internal/audit"
	"github.com/maticastro/notaprensa/internal/cache"
	"github.com/maticastro/notaprensa/internal/commands"
	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/diff"
	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/maticastro/notaprensa/internal/domain/ports"
	"github.com/maticastro/notaprensa/internal/guardrails"
	"github.com/maticastro/notaprensa/internal/logger"
	"github.com/maticastro/notaprensa/internal/metrics"
	"github.com/maticastro/notaprensa/internal/notes"
)

const repairPromptMaxChars = 4000

var llmRetryCodes = []errors.Code{errors.CodeTimeout, errors.CodeRateLimit, errors.CodeNetwork}

type (
	// Deps agrupa los colaboradores del servicio. Los breakers se inyectan ya
	// construidos para que cada comando comparta el estado persistido.
	Deps struct {
		Source    ports.PRDataSource
		Generator ports.NotesGenerator
		Commenter ports.PRCommenter
		Publisher ports.ReleasePublisher

		Cache   *cache.IdempotentCache
		Limiter *guardrails.RateLimiter
		Audit   *audit.Log
		Metrics *metrics.Sink

		DiffBreaker   *guardrails.CircuitBreaker
		ModelBreaker  *guardrails.CircuitBreaker
		GitHubBreaker *guardrails.CircuitBreaker
	}

	NotesService struct {
		cfg       *config.Config
		fetcher   *diff.Fetcher
		processor *diff.Processor
		auth      *commands.Authorizer

		deps Deps
	}

	// GenerateOptions controla el flujo de generación de preview.
	GenerateOptions struct {
		NoCache     bool
		CacheOnly   bool
		PostComment bool
		Final       bool
	}

	// CommentFeedback es el resultado best-effort de publicar un comentario.
	// Nunca corta el flujo principal: el caller decide si lo reporta.
	CommentFeedback struct {
		Result ports.CommentResult
		Err    error
	}

	GenerateResult struct {
		Key      string
		Draft    *models.NotesDraft
		Markdown string
		JSONText string
		CacheHit bool
		Comment  *CommentFeedback
	}

	// PublishDecision describe el resultado de procesar un comentario con el
	// comando de publicación.
	PublishDecision struct {
		Action         string // none, denied, rate_limited, dry_run, published
		Reason         string
		ResetInSeconds int
		CommentID      int64
		URL            string
		Feedback       *CommentFeedback
	}

	ReleaseResult struct {
		Action     string // create o update
		DryRun     bool
		Release    ports.ReleaseInfo
		BodyLen    int
		BackupPath string
	}
)

const (
	DecisionNone        = "none"
	DecisionDenied      = "denied"
	DecisionRateLimited = "rate_limited"
	DecisionDryRun      = "dry_run"
	DecisionPublished   = "published"
)

func NewNotesService(cfg *config.Config, deps Deps) *NotesService {
	return &NotesService{
		cfg:       cfg,
		fetcher:   diff.NewFetcher(deps.Source, cfg.Diff),
		processor: diff.NewProcessor(cfg.Diff),
		auth:      commands.NewAuthorizer(cfg.Publish.AllowedRoles),
		deps:      deps,
	}
}

// GeneratePreview corre el pipeline de generación para un PR: contexto, diff,
// modelo, sanitización, cache y comentario de preview.
func (s *NotesService) GeneratePreview(ctx context.Context, owner, repo string, prNumber int, opts GenerateOptions) (*GenerateResult, error) {
	log := logger.FromContext(ctx)

	if err := s.checkKillSwitch(); err != nil {
		return nil, err
	}

	prCtx, err := s.fetchPRContext(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	key, err := cache.KeyFor(prCtx.Repo, prNumber, prCtx.PR.HeadSHA)
	if err != nil {
		return nil, err
	}
	tags := map[string]string{"repo": prCtx.Repo, "pr": strconv.Itoa(prNumber)}

	if opts.CacheOnly {
		entry, ok := s.deps.Cache.Get(key)
		if !ok {
			return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("no hay notas cacheadas para la clave %s", key))
		}
		return s.resultFromEntry(key, entry, opts.Final), nil
	}

	if !opts.NoCache {
		if entry, ok := s.deps.Cache.Get(key); ok {
			log.Info("notas servidas desde cache", "key", key)
			s.deps.Metrics.Incr("cache.hit", tags)
			return s.resultFromEntry(key, entry, opts.Final), nil
		}
		s.deps.Metrics.Incr("cache.miss", tags)
	}

	processed, err := s.buildProcessedDiff(ctx, prCtx, owner, repo, prNumber, tags)
	if err != nil {
		return nil, err
	}
	if len(processed.Chunks) == 0 {
		return nil, errors.New(errors.CodeValidation, "no hay chunk de diff disponible para generar")
	}

	prompt, meta, err := notes.BuildSingleChunkPrompt(prCtx, processed)
	if err != nil {
		return nil, err
	}
	log.Debug("prompt armado", "files_in_chunk", meta.FilesInChunk, "prompt_len", meta.PromptLen)

	raw, err := s.callModel(ctx, prompt, tags)
	if err != nil {
		feedback := s.postFeedback(ctx, owner, repo, prNumber,
			fmt.Sprintf("> Release Notes – status\n\n❗ An error occurred while generating notes.\nDiagnostic code: %s", errors.CodeOf(err)))
		if feedback.Err != nil {
			log.Warn("no se pudo publicar el feedback de error", "error", feedback.Err)
		}
		return nil, err
	}

	draft, err := notes.ExtractAndValidateDraft(raw)
	if err != nil {
		draft, err = s.repairDraft(ctx, raw)
		if err != nil {
			return nil, err
		}
	}

	draft.Repo = prCtx.Repo
	draft.PRNumber = prNumber
	draft.HeadSHA = prCtx.PR.HeadSHA
	normalized := notes.NormalizeDraft(draft)

	mode := notes.ModePreview
	if opts.Final {
		mode = notes.ModeFinal
	}
	markdown := notes.RenderMarkdown(normalized, mode)

	jsonBytes, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "error al serializar el draft", err)
	}

	if err := s.deps.Cache.Put(key, cache.Entry{Draft: *normalized, Markdown: markdown}); err != nil {
		log.Warn("no se pudo cachear el draft", "key", key, "error", err)
	}

	result := &GenerateResult{
		Key:      key,
		Draft:    normalized,
		Markdown: markdown,
		JSONText: string(jsonBytes),
	}

	if opts.PostComment {
		res, err := s.deps.Commenter.UpsertComment(ctx, owner, repo, prNumber, key, markdown)
		result.Comment = &CommentFeedback{Result: res, Err: err}
		if err != nil {
			log.Warn("no se pudo publicar el comentario de preview", "error", err)
		} else {
			log.Info("comentario de preview publicado", "id", res.ID, "created", res.Created)
		}
	}

	return result, nil
}

// HandleComment procesa un issue_comment que puede contener el comando de
// publicación: parseo, autorización, rate limit, auditoría y publicación del
// markdown final cacheado.
func (s *NotesService) HandleComment(ctx context.Context, owner, repo string, prNumber int, commentID int64, dryRun bool) (*PublishDecision, error) {
	log := logger.FromContext(ctx)

	if err := s.checkKillSwitch(); err != nil {
		return nil, err
	}

	comment, err := s.deps.Commenter.GetComment(ctx, owner, repo, commentID)
	if err != nil {
		return nil, err
	}

	if _, ok := commands.ParseReleaseNotesCommand(comment.Body); !ok {
		return &PublishDecision{Action: DecisionNone}, nil
	}

	fullRepo := owner + "/" + repo

	if !s.auth.IsAuthorized(comment.AuthorAssociation) {
		reason := s.auth.DecisionReason(comment.AuthorAssociation)
		s.appendAudit(ctx, fullRepo, prNumber, comment.AuthorLogin, "publish", false, reason)
		feedback := s.postFeedback(ctx, owner, repo, prNumber,
			fmt.Sprintf("> /release-notes publish\n\n❌ You are not authorized to publish release notes. %s", reason))
		return &PublishDecision{Action: DecisionDenied, Reason: reason, Feedback: feedback}, nil
	}

	rl, err := s.deps.Limiter.CheckAndUpdate(guardrails.RateLimitKey(fullRepo, prNumber), s.cfg.RateLimit.MaxAttempts, s.cfg.RateLimit.WindowSeconds)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnknown, "error al consultar el rate limit", err)
	}
	if !rl.Allowed {
		reason := fmt.Sprintf("rate limit exceeded, reset in %ds", rl.ResetInS)
		s.appendAudit(ctx, fullRepo, prNumber, comment.AuthorLogin, "publish", false, reason)
		feedback := s.postFeedback(ctx, owner, repo, prNumber,
			fmt.Sprintf("> /release-notes publish\n\n⏳ Rate limit exceeded. Please try again in ~%ds.", rl.ResetInS))
		return &PublishDecision{Action: DecisionRateLimited, Reason: reason, ResetInSeconds: rl.ResetInS, Feedback: feedback}, nil
	}

	if dryRun {
		s.appendAudit(ctx, fullRepo, prNumber, comment.AuthorLogin, "publish", true, "dry run")
		return &PublishDecision{Action: DecisionDryRun}, nil
	}

	metadata, err := s.deps.Source.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	key, err := cache.KeyFor(fullRepo, prNumber, metadata.HeadSHA)
	if err != nil {
		return nil, err
	}
	var markdown string
	if entry, ok := s.deps.Cache.Get(key); ok {
		markdown = notes.RenderMarkdown(&entry.Draft, notes.ModeFinal)
	} else {
		markdown = fmt.Sprintf(
			"## Release Notes (final)\n\n_ℹ️ No cached draft found for **%s**. Run the preview generation first, then `/release-notes publish` again._",
			key)
	}

	res, err := s.deps.Commenter.UpsertComment(ctx, owner, repo, prNumber, key, markdown)
	if err != nil {
		s.appendAudit(ctx, fullRepo, prNumber, comment.AuthorLogin, "publish", false, "comment upsert failed: "+err.Error())
		return nil, err
	}

	s.appendAudit(ctx, fullRepo, prNumber, comment.AuthorLogin, "publish", true, fmt.Sprintf("published comment %d", res.ID))
	log.Info("notas finales publicadas", "repo", fullRepo, "pr", prNumber, "comment_id", res.ID)

	return &PublishDecision{Action: DecisionPublished, CommentID: res.ID, URL: res.URL}, nil
}

// PublishRelease escribe las notas cacheadas en el body de un GitHub Release,
// respaldando el body anterior antes de pisarlo.
func (s *NotesService) PublishRelease(ctx context.Context, owner, repo, tag, name, commitish, key string, dryRun bool) (*ReleaseResult, error) {
	log := logger.FromContext(ctx)

	if err := s.checkKillSwitch(); err != nil {
		return nil, err
	}

	body := s.releaseBody(key, tag)
	if len(body) > s.cfg.Publish.ReleaseBodyMaxChars {
		return nil, errors.New(errors.CodeValidation,
			fmt.Sprintf("el body del release tiene %d caracteres, máximo %d", len(body), s.cfg.Publish.ReleaseBodyMaxChars))
	}

	if !s.deps.GitHubBreaker.Allow() {
		return nil, errors.New(errors.CodeUnknown, "la API de GitHub está temporalmente deshabilitada por el circuit breaker")
	}

	fullRepo := owner + "/" + repo
	tags := map[string]string{"repo": fullRepo, "tag": tag}

	stop := s.deps.Metrics.Timer("github.release.get", tags)
	existing, err := guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("github.timeout", map[string]string{"op": "get_release"}) }, func() (*ports.ReleaseInfo, error) {
		return s.deps.Publisher.GetReleaseByTag(ctx, owner, repo, tag)
	})
	stop()
	if err != nil {
		s.deps.GitHubBreaker.RecordFailure()
		return nil, err
	}

	action := "create"
	if existing != nil {
		action = "update"
	}
	if dryRun {
		return &ReleaseResult{Action: action, DryRun: true, BodyLen: len(body)}, nil
	}

	if name == "" {
		name = tag
	}

	result := &ReleaseResult{Action: action, BodyLen: len(body)}

	if existing != nil {
		backupPath, err := s.backupReleaseBody(fullRepo, tag, existing.Body)
		if err != nil {
			return nil, errors.Wrap(errors.CodeUnknown, "no se pudo respaldar el body existente del release", err)
		}
		result.BackupPath = backupPath

		stop := s.deps.Metrics.Timer("github.release.update", tags)
		info, err := guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("github.timeout", map[string]string{"op": "update_release"}) }, func() (ports.ReleaseInfo, error) {
			return s.deps.Publisher.UpdateRelease(ctx, owner, repo, existing.ID, name, body)
		})
		stop()
		if err != nil {
			s.deps.GitHubBreaker.RecordFailure()
			return nil, err
		}
		result.Release = info
	} else {
		stop := s.deps.Metrics.Timer("github.release.create", tags)
		info, err := guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("github.timeout", map[string]string{"op": "create_release"}) }, func() (ports.ReleaseInfo, error) {
			return s.deps.Publisher.CreateRelease(ctx, owner, repo, tag, name, body, commitish)
		})
		stop()
		if err != nil {
			s.deps.GitHubBreaker.RecordFailure()
			return nil, err
		}
		result.Release = info
	}

	s.deps.GitHubBreaker.RecordSuccess()
	log.Info("release publicado", "repo", fullRepo, "tag", tag, "action", action, "url", result.Release.HTMLURL)
	return result, nil
}

func (s *NotesService) fetchPRContext(ctx context.Context, owner, repo string, prNumber int) (*models.PRContext, error) {
	metadata, err := s.deps.Source.GetPullRequest(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}
	commits, err := s.deps.Source.ListCommits(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}
	return &models.PRContext{
		Repo:    owner + "/" + repo,
		PR:      metadata,
		Commits: commits,
	}, nil
}

func (s *NotesService) buildProcessedDiff(ctx context.Context, prCtx *models.PRContext, owner, repo string, prNumber int, tags map[string]string) (*models.ProcessedDiff, error) {
	if !s.deps.DiffBreaker.Allow() {
		return nil, errors.New(errors.CodeUnknown, "el servicio de diff está temporalmente deshabilitado por el circuit breaker")
	}

	stop := s.deps.Metrics.Timer("diff.fetch", tags)
	bundle, err := guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("diff.timeout", map[string]string{"op": "fetch"}) }, func() (*models.DiffBundle, error) {
		return s.fetcher.Fetch(ctx, owner, repo, prNumber, prCtx.PR.BaseSHA, prCtx.PR.HeadSHA)
	})
	stop()
	if err != nil {
		s.deps.DiffBreaker.RecordFailure()
		return nil, err
	}

	stop = s.deps.Metrics.Timer("diff.process", tags)
	processed, err := guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("diff.timeout", map[string]string{"op": "process"}) }, func() (*models.ProcessedDiff, error) {
		return s.processor.Process(ctx, bundle, prCtx.Commits), nil
	})
	stop()
	if err != nil {
		s.deps.DiffBreaker.RecordFailure()
		return nil, err
	}

	s.deps.DiffBreaker.RecordSuccess()
	return processed, nil
}

func (s *NotesService) callModel(ctx context.Context, prompt string, tags map[string]string) (string, error) {
	if !s.deps.ModelBreaker.Allow() {
		return "", errors.New(errors.CodeUnknown, "el modelo está temporalmente deshabilitado por el circuit breaker")
	}

	stop := s.deps.Metrics.Timer("model.request", tags)
	raw, err := guardrails.Retry(ctx, guardrails.RetryOptions{
		MaxAttempts: 1 + s.cfg.Retry.MaxRetries,
		Backoff:     time.Duration(s.cfg.Retry.BackoffSeconds * float64(time.Second)),
		RetryOn:     llmRetryCodes,
	}, func() (string, error) {
		return guardrails.Watchdog(s.watchdogRuntime(), func() { s.deps.Metrics.Incr("model.timeout", nil) }, func() (string, error) {
			return s.deps.Generator.GenerateJSON(ctx, prompt)
		})
	})
	stop()

	if err != nil {
		s.deps.ModelBreaker.RecordFailure()
		s.deps.Metrics.Incr("model.failure", map[string]string{"code": string(errors.CodeOf(err))})
		return "", err
	}

	s.deps.ModelBreaker.RecordSuccess()
	return raw, nil
}

// repairDraft hace una única vuelta de reparación: le devuelve al modelo el
// schema y el intento anterior truncado, y valida de nuevo.
func (s *NotesService) repairDraft(ctx context.Context, raw string) (*models.NotesDraft, error) {
	last := raw
	if len(last) > repairPromptMaxChars {
		last = last[:repairPromptMaxChars]
	}
	repairPrompt := "Return ONLY a single JSON object that validates against this schema.\nSCHEMA:\n" +
		notes.DraftJSONSchema() + "\nPREVIOUS_ATTEMPT (may be invalid):\n" + last + "\n"

	repaired, err := s.deps.Generator.GenerateJSON(ctx, repairPrompt)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "el modelo devolvió JSON inválido y la reparación falló", err)
	}
	draft, err := notes.ExtractAndValidateDraft(repaired)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "el modelo devolvió JSON inválido después de la reparación", err)
	}
	return draft, nil
}

func (s *NotesService) resultFromEntry(key string, entry *cache.Entry, final bool) *GenerateResult {
	draft := entry.Draft
	markdown := entry.Markdown
	if final {
		markdown = notes.RenderMarkdown(&draft, notes.ModeFinal)
	}
	jsonBytes, _ := json.Marshal(&draft)
	return &GenerateResult{
		Key:      key,
		Draft:    &draft,
		Markdown: markdown,
		JSONText: string(jsonBytes),
		CacheHit: true,
	}
}

func (s *NotesService) postFeedback(ctx context.Context, owner, repo string, prNumber int, msg string) *CommentFeedback {
	res, err := s.deps.Commenter.CreateComment(ctx, owner, repo, prNumber, msg)
	return &CommentFeedback{Result: res, Err: err}
}

func (s *NotesService) appendAudit(ctx context.Context, repo string, prNumber int, actor, action string, allowed bool, reason string) {
	err := s.deps.Audit.Append(audit.Record{
		Repo:    repo,
		PR:      prNumber,
		Actor:   actor,
		Action:  action,
		Allowed: allowed,
		Reason:  reason,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("no se pudo auditar el intento de publicación", "repo", repo, "pr", prNumber, "error", err)
	}
}

func (s *NotesService) releaseBody(key, tag string) string {
	if key != "" {
		if entry, ok := s.deps.Cache.Get(key); ok {
			return notes.RenderMarkdown(&entry.Draft, notes.ModeFinal)
		}
	}
	return fmt.Sprintf("# Release Notes — %s\n\n_This release was published without a cached draft. Consider generating a preview in PR first for richer content._", tag)
}

// backupReleaseBody guarda el body actual antes de pisarlo, con timestamp en
// el nombre para conservar el historial.
func (s *NotesService) backupReleaseBody(fullRepo, tag, body string) (string, error) {
	root := s.cfg.Publish.BackupsRoot
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s#%s-%d.md", safeName(fullRepo), safeName(tag), time.Now().Unix())
	path := filepath.Join(root, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func safeName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '/' || r == os.PathSeparator {
			r = '#'
		}
		out = append(out, r)
	}
	return string(out)
}

func (s *NotesService) watchdogRuntime() time.Duration {
	return time.Duration(s.cfg.Watchdog.MaxRuntimeSeconds) * time.Second
}

func (s *NotesService) checkKillSwitch() error {
	if s.cfg.KillSwitchPath == "" {
		return nil
	}
	if _, err := os.Stat(s.cfg.KillSwitchPath); err == nil {
		return errors.New(errors.CodeUnknown, fmt.Sprintf("kill switch activo en %s, pipeline deshabilitado", s.cfg.KillSwitchPath))
	}
	return nil
}
