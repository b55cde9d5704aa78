// Package diff obtiene y prepara los cambios de un PR para el modelo:
// primero un bundle estructurado por archivo, después chunks recortados que
// entran en el presupuesto de tokens del prompt.
package diff

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/maticastro/notaprensa/internal/domain/ports"
	"github.com/maticastro/notaprensa/internal/logger"
)

var (
	ignoreDirsRe = regexp.MustCompile(`(^|/)(node_modules|vendor|dist|build|target|\.next|out|\.venv|__pycache__|\.git)/`)
	hunkHeaderRe = regexp.MustCompile(`(?m)^@@`)
	diffGitRe    = regexp.MustCompile(`(?m)^diff --git a/(.+) b/(.+)$`)
	testPathRe   = regexp.MustCompile(`(_test\.|Test\.)`)
)

var ignoreExts = []string{
	".min.js", ".min.css", ".map", ".lock", ".bundle",
	".png", ".jpg", ".jpeg", ".gif", ".webp",
	".pdf", ".zip", ".bin",
}

// Fetcher arma un DiffBundle a partir de la fuente de datos del PR, aplicando
// reglas de ignore y topes de tamaño antes de que nada llegue al modelo.
type Fetcher struct {
	source ports.PRDataSource
	cfg    config.DiffConfig
}

// NewFetcher crea un Fetcher sobre la fuente de datos dada.
func NewFetcher(source ports.PRDataSource, cfg config.DiffConfig) *Fetcher {
	return &Fetcher{source: source, cfg: cfg}
}

// Fetch colecta los archivos cambiados del PR entre baseSHA y headSHA.
// Cuando el proveedor omite el patch de algún archivo intenta suplementarlo
// con el diff unificado; si ni eso alcanza, el archivo queda como binario.
func (f *Fetcher) Fetch(ctx context.Context, owner, repo string, prNumber int, baseSHA, headSHA string) (*models.DiffBundle, error) {
	if baseSHA == "" || headSHA == "" {
		return nil, errors.Wrap(errors.CodeNotFound, "faltan SHAs para calcular el diff", errors.NewMissingRefError(baseSHA, headSHA))
	}

	log := logger.FromContext(ctx)

	raw, err := f.source.ListPullRequestFiles(ctx, owner, repo, prNumber)
	if err != nil {
		return nil, err
	}

	var diagnostics []string
	truncated := false

	if len(raw) > f.cfg.MaxFiles {
		diagnostics = append(diagnostics, fmt.Sprintf("File cap hit: %d > %d", len(raw), f.cfg.MaxFiles))
		truncated = true
		raw = raw[:f.cfg.MaxFiles]
	}

	// Solo pedimos el diff unificado si algún archivo vino sin patch.
	needUnified := false
	for _, rc := range raw {
		if rc.Patch == nil || *rc.Patch == "" {
			needUnified = true
			break
		}
	}

	unifiedMap := map[string]string{}
	if needUnified {
		unifiedText, uerr := f.source.GetUnifiedDiff(ctx, owner, repo, prNumber, baseSHA, headSHA)
		if uerr != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("Unified diff unavailable: %s", errors.CodeOf(uerr)))
			log.Warn("no se pudo obtener el diff unificado, se continúa con los patches disponibles",
				slog.String("code", string(errors.CodeOf(uerr))))
		} else {
			if size := len(unifiedText); size > f.cfg.MaxDiffBytes {
				diagnostics = append(diagnostics, fmt.Sprintf("Unified diff size cap hit: %d bytes > %d", size, f.cfg.MaxDiffBytes))
				truncated = true
			}
			unifiedMap = splitUnifiedByFile(unifiedText)
		}
	}

	bundle := &models.DiffBundle{
		PRNumber:    prNumber,
		BaseSHA:     baseSHA,
		HeadSHA:     headSHA,
		Truncated:   truncated,
		Diagnostics: diagnostics,
	}

	for _, rc := range raw {
		if rc.Filename == "" || isIgnoredPath(rc.Filename, f.cfg.TreatSVGAsText) {
			continue
		}

		status := rc.Status
		if status == "" {
			status = string(models.StatusModified)
		}
		changes := rc.Changes
		if changes == 0 {
			changes = rc.Additions + rc.Deletions
		}

		isBinary := rc.Patch == nil
		patch := ""
		if !isBinary {
			patch = *rc.Patch
		} else if supplement, ok := unifiedMap[rc.Filename]; ok && supplement != "" {
			patch = supplement
			isBinary = false
		}

		bundle.TotalAdditions += rc.Additions
		bundle.TotalDeletions += rc.Deletions
		bundle.TotalChanges += changes

		file := models.DiffFile{
			Path:         rc.Filename,
			Status:       models.FileStatus(status),
			Additions:    rc.Additions,
			Deletions:    rc.Deletions,
			Changes:      changes,
			PreviousPath: rc.PreviousFilename,
			IsBinary:     isBinary,
			ChangeType:   inferChangeType(rc.Filename),
			Patch:        patch,
			HunkCount:    countHunks(patch),
		}
		file.Summary = summarizeFile(file)
		bundle.Files = append(bundle.Files, file)
	}

	bundle.TotalFiles = len(bundle.Files)
	return bundle, nil
}

// isIgnoredPath filtra rutas generadas, vendored o binarias que no aportan
// nada a unas release notes.
func isIgnoredPath(path string, treatSVGAsText bool) bool {
	if ignoreDirsRe.MatchString(path) {
		return true
	}
	for _, ext := range ignoreExts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	if !treatSVGAsText && strings.HasSuffix(path, ".svg") {
		return true
	}
	return false
}

func inferChangeType(path string) models.ChangeType {
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "docs/") || hasAnySuffix(lower, ".md", ".rst", ".adoc"):
		return models.ChangeTypeDocs
	case strings.HasPrefix(lower, "test/") || strings.HasPrefix(lower, "tests/") || testPathRe.MatchString(path):
		return models.ChangeTypeTests
	case hasAnySuffix(lower, ".yml", ".yaml", ".json", ".toml", ".ini") ||
		strings.HasPrefix(lower, ".github/") || strings.HasPrefix(lower, ".config/") || strings.HasPrefix(lower, "config/"):
		return models.ChangeTypeConfig
	case hasAnySuffix(lower, ".csv", ".parquet", ".avro"):
		return models.ChangeTypeData
	default:
		return models.ChangeTypeCode
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func countHunks(patch string) int {
	if patch == "" {
		return 0
	}
	return len(hunkHeaderRe.FindAllStringIndex(patch, -1))
}

func summarizeFile(f models.DiffFile) string {
	if f.IsBinary {
		return ""
	}
	summary := fmt.Sprintf("%s %s with %d additions and %d deletions.",
		capitalize(string(f.Status)), f.Path, f.Additions, f.Deletions)
	if f.HunkCount > 0 {
		summary += fmt.Sprintf(" %d hunks.", f.HunkCount)
	}
	return summary
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// splitUnifiedByFile parte un diff unificado en secciones por archivo usando
// las líneas "diff --git". Los renombres quedan mapeados por ambos nombres.
func splitUnifiedByFile(unified string) map[string]string {
	fileMap := map[string]string{}
	if unified == "" {
		return fileMap
	}

	matches := diffGitRe.FindAllStringSubmatchIndex(unified, -1)
	for i, m := range matches {
		oldName := strings.TrimSpace(unified[m[2]:m[3]])
		newName := strings.TrimSpace(unified[m[4]:m[5]])

		bodyStart := m[1]
		bodyEnd := len(unified)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		body := unified[bodyStart:bodyEnd]

		fileMap[newName] = body
		if _, ok := fileMap[oldName]; !ok {
			fileMap[oldName] = body
		}
	}
	return fileMap
}
