package diff

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/maticastro/notaprensa/internal/logger"
)

var (
	codeHintRe = regexp.MustCompile(`\bclass\b|\binterface\b|\bpublic\b|\bdef\b|\bfunc\b`)
	apiHintRe  = regexp.MustCompile(`\bdeprecated\b|@Api|schema|import |version`)
)

// typeOrder fija el orden de tipos de cambio dentro del chunking. Lo que no
// matchea va al final.
var typeOrder = map[models.ChangeType]int{
	models.ChangeTypeCode:   0,
	models.ChangeTypeConfig: 1,
	models.ChangeTypeData:   2,
	models.ChangeTypeDocs:   3,
	models.ChangeTypeTests:  4,
}

// Processor transforma un DiffBundle en chunks listos para el prompt:
// parches recortados, orden determinístico y degradación en dos etapas
// (full -> files_only -> commits_only) cuando no entra en el presupuesto.
//
// Mismo bundle y mismos presupuestos producen exactamente la misma salida;
// no hay aleatoriedad ni dependencia del reloj.
type Processor struct {
	contextLines     int
	maxFilesPerChunk int
	maxChunks        int
	hardTokenBudget  int
	charsPerToken    float64
	groupByDirDepth  int
	softChunkBudget  int
}

// NewProcessor crea un Processor con los presupuestos de cfg.
func NewProcessor(cfg config.DiffConfig) *Processor {
	return &Processor{
		contextLines:     cfg.ContextLines,
		maxFilesPerChunk: cfg.MaxFilesPerChunk,
		maxChunks:        cfg.MaxChunks,
		hardTokenBudget:  cfg.HardTokenBudget,
		charsPerToken:    cfg.CharsPerToken,
		groupByDirDepth:  1,
		softChunkBudget:  int(float64(cfg.HardTokenBudget) * cfg.SoftBudgetRatio),
	}
}

// Process recorta, ordena y agrupa los archivos del bundle. Si los chunks no
// entran en el presupuesto se descartan los parches (files_only) y, si aún
// así no alcanza, se cae a commits_only con un único chunk vacío.
func (p *Processor) Process(ctx context.Context, bundle *models.DiffBundle, commits []models.CommitInfo) *models.ProcessedDiff {
	processed := make([]models.ProcessedFile, 0, len(bundle.Files))
	for _, f := range bundle.Files {
		processed = append(processed, p.toProcessedFile(f))
	}
	totalFiles := len(processed)

	chunks := p.buildChunks(p.groupAndOrder(processed))

	degradation := models.DegradationFull
	var diagnostics []string
	degradationReason := ""

	overChunks := len(chunks) > p.maxChunks
	overBudget := anyOverBudget(chunks, p.hardTokenBudget)
	if overChunks || overBudget {
		degradation = models.DegradationFilesOnly
		if overBudget && !overChunks {
			degradationReason = models.DegradationReasonBudget
		} else {
			degradationReason = models.DegradationReasonChunks
		}
		diagnostics = append(diagnostics, "degraded to files_only due to token budget/chunk limits")

		for i := range processed {
			processed[i].PatchTrimmed = ""
			processed[i].TokensEst = p.estimateTokens(processed[i].Summary)
		}
		chunks = p.buildChunks(p.groupAndOrder(processed))
	}

	overChunks = len(chunks) > p.maxChunks
	overBudget = anyOverBudget(chunks, p.hardTokenBudget)
	if overChunks || overBudget {
		degradation = models.DegradationCommitsOnly
		if degradationReason == "" {
			if overChunks {
				degradationReason = models.DegradationReasonChunks
			} else {
				degradationReason = models.DegradationReasonBudget
			}
		}
		diagnostics = append(diagnostics, "degraded to commits_only due to >max chunks after files_only")
		chunks = []models.ProcessedChunk{{Idx: 0, Files: []models.ProcessedFile{}, Diagnostics: []string{"commits_only"}}}
	}

	totalTokens := 0
	for _, c := range chunks {
		totalTokens += c.TokensEst
	}

	if bundle.Truncated {
		diagnostics = append(diagnostics, "input bundle truncated at fetch stage")
		if degradationReason == "" {
			degradationReason = models.DegradationReasonInputTruncated
		}
	}

	var commitsSummary []models.CommitSummary
	if degradation == models.DegradationCommitsOnly {
		commitsSummary = summarizeCommits(commits)
	}

	result := &models.ProcessedDiff{
		Chunks:            chunks,
		TotalFiles:        totalFiles,
		TotalTokensEst:    totalTokens,
		Truncated:         bundle.Truncated,
		Degradation:       degradation,
		Diagnostics:       diagnostics,
		DegradationReason: degradationReason,
		CommitsSummary:    commitsSummary,
	}

	logger.FromContext(ctx).Info("diff procesado",
		slog.Int("files", totalFiles),
		slog.Int("chunks", len(chunks)),
		slog.String("degradation", string(degradation)))
	return result
}

func anyOverBudget(chunks []models.ProcessedChunk, hardBudget int) bool {
	for _, c := range chunks {
		if c.TokensEst > hardBudget {
			return true
		}
	}
	return false
}

func summarizeCommits(commits []models.CommitInfo) []models.CommitSummary {
	const maxCommits = 20
	out := make([]models.CommitSummary, 0, maxCommits)
	for i, c := range commits {
		if i >= maxCommits {
			break
		}
		firstLine := c.Message
		if firstLine == "" {
			firstLine = models.FirstLine(c.RawMessage)
		}
		out = append(out, models.CommitSummary{
			ShaShort:         models.ShortSHA(c.SHA),
			AuthorLogin:      c.AuthorLogin,
			MessageFirstLine: firstLine,
		})
	}
	return out
}

func (p *Processor) toProcessedFile(f models.DiffFile) models.ProcessedFile {
	trimmed := ""
	if !f.IsBinary && f.Patch != "" {
		trimmed = p.trimPatch(f.Patch)
	}

	hunkCount := f.HunkCount
	if trimmed != "" {
		hunkCount = countHunks(trimmed)
	}

	summary := p.summarizeProcessed(f, hunkCount)

	tokenSource := trimmed
	if tokenSource == "" {
		tokenSource = summary
	}

	return models.ProcessedFile{
		Path:         f.Path,
		Status:       f.Status,
		PreviousPath: f.PreviousPath,
		ChangeType:   f.ChangeType,
		IsBinary:     f.IsBinary,
		Additions:    f.Additions,
		Deletions:    f.Deletions,
		HunkCount:    hunkCount,
		Summary:      summary,
		PatchTrimmed: trimmed,
		TokensEst:    p.estimateTokens(tokenSource),
	}
}

// groupAndOrder ordena binarios primero, después por tipo de cambio,
// directorio tope y path. El orden es total: no quedan empates.
func (p *Processor) groupAndOrder(files []models.ProcessedFile) []models.ProcessedFile {
	sorted := make([]models.ProcessedFile, len(files))
	copy(sorted, files)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		ar, br := binaryRank(a), binaryRank(b)
		if ar != br {
			return ar < br
		}
		at, bt := typeRank(a.ChangeType), typeRank(b.ChangeType)
		if at != bt {
			return at < bt
		}
		ad, bd := p.topDir(a.Path), p.topDir(b.Path)
		if ad != bd {
			return ad < bd
		}
		return a.Path < b.Path
	})
	return sorted
}

func binaryRank(f models.ProcessedFile) int {
	if f.IsBinary {
		return 0
	}
	return 1
}

func typeRank(t models.ChangeType) int {
	if r, ok := typeOrder[t]; ok {
		return r
	}
	return 999
}

func (p *Processor) topDir(path string) string {
	parts := strings.Split(path, "/")
	depth := p.groupByDirDepth
	if depth < 1 {
		depth = 1
	}
	if len(parts) <= depth {
		return path
	}
	return strings.Join(parts[:depth], "/")
}

// buildChunks agrupa archivos en orden bajo el presupuesto blando y el tope
// de archivos por chunk. Greedy: un archivo que no entra abre chunk nuevo.
func (p *Processor) buildChunks(files []models.ProcessedFile) []models.ProcessedChunk {
	var chunks []models.ProcessedChunk
	var current []models.ProcessedFile
	tokens := 0
	idx := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunk := models.ProcessedChunk{
			Idx:        idx,
			Files:      current,
			FilesCount: len(current),
			TokensEst:  tokens,
		}
		chunks = append(chunks, chunk)
		idx++
		current = nil
		tokens = 0
	}

	for _, pf := range files {
		if len(current) >= p.maxFilesPerChunk || tokens+pf.TokensEst > p.softChunkBudget {
			flush()
		}
		current = append(current, pf)
		tokens += pf.TokensEst
	}
	flush()

	for i := range chunks {
		if chunks[i].TokensEst > p.hardTokenBudget {
			chunks[i].Diagnostics = append(chunks[i].Diagnostics, "hard token cap exceeded")
		}
	}
	return chunks
}

// trimPatch normaliza cada header de hunk a "@@" y recorta el contexto a
// contextLines alrededor de cada corrida de líneas +/-. Las líneas de cambio
// se conservan todas.
func (p *Processor) trimPatch(patch string) string {
	if patch == "" {
		return ""
	}
	lines := strings.Split(patch, "\n")
	var out []string

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "@@") {
			i++
			continue
		}
		out = append(out, "@@")
		j := i + 1
		var block []string
		for j < len(lines) && !strings.HasPrefix(lines[j], "@@") {
			block = append(block, lines[j])
			j++
		}
		out = append(out, p.trimHunkBlock(block)...)
		i = j
	}

	return strings.Join(out, "\n")
}

func (p *Processor) trimHunkBlock(block []string) []string {
	var changeIdx []int
	for idx, l := range block {
		if (strings.HasPrefix(l, "+") || strings.HasPrefix(l, "-")) &&
			!strings.HasPrefix(l, "+++") && !strings.HasPrefix(l, "---") {
			changeIdx = append(changeIdx, idx)
		}
	}
	if len(changeIdx) == 0 {
		if len(block) > p.contextLines {
			return block[:p.contextLines]
		}
		return block
	}

	keep := make(map[int]bool)
	k := p.contextLines

	start := changeIdx[0]
	prev := start
	markRun := func(a, b int) {
		for t := a; t <= b; t++ {
			keep[t] = true
		}
		for t := max(0, a-k); t < a; t++ {
			keep[t] = true
		}
		for t := b + 1; t < min(len(block), b+1+k); t++ {
			keep[t] = true
		}
	}
	for _, idx := range changeIdx[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		markRun(start, prev)
		start = idx
		prev = idx
	}
	markRun(start, prev)

	var out []string
	for idx, l := range block {
		if keep[idx] {
			out = append(out, l)
		}
	}
	return out
}

func (p *Processor) summarizeProcessed(f models.DiffFile, hunkCount int) string {
	var parts []string
	if f.Status == models.StatusRenamed && f.PreviousPath != "" {
		parts = append(parts, fmt.Sprintf("renamed from %s to %s.", f.PreviousPath, f.Path))
	} else {
		parts = append(parts, fmt.Sprintf("%s %s.", f.Status, f.ChangeType))
	}
	parts = append(parts, fmt.Sprintf("%d hunks (+%d/-%d).", hunkCount, f.Additions, f.Deletions))

	if f.Patch != "" && !f.IsBinary {
		var hints []string
		if codeHintRe.MatchString(f.Patch) {
			hints = append(hints, "classes/functions")
		}
		if apiHintRe.MatchString(f.Patch) {
			hints = append(hints, "api/schema/imports")
		}
		if len(hints) > 0 {
			parts = append(parts, "Touches "+strings.Join(hints, " and ")+".")
		}
	}

	summary := strings.Join(parts, " ")
	return truncateRunes(summary, 400)
}

// truncateRunes corta en límite de runas para no partir una secuencia
// multibyte por la mitad.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func (p *Processor) estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	perToken := p.charsPerToken
	if perToken < 1 {
		perToken = 1
	}
	return int(math.Ceil(float64(len(text)) / perToken))
}
