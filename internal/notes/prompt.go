package notes

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
)

// promptTemplate es el prompt de release notes. Los placeholders {{ x }} se
// sustituyen literalmente, sin motor de templates.
const promptTemplate = `You are a release notes writer. Produce STRICT JSON only, no prose, no markdown fences.

Repository: {{ repo }}
Pull request: #{{ pr_number }} by {{ author }}
Title: {{ pr_title }}
Labels: {{ labels_csv }}
Draft: {{ is_draft }}
Branches: {{ base_ref }} -> {{ head_ref }}
Head SHA: {{ head_sha }}

Diff context level: {{ degradation }}
Degradation reason: {{ degradation_reason }}
Input truncated: {{ truncated }}
Diagnostics:
{{ diagnostics_bulleted }}

Rules:
- Output a single JSON object that validates against the schema below.
- Base every item on evidence from the diff or commits; do not invent changes.
- Use lowercase enum values exactly as listed in the schema.
- Leave sections empty when nothing user-facing changed.
- Set confidence between 0 and 1 per item and overall.

JSON schema:
{{ json_schema }}

Changes:
{{ diff_chunk }}
`

// PromptMeta acompaña al prompt para logging.
type PromptMeta struct {
	Repo         string
	PR           int
	Head         string
	FilesInChunk int
	PromptLen    int
}

// BuildSingleChunkPrompt arma el prompt para el primer chunk del diff
// procesado. En commits_only el chunk va vacío y la evidencia son los
// resúmenes de commits.
func BuildSingleChunkPrompt(pr *models.PRContext, diff *models.ProcessedDiff) (string, PromptMeta, error) {
	if len(diff.Chunks) == 0 {
		return "", PromptMeta{}, errors.New(errors.CodeValidation, "no hay chunks de diff para armar el prompt")
	}
	chunk := diff.Chunks[0]

	labelsCSV := strings.Join(pr.PR.Labels, ", ")
	if len(labelsCSV) > 500 {
		labelsCSV = labelsCSV[:500]
	}

	diffText := renderChunk(chunk, diff)

	replacer := strings.NewReplacer(
		"{{ repo }}", pr.Repo,
		"{{ pr_number }}", strconv.Itoa(pr.PR.Number),
		"{{ head_sha }}", pr.PR.HeadSHA,
		"{{ author }}", pr.PR.Author,
		"{{ pr_title }}", pr.PR.Title,
		"{{ labels_csv }}", labelsCSV,
		"{{ is_draft }}", strconv.FormatBool(pr.PR.IsDraft),
		"{{ base_ref }}", pr.PR.BaseRef,
		"{{ head_ref }}", pr.PR.HeadRef,
		"{{ degradation }}", string(diff.Degradation),
		"{{ degradation_reason }}", diff.DegradationReason,
		"{{ truncated }}", strconv.FormatBool(diff.Truncated),
		"{{ diagnostics_bulleted }}", bulleted(diff.Diagnostics, 10),
		"{{ json_schema }}", DraftJSONSchema(),
		"{{ diff_chunk }}", diffText,
	)
	prompt := replacer.Replace(promptTemplate)

	meta := PromptMeta{
		Repo:         pr.Repo,
		PR:           pr.PR.Number,
		Head:         pr.PR.HeadSHA,
		FilesInChunk: chunk.FilesCount,
		PromptLen:    len(prompt),
	}
	return prompt, meta, nil
}

func renderChunk(chunk models.ProcessedChunk, diff *models.ProcessedDiff) string {
	if diff.Degradation == models.DegradationCommitsOnly {
		var lines []string
		for _, c := range diff.CommitsSummary {
			lines = append(lines, fmt.Sprintf("- %s %s: %s", c.ShaShort, c.AuthorLogin, c.MessageFirstLine))
		}
		if len(lines) == 0 {
			return "# no diff or commit data available"
		}
		return "Commits:\n" + strings.Join(lines, "\n")
	}

	var parts []string
	for _, pf := range chunk.Files {
		if pf.PatchTrimmed != "" {
			parts = append(parts, fmt.Sprintf("--- %s (%s)\n%s", pf.Path, pf.ChangeType, pf.PatchTrimmed))
		} else {
			parts = append(parts, fmt.Sprintf("--- %s (%s)\n# no patch available; summary: %s", pf.Path, pf.ChangeType, pf.Summary))
		}
	}
	return strings.Join(parts, "\n\n")
}

func bulleted(lines []string, maxLines int) string {
	if len(lines) == 0 {
		return "- none"
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		clean := strings.NewReplacer("\r", " ", "\n", " ").Replace(l)
		out = append(out, "- "+clean)
	}
	return strings.Join(out, "\n")
}
