package notes

import (
	"fmt"
	"strings"

	"github.com/maticastro/notaprensa/internal/domain/models"
)

// RenderMode distingue el comentario de preview del cuerpo final del release.
type RenderMode string

const (
	ModePreview RenderMode = "preview"
	ModeFinal   RenderMode = "final"
)

var mdEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "|", `\|`)

func escapeMD(s string) string {
	if s == "" {
		return s
	}
	return mdEscaper.Replace(s)
}

// RenderMarkdown produce el markdown de un draft normalizado. Las secciones
// vacías se omiten; un draft sin contenido deja una nota explícita en vez de
// un documento en blanco.
func RenderMarkdown(d *models.NotesDraft, mode RenderMode) string {
	var sb strings.Builder

	if mode == ModeFinal {
		sb.WriteString("# Release Notes\n\n")
	} else {
		sb.WriteString("# Release Notes (Preview)\n\n")
	}

	var meta []string
	if d.Repo != "" {
		meta = append(meta, "Repo: "+escapeMD(d.Repo))
	}
	if d.PRNumber != 0 {
		meta = append(meta, fmt.Sprintf("PR: #%d", d.PRNumber))
	}
	if d.HeadSHA != "" {
		meta = append(meta, "Head: `"+d.HeadSHA+"`")
	}
	meta = append(meta, "Schema: "+escapeMD(d.SchemaVersion))
	if d.ConfidenceOverall != nil {
		meta = append(meta, fmt.Sprintf("Confidence: %.2f", *d.ConfidenceOverall))
	} else {
		meta = append(meta, "Confidence: n/a")
	}
	sb.WriteString("_" + strings.Join(meta, " · ") + "_\n")

	if d.VersionIncrement != "" && d.VersionIncrement != "none" {
		sb.WriteString(fmt.Sprintf("\n**Suggested version increment:** %s\n", escapeMD(d.VersionIncrement)))
	}

	writeItemSection(&sb, "Highlights", d.Highlights)
	writeItemSection(&sb, "Breaking Changes", d.BreakingChanges)
	writeItemSection(&sb, "Fixes", d.Fixes)
	writeItemSection(&sb, "Documentation", d.Docs)

	if len(d.Deprecations) > 0 {
		sb.WriteString("\n## Deprecations\n\n")
		for _, dep := range d.Deprecations {
			line := "- " + escapeMD(dep.Title)
			if dep.EffectiveVersion != "" {
				line += fmt.Sprintf(" _(effective: %s)_", escapeMD(dep.EffectiveVersion))
			}
			sb.WriteString(line + "\n")
			if dep.Details != "" {
				sb.WriteString("  " + escapeMD(dep.Details) + "\n")
			}
		}
	}

	writeLineSection(&sb, "Upgrade Notes", d.UpgradeNotes)
	writeLineSection(&sb, "Known Issues", d.KnownIssues)

	if d.IsEmpty() {
		sb.WriteString("\nNo user-facing changes detected.\n")
	}
	return sb.String()
}

func writeItemSection(sb *strings.Builder, title string, items []models.NoteItem) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n## " + title + "\n\n")
	sb.WriteString(bullets(items))
	sb.WriteString("\n")
}

func writeLineSection(sb *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString("\n## " + title + "\n\n")
	for _, l := range lines {
		sb.WriteString("- " + escapeMD(l) + "\n")
	}
}

func bullets(items []models.NoteItem) string {
	var lines []string
	for _, it := range items {
		line := fmt.Sprintf("- **[%s]** %s", escapeMD(it.Type), escapeMD(it.Title))
		if it.Scope != "" {
			line += fmt.Sprintf(" _(scope: %s)_", escapeMD(it.Scope))
		}
		if it.Breaking {
			line += " **(breaking)**"
		}
		if it.Confidence != nil {
			line += fmt.Sprintf(" — confidence %.2f", *it.Confidence)
		}
		lines = append(lines, line)

		if it.Details != "" {
			lines = append(lines, "  "+escapeMD(it.Details))
		}

		var parts []string
		if len(it.IssueRefs) > 0 {
			parts = append(parts, "refs: "+escapeJoin(it.IssueRefs))
		}
		if len(it.Components) > 0 {
			parts = append(parts, "comp: "+escapeJoin(it.Components))
		}
		if len(it.Files) > 0 {
			files := it.Files
			if len(files) > 5 {
				files = files[:5]
			}
			parts = append(parts, "files: "+escapeJoin(files))
		}
		if len(parts) > 0 {
			lines = append(lines, "  "+strings.Join(parts, " · "))
		}
	}
	return strings.Join(lines, "\n")
}

func escapeJoin(values []string) string {
	escaped := make([]string, 0, len(values))
	for _, v := range values {
		escaped = append(escaped, escapeMD(v))
	}
	return strings.Join(escaped, ", ")
}
