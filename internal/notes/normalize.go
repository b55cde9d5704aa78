package notes

import (
	"regexp"
	"sort"
	"strings"

	"github.com/maticastro/notaprensa/internal/domain/models"
)

var spacesRe = regexp.MustCompile(`\s+`)

// Orden canónico de scopes y tipos dentro de cada sección renderizada.
var (
	scopeOrder = []string{"api", "ui", "core", "infra", "build", "data", "docs", "tests", "config", "deps", "release", ""}
	noteOrder  = []string{"feature", "security", "perf", "refactor", "fix", "docs", "test", "build", "ci", "chore", "style", "revert"}
)

// NormalizeDraft canonicaliza el draft: campos en minúsculas y sin espacios
// redundantes, listas deduplicadas y ordenadas, items equivalentes fusionados
// y cada sección en orden estable. Es idempotente: normalizar dos veces da
// el mismo resultado.
func NormalizeDraft(d *models.NotesDraft) *models.NotesDraft {
	out := *d

	out.Highlights = normalizeSection(d.Highlights, "highlights")
	out.Fixes = normalizeSection(d.Fixes, "fixes")
	out.Docs = normalizeSection(d.Docs, "docs")
	out.BreakingChanges = normalizeSection(d.BreakingChanges, "breaking_changes")

	if out.Deprecations == nil {
		out.Deprecations = []models.DeprecationItem{}
	}
	if out.UpgradeNotes == nil {
		out.UpgradeNotes = []string{}
	}
	if out.KnownIssues == nil {
		out.KnownIssues = []string{}
	}
	return &out
}

func normalizeSection(items []models.NoteItem, section string) []models.NoteItem {
	canon := make([]models.NoteItem, 0, len(items))
	for _, it := range items {
		canon = append(canon, canonicalizeItem(it))
	}

	// Agrupar por clave estable y fusionar duplicados.
	groups := map[string][]models.NoteItem{}
	var order []string
	for _, it := range canon {
		k := itemKey(it)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], it)
	}

	merged := make([]models.NoteItem, 0, len(order))
	for _, k := range order {
		merged = append(merged, mergeItems(groups[k]))
	}

	sortItems(merged, section)
	return merged
}

func canonicalizeItem(it models.NoteItem) models.NoteItem {
	return models.NoteItem{
		Type:       strings.ToLower(it.Type),
		Title:      collapseSpaces(it.Title),
		Details:    collapseSpaces(it.Details),
		Scope:      strings.ToLower(it.Scope),
		Breaking:   it.Breaking,
		Confidence: it.Confidence,
		IssueRefs:  normList(it.IssueRefs),
		Components: normList(it.Components),
		Files:      normList(it.Files),
		CommitSHAs: normList(it.CommitSHAs),
	}
}

func itemKey(it models.NoteItem) string {
	return strings.Join([]string{
		it.Type,
		it.Scope,
		it.Title,
		strings.Join(it.Files, "\x00"),
		strings.Join(it.CommitSHAs, "\x00"),
	}, "\x1f")
}

// mergeItems fusiona duplicados: breaking si alguno lo es, la confianza
// máxima, y las listas de referencias unidas.
func mergeItems(items []models.NoteItem) models.NoteItem {
	base := items[0]
	for _, it := range items[1:] {
		base.Breaking = base.Breaking || it.Breaking
		if it.Confidence != nil && (base.Confidence == nil || *it.Confidence > *base.Confidence) {
			base.Confidence = it.Confidence
		}
		base.IssueRefs = append(base.IssueRefs, it.IssueRefs...)
		base.Components = append(base.Components, it.Components...)
		base.Files = append(base.Files, it.Files...)
		base.CommitSHAs = append(base.CommitSHAs, it.CommitSHAs...)
	}
	base.IssueRefs = normList(base.IssueRefs)
	base.Components = normList(base.Components)
	base.Files = normList(base.Files)
	base.CommitSHAs = normList(base.CommitSHAs)
	return base
}

func sortItems(items []models.NoteItem, section string) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]

		sa, sb := rankOf(scopeOrder, a.Scope), rankOf(scopeOrder, b.Scope)
		if sa != sb {
			return sa < sb
		}
		// en breaking_changes el tipo no pesa en el orden
		if section != "breaking_changes" {
			ta, tb := rankOf(noteOrder, a.Type), rankOf(noteOrder, b.Type)
			if ta != tb {
				return ta < tb
			}
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

func rankOf(order []string, v string) int {
	for i, s := range order {
		if s == v {
			return i
		}
	}
	return len(order)
}

func collapseSpaces(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return spacesRe.ReplaceAllString(s, " ")
}

// normList limpia, deduplica y ordena una lista de strings.
func normList(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		vv := collapseSpaces(v)
		if vv == "" || seen[vv] {
			continue
		}
		seen[vv] = true
		out = append(out, vv)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
