package notes

import (
	"testing"

	"github.com/maticastro/notaprensa/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conf(v float64) *float64 { return &v }

func TestNormalizeDraft(t *testing.T) {
	t.Run("should merge duplicate items keeping max confidence and breaking", func(t *testing.T) {
		draft := &models.NotesDraft{
			SchemaVersion:    models.SchemaVersion,
			VersionIncrement: "patch",
			Fixes: []models.NoteItem{
				{Type: "Fix", Title: "  Arregla   el parser ", Scope: "API", Confidence: conf(0.5), IssueRefs: []string{"#12"}},
				{Type: "fix", Title: "Arregla el parser", Scope: "api", Breaking: true, Confidence: conf(0.8), IssueRefs: []string{"#34", "#12"}},
			},
		}

		out := NormalizeDraft(draft)

		require.Len(t, out.Fixes, 1)
		merged := out.Fixes[0]
		assert.Equal(t, "fix", merged.Type)
		assert.Equal(t, "Arregla el parser", merged.Title)
		assert.Equal(t, "api", merged.Scope)
		assert.True(t, merged.Breaking)
		assert.Equal(t, 0.8, *merged.Confidence)
		assert.Equal(t, []string{"#12", "#34"}, merged.IssueRefs)
	})

	t.Run("should not merge items with different files", func(t *testing.T) {
		draft := &models.NotesDraft{
			Fixes: []models.NoteItem{
				{Type: "fix", Title: "Mismo título", Files: []string{"a.go"}},
				{Type: "fix", Title: "Mismo título", Files: []string{"b.go"}},
			},
		}

		out := NormalizeDraft(draft)
		assert.Len(t, out.Fixes, 2)
	})

	t.Run("should sort by scope then type then title", func(t *testing.T) {
		draft := &models.NotesDraft{
			Highlights: []models.NoteItem{
				{Type: "fix", Title: "zeta", Scope: "core"},
				{Type: "feature", Title: "alfa", Scope: "core"},
				{Type: "feature", Title: "beta", Scope: "api"},
				{Type: "chore", Title: "gamma"},
			},
		}

		out := NormalizeDraft(draft)

		titles := make([]string, 0, 4)
		for _, it := range out.Highlights {
			titles = append(titles, it.Title)
		}
		// api antes que core; dentro de core feature antes que fix; sin scope al final
		assert.Equal(t, []string{"beta", "alfa", "zeta", "gamma"}, titles)
	})

	t.Run("should ignore type when ordering breaking changes", func(t *testing.T) {
		draft := &models.NotesDraft{
			BreakingChanges: []models.NoteItem{
				{Type: "chore", Title: "aaa", Scope: "api"},
				{Type: "feature", Title: "bbb", Scope: "api"},
			},
		}

		out := NormalizeDraft(draft)
		assert.Equal(t, "aaa", out.BreakingChanges[0].Title)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		draft := &models.NotesDraft{
			Highlights: []models.NoteItem{
				{Type: "Feature", Title: " con  espacios ", Scope: "UI", Components: []string{"web", "web", "cli"}},
			},
		}

		once := NormalizeDraft(draft)
		twice := NormalizeDraft(once)
		assert.Equal(t, once, twice)
	})

	t.Run("should materialize optional sections as empty lists", func(t *testing.T) {
		out := NormalizeDraft(&models.NotesDraft{})
		assert.NotNil(t, out.Deprecations)
		assert.NotNil(t, out.UpgradeNotes)
		assert.NotNil(t, out.KnownIssues)
	})
}
