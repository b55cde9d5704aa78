package notes

import (
	"testing"

	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDraftJSON = `{
	"schema_version": "v1",
	"version_increment": "minor",
	"highlights": [
		{"type": "feature", "title": "Soporte para webhooks", "scope": "api", "breaking": false, "confidence": 0.9}
	],
	"fixes": [],
	"docs": [],
	"breaking_changes": [],
	"deprecations": [],
	"upgrade_notes": []
}`

func TestExtractAndValidateDraft(t *testing.T) {
	t.Run("should parse clean json", func(t *testing.T) {
		draft, err := ExtractAndValidateDraft(validDraftJSON)
		require.NoError(t, err)
		assert.Equal(t, "minor", draft.VersionIncrement)
		require.Len(t, draft.Highlights, 1)
		assert.Equal(t, "Soporte para webhooks", draft.Highlights[0].Title)
	})

	t.Run("should strip markdown fences", func(t *testing.T) {
		raw := "Here you go:\n```json\n" + validDraftJSON + "\n```\nThanks!"
		draft, err := ExtractAndValidateDraft(raw)
		require.NoError(t, err)
		assert.Equal(t, "v1", draft.SchemaVersion)
	})

	t.Run("should repair trailing commas", func(t *testing.T) {
		raw := `{"schema_version": "v1", "version_increment": "none",
			"highlights": [{"type": "fix", "title": "Arregla el parser",}],
			"fixes": [], "docs": [], "breaking_changes": [], "deprecations": [], "upgrade_notes": [],}`

		draft, err := ExtractAndValidateDraft(raw)
		require.NoError(t, err)
		require.Len(t, draft.Highlights, 1)
		assert.Equal(t, "Arregla el parser", draft.Highlights[0].Title)
	})

	t.Run("should pick the json object out of surrounding prose", func(t *testing.T) {
		raw := "The release notes are as follows " + validDraftJSON + " let me know if you need anything else"
		_, err := ExtractAndValidateDraft(raw)
		assert.NoError(t, err)
	})

	t.Run("should fail when the response has no json", func(t *testing.T) {
		_, err := ExtractAndValidateDraft("no json here at all")
		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})

	t.Run("should reject an invalid enum value", func(t *testing.T) {
		raw := `{"schema_version": "v1", "version_increment": "gigantic",
			"highlights": [], "fixes": [], "docs": [], "breaking_changes": [], "deprecations": [], "upgrade_notes": []}`

		_, err := ExtractAndValidateDraft(raw)
		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})

	t.Run("should reject an empty response", func(t *testing.T) {
		_, err := ExtractAndValidateDraft("")
		require.Error(t, err)
		assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
	})
}

func TestExtractJSONObjects(t *testing.T) {
	t.Run("should prefer the largest braced region", func(t *testing.T) {
		raw := `{"a": 1} {"b": {"c": 2}, "d": 3}`
		cands := ExtractJSONObjects(raw)
		require.NotEmpty(t, cands)
		assert.Equal(t, `{"b": {"c": 2}, "d": 3}`, cands[0])
	})

	t.Run("should replace control characters", func(t *testing.T) {
		cands := ExtractJSONObjects("{\"a\":\x01 1}")
		require.NotEmpty(t, cands)
		assert.NotContains(t, cands[0], "\x01")
	})
}

func TestMinimalJSONRepairs(t *testing.T) {
	assert.Equal(t, `{"a": [1,2]}`, MinimalJSONRepairs(`{"a": [1,2,]}`))
	assert.Equal(t, `{"a": "b"}`, MinimalJSONRepairs("{“a”: “b”}"))
}
