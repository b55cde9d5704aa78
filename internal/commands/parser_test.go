package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReleaseNotesCommand(t *testing.T) {
	t.Run("should match the exact command", func(t *testing.T) {
		cmd, ok := ParseReleaseNotesCommand("/release-notes publish")
		require.True(t, ok)
		assert.Equal(t, CommandPublish, cmd.Name)
	})

	t.Run("should match case insensitively with surrounding whitespace", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("   /Release-Notes PUBLISH  \r")
		assert.True(t, ok)
	})

	t.Run("should match inside a longer comment", func(t *testing.T) {
		body := "Se ve bien!\n\n/release-notes publish\n\ngracias"
		_, ok := ParseReleaseNotesCommand(body)
		assert.True(t, ok)
	})

	t.Run("should ignore the command inside a code fence", func(t *testing.T) {
		body := "```\n/release-notes publish\n```"
		_, ok := ParseReleaseNotesCommand(body)
		assert.False(t, ok)
	})

	t.Run("should ignore block quotes", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("> /release-notes publish")
		assert.False(t, ok)
	})

	t.Run("should ignore inline code", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("usá `/release-notes publish` para publicar")
		assert.False(t, ok)
	})

	t.Run("should reject unknown subcommands", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("/release-notes destroy")
		assert.False(t, ok)
	})

	t.Run("should reject lines with extra words", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("/release-notes publish now please")
		assert.False(t, ok)
	})

	t.Run("should reject an empty body", func(t *testing.T) {
		_, ok := ParseReleaseNotesCommand("")
		assert.False(t, ok)
	})
}

func TestAuthorizer(t *testing.T) {
	t.Run("should allow default roles", func(t *testing.T) {
		a := NewAuthorizer(nil)
		assert.True(t, a.IsAuthorized("OWNER"))
		assert.True(t, a.IsAuthorized("member"))
		assert.True(t, a.IsAuthorized(" Collaborator "))
		assert.False(t, a.IsAuthorized("CONTRIBUTOR"))
		assert.False(t, a.IsAuthorized("NONE"))
		assert.False(t, a.IsAuthorized(""))
	})

	t.Run("should honor a custom role list", func(t *testing.T) {
		a := NewAuthorizer([]string{"owner"})
		assert.True(t, a.IsAuthorized("OWNER"))
		assert.False(t, a.IsAuthorized("MEMBER"))
	})

	t.Run("should explain the decision", func(t *testing.T) {
		a := NewAuthorizer(nil)
		assert.Equal(t, "Authorized: OWNER", a.DecisionReason("owner"))
		assert.Equal(t, "No association provided", a.DecisionReason(""))
		assert.Contains(t, a.DecisionReason("CONTRIBUTOR"), "Not authorized: CONTRIBUTOR")
		assert.Contains(t, a.DecisionReason("CONTRIBUTOR"), "COLLABORATOR, MEMBER, OWNER")
	})
}
