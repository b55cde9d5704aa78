package notes

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/i18n"
	"github.com/maticastro/notaprensa/internal/services"
)

type MockNotesService struct {
	mock.Mock
}

func (m *MockNotesService) GeneratePreview(ctx context.Context, owner, repo string, prNumber int, opts services.GenerateOptions) (*services.GenerateResult, error) {
	args := m.Called(ctx, owner, repo, prNumber, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GenerateResult), args.Error(1)
}

func (m *MockNotesService) HandleComment(ctx context.Context, owner, repo string, prNumber int, commentID int64, dryRun bool) (*services.PublishDecision, error) {
	args := m.Called(ctx, owner, repo, prNumber, commentID, dryRun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PublishDecision), args.Error(1)
}

func setupNotesTest(t *testing.T) (*MockNotesService, ServiceBuilder, *i18n.Translations, *config.Config) {
	mockService := new(MockNotesService)
	builder := func(ctx context.Context) (Service, error) {
		return mockService, nil
	}

	translations, err := i18n.NewTranslations("en", t.TempDir())
	require.NoError(t, err)

	return mockService, builder, translations, &config.Config{}
}

func TestGenerateCommand(t *testing.T) {
	t.Run("should generate a preview and print the markdown", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		result := &services.GenerateResult{
			Key:      "acme/tool#7#abc",
			Markdown: "## Release Notes (Preview)",
			JSONText: `{"schema_version":"1.0"}`,
		}
		mockService.On("GeneratePreview", mock.Anything, "acme", "tool", 7, services.GenerateOptions{PostComment: true}).
			Return(result, nil)

		cmd := NewGenerateCommand(builder).CreateCommand(translations, cfg)
		var out bytes.Buffer
		cmd.Writer = &out

		err := cmd.Run(context.Background(), []string{"generate", "--owner", "acme", "--repo", "tool", "--pr", "7"})

		assert.NoError(t, err)
		assert.Contains(t, out.String(), "## Release Notes (Preview)")
		mockService.AssertExpectations(t)
	})

	t.Run("should print JSON when the json flag is set", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		result := &services.GenerateResult{
			Key:      "acme/tool#7#abc",
			Markdown: "## Release Notes (Preview)",
			JSONText: `{"schema_version":"1.0"}`,
			CacheHit: true,
		}
		mockService.On("GeneratePreview", mock.Anything, "acme", "tool", 7, mock.Anything).
			Return(result, nil)

		cmd := NewGenerateCommand(builder).CreateCommand(translations, cfg)
		var out bytes.Buffer
		cmd.Writer = &out

		err := cmd.Run(context.Background(), []string{"generate", "--owner", "acme", "--repo", "tool", "--pr", "7", "--json"})

		assert.NoError(t, err)
		assert.Contains(t, out.String(), `"schema_version":"1.0"`)
		assert.NotContains(t, out.String(), "Preview)")
		mockService.AssertExpectations(t)
	})

	t.Run("should not post a comment when cache-only is set", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		result := &services.GenerateResult{Key: "k", Markdown: "md", CacheHit: true}
		mockService.On("GeneratePreview", mock.Anything, "acme", "tool", 7,
			services.GenerateOptions{CacheOnly: true, PostComment: false}).
			Return(result, nil)

		cmd := NewGenerateCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"generate", "--owner", "acme", "--repo", "tool", "--pr", "7", "--cache-only"})

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("should fail when the service builder fails", func(t *testing.T) {
		_, _, translations, cfg := setupNotesTest(t)

		builder := func(ctx context.Context) (Service, error) {
			return nil, fmt.Errorf("sin token")
		}
		cmd := NewGenerateCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"generate", "--owner", "acme", "--repo", "tool", "--pr", "7"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sin token")
	})

	t.Run("should propagate pipeline errors", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		mockService.On("GeneratePreview", mock.Anything, "acme", "tool", 7, mock.Anything).
			Return(nil, fmt.Errorf("modelo caído"))

		cmd := NewGenerateCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"generate", "--owner", "acme", "--repo", "tool", "--pr", "7"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "modelo caído")
		mockService.AssertExpectations(t)
	})
}

func TestHandleCommentCommand(t *testing.T) {
	t.Run("should report a published comment", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		decision := &services.PublishDecision{
			Action:    services.DecisionPublished,
			CommentID: 200,
			URL:       "https://github.com/acme/tool/pull/7#issuecomment-200",
		}
		mockService.On("HandleComment", mock.Anything, "acme", "tool", 7, int64(55), false).
			Return(decision, nil)

		cmd := NewHandleCommentCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"handle-comment", "--owner", "acme", "--repo", "tool", "--pr", "7", "--comment-id", "55"})

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("should pass the dry-run flag through", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		decision := &services.PublishDecision{Action: services.DecisionDryRun}
		mockService.On("HandleComment", mock.Anything, "acme", "tool", 7, int64(55), true).
			Return(decision, nil)

		cmd := NewHandleCommentCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"handle-comment", "--owner", "acme", "--repo", "tool", "--pr", "7", "--comment-id", "55", "--dry-run"})

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
	})

	t.Run("should not fail when the comment has no command", func(t *testing.T) {
		mockService, builder, translations, cfg := setupNotesTest(t)

		decision := &services.PublishDecision{Action: services.DecisionNone}
		mockService.On("HandleComment", mock.Anything, "acme", "tool", 7, int64(55), false).
			Return(decision, nil)

		cmd := NewHandleCommentCommand(builder).CreateCommand(translations, cfg)
		cmd.Writer = &bytes.Buffer{}

		err := cmd.Run(context.Background(), []string{"handle-comment", "--owner", "acme", "--repo", "tool", "--pr", "7", "--comment-id", "55"})

		assert.NoError(t, err)
		mockService.AssertExpectations(t)
	})
}
