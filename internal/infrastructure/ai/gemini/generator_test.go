package gemini

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/maticastro/notaprensa/internal/domain/errors"
)

type mockModel struct {
	mock.Mock
}

func (m *mockModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, genai.Text(t))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}

func TestGenerateJSON(t *testing.T) {
	t.Run("should return the raw response text", func(t *testing.T) {
		model := new(mockModel)
		model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(textResponse(`{"schema_`, `version": "1.0"}`), nil)

		gen := NewNotesGeneratorWithModel(model, nil)
		out, err := gen.GenerateJSON(context.Background(), "dame las notas")

		require.NoError(t, err)
		assert.Equal(t, `{"schema_version": "1.0"}`, out)
		model.AssertExpectations(t)
	})

	t.Run("should fail with unknown code when the response is empty", func(t *testing.T) {
		model := new(mockModel)
		model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(&genai.GenerateContentResponse{}, nil)

		gen := NewNotesGeneratorWithModel(model, nil)
		_, err := gen.GenerateJSON(context.Background(), "hola")

		require.Error(t, err)
		assert.Equal(t, errors.CodeUnknown, errors.CodeOf(err))
	})

	t.Run("should classify api errors by status code", func(t *testing.T) {
		model := new(mockModel)
		model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(nil, &googleapi.Error{Code: 429, Message: "quota"})

		gen := NewNotesGeneratorWithModel(model, nil)
		_, err := gen.GenerateJSON(context.Background(), "hola")

		require.Error(t, err)
		assert.Equal(t, errors.CodeRateLimit, errors.CodeOf(err))
	})

	t.Run("should classify deadline exceeded as timeout", func(t *testing.T) {
		model := new(mockModel)
		model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(nil, context.DeadlineExceeded)

		gen := NewNotesGeneratorWithModel(model, nil)
		_, err := gen.GenerateJSON(context.Background(), "hola")

		require.Error(t, err)
		assert.Equal(t, errors.CodeTimeout, errors.CodeOf(err))
	})

	t.Run("should classify other errors as network", func(t *testing.T) {
		model := new(mockModel)
		model.On("GenerateContent", mock.Anything, mock.Anything).
			Return(nil, stderrors.New("connection reset"))

		gen := NewNotesGeneratorWithModel(model, nil)
		_, err := gen.GenerateJSON(context.Background(), "hola")

		require.Error(t, err)
		assert.Equal(t, errors.CodeNetwork, errors.CodeOf(err))
	})
}

func TestFlattenResponse(t *testing.T) {
	t.Run("should skip candidates without content", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("ok")}}},
			},
		}
		assert.Equal(t, "ok", flattenResponse(resp))
	})

	t.Run("should return empty string for nil response", func(t *testing.T) {
		assert.Equal(t, "", flattenResponse(nil))
	})
}
