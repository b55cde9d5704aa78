// Package gemini implementa el generador de release notes sobre la API de
// Gemini, pidiendo salida JSON estricta.
package gemini

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/ports"
	"github.com/maticastro/notaprensa/internal/i18n"
)

var _ ports.NotesGenerator = (*NotesGenerator)(nil)

// GenerativeModel es la porción del modelo de genai que usa el generador.
type GenerativeModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type NotesGenerator struct {
	client *genai.Client
	model  GenerativeModel
	trans  *i18n.Translations
}

// NewNotesGenerator crea el generador con el modelo configurado. El MIME type
// de respuesta se fija en JSON para que el modelo no devuelva prosa.
func NewNotesGenerator(ctx context.Context, cfg *config.Config, trans *i18n.Translations) (*NotesGenerator, error) {
	if cfg.Gemini.APIKey == "" {
		msg := trans.GetMessage("error_missing_api_key", 0, nil)
		return nil, fmt.Errorf("%s", msg)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("error al crear el cliente de Gemini: %w", err)
	}

	model := client.GenerativeModel(cfg.Gemini.Model)
	model.ResponseMIMEType = "application/json"

	return &NotesGenerator{client: client, model: model, trans: trans}, nil
}

// NewNotesGeneratorWithModel inyecta el modelo directamente, para tests.
func NewNotesGeneratorWithModel(model GenerativeModel, trans *i18n.Translations) *NotesGenerator {
	return &NotesGenerator{model: model, trans: trans}
}

// GenerateJSON envía el prompt y devuelve el texto crudo de la respuesta.
// La validación del JSON es responsabilidad del sanitizador, acá solo se
// clasifica el error de transporte.
func (g *NotesGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGenErr(err)
	}

	text := flattenResponse(resp)
	if text == "" {
		return "", errors.New(errors.CodeUnknown, "el modelo devolvió una respuesta vacía")
	}
	return text, nil
}

// Close libera el cliente subyacente.
func (g *NotesGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func flattenResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func classifyGenErr(err error) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return errors.Wrap(errors.FromStatus(apiErr.Code), "error del modelo", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.CodeTimeout, "el modelo no respondió a tiempo", err)
	}
	return errors.Wrap(errors.CodeNetwork, "error al invocar el modelo", err)
}
