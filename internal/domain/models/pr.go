package models

import "strings"

type (
	// PRMetadata contiene la información del PR necesaria para el pipeline.
	PRMetadata struct {
		Number            int
		Title             string
		Body              string
		Author            string
		Labels            []string
		State             string
		AuthorAssociation string
		IsDraft           bool
		BaseRef           string
		HeadRef           string
		BaseSHA           string
		HeadSHA           string
		HTMLURL           string
	}

	// CommitInfo representa un commit incluido en el PR.
	CommitInfo struct {
		SHA         string
		AuthorLogin string
		Message     string // primera línea
		RawMessage  string // mensaje completo
	}

	// PRContext agrupa metadata y commits de un PR para armar prompts.
	PRContext struct {
		Repo    string // formato owner/repo
		PR      PRMetadata
		Commits []CommitInfo
	}
)

// FirstLine extrae la primera línea de un mensaje de commit.
func FirstLine(message string) string {
	if message == "" {
		return ""
	}
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}

// ShortSHA devuelve los primeros 8 caracteres del SHA.
func ShortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
