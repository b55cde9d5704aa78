package ports

import "context"

// NotesGenerator es el proveedor de IA que genera el borrador de release
// notes como JSON crudo a partir de un prompt ya armado.
type NotesGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
