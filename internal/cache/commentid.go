package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maticastro/notaprensa/internal/config"
)

// CommentIDStore recuerda el ID del comentario de preview por PR para poder
// editarlo en vez de crear uno nuevo en cada corrida.
type CommentIDStore struct {
	root string
}

type commentRecord struct {
	CommentID int64 `json:"comment_id"`
}

// NewCommentIDStore crea el store bajo cfg.CommentIDRoot.
func NewCommentIDStore(cfg config.CacheConfig) (*CommentIDStore, error) {
	if err := os.MkdirAll(cfg.CommentIDRoot, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de comment IDs: %w", err)
	}
	return &CommentIDStore{root: cfg.CommentIDRoot}, nil
}

func (s *CommentIDStore) path(repo string, prNumber int) string {
	return filepath.Join(s.root, safeKey(fmt.Sprintf("%s#%d", repo, prNumber))+".json")
}

// Load devuelve el ID guardado para el PR, o 0 si no hay registro o está
// corrupto. Un ID perdido solo cuesta un comentario duplicado.
func (s *CommentIDStore) Load(repo string, prNumber int) int64 {
	data, err := os.ReadFile(s.path(repo, prNumber))
	if err != nil {
		return 0
	}
	var rec commentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0
	}
	return rec.CommentID
}

// Save persiste el ID del comentario de preview del PR.
func (s *CommentIDStore) Save(repo string, prNumber int, commentID int64) error {
	data, err := json.Marshal(commentRecord{CommentID: commentID})
	if err != nil {
		return err
	}
	return writeFileAtomic(s.path(repo, prNumber), data)
}

// Delete olvida el ID guardado, por ejemplo cuando GitHub respondió 404 al
// intentar editarlo.
func (s *CommentIDStore) Delete(repo string, prNumber int) {
	_ = os.Remove(s.path(repo, prNumber))
}
