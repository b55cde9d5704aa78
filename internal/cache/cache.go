// Package cache persiste pares draft/markdown ya generados para que re-runs
// sobre el mismo head SHA no vuelvan a llamar al modelo.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maticastro/notaprensa/internal/config"
	"github.com/maticastro/notaprensa/internal/domain/errors"
	"github.com/maticastro/notaprensa/internal/domain/models"
)

// Entry es lo que devuelve un hit de caché: el draft estructurado y el
// markdown renderizado que se publicó o se va a publicar.
type Entry struct {
	Draft    models.NotesDraft
	Markdown string
}

// IdempotentCache guarda cada entrada como dos archivos hermanos,
// <key>.json y <key>.md. Una entrada solo es válida si ambos existen y el
// JSON parsea; cualquier otra cosa cuenta como miss.
type IdempotentCache struct {
	root    string
	enabled bool
}

// NewIdempotentCache crea la caché bajo cfg.Root.
func NewIdempotentCache(cfg config.CacheConfig) (*IdempotentCache, error) {
	if err := os.MkdirAll(cfg.Root, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de caché: %w", err)
	}
	return &IdempotentCache{root: cfg.Root, enabled: cfg.Enabled}, nil
}

// KeyFor construye la clave canónica de una entrada. Incluye el head SHA:
// un push nuevo al PR invalida naturalmente la entrada anterior. Falla con
// VALIDATION si falta algún componente; una clave parcial cachearía
// resultados especulativos que sobrevivirían a pushes nuevos.
func KeyFor(repo string, prNumber int, headSHA string) (string, error) {
	if repo == "" {
		return "", errors.New(errors.CodeValidation, "no se puede derivar la clave de caché: repo vacío")
	}
	if prNumber <= 0 {
		return "", errors.New(errors.CodeValidation, fmt.Sprintf("no se puede derivar la clave de caché: número de PR inválido %d", prNumber))
	}
	if headSHA == "" {
		return "", errors.New(errors.CodeValidation, "no se puede derivar la clave de caché: head SHA vacío")
	}
	return fmt.Sprintf("%s#%d#%s", repo, prNumber, headSHA), nil
}

func (c *IdempotentCache) paths(key string) (jsonPath, mdPath string) {
	safe := safeKey(key)
	return filepath.Join(c.root, safe+".json"), filepath.Join(c.root, safe+".md")
}

// Get busca una entrada. Un par incompleto o corrupto se limpia y se reporta
// como miss, así el próximo Put parte de cero.
func (c *IdempotentCache) Get(key string) (*Entry, bool) {
	if !c.enabled {
		return nil, false
	}

	jsonPath, mdPath := c.paths(key)

	rawJSON, err := os.ReadFile(jsonPath)
	if err != nil {
		c.removePair(jsonPath, mdPath)
		return nil, false
	}
	rawMD, err := os.ReadFile(mdPath)
	if err != nil {
		c.removePair(jsonPath, mdPath)
		return nil, false
	}

	var draft models.NotesDraft
	if err := json.Unmarshal(rawJSON, &draft); err != nil {
		c.removePair(jsonPath, mdPath)
		return nil, false
	}

	return &Entry{Draft: draft, Markdown: string(rawMD)}, true
}

// Put persiste la entrada. Cada archivo se escribe con rename atómico; el
// markdown va primero para que un crash entre ambos deje un par incompleto
// que Get trata como miss.
func (c *IdempotentCache) Put(key string, entry Entry) error {
	if !c.enabled {
		return nil
	}

	jsonPath, mdPath := c.paths(key)

	data, err := json.MarshalIndent(entry.Draft, "", "  ")
	if err != nil {
		return fmt.Errorf("no se pudo serializar el draft: %w", err)
	}

	if err := writeFileAtomic(mdPath, []byte(entry.Markdown)); err != nil {
		return fmt.Errorf("no se pudo escribir el markdown cacheado: %w", err)
	}
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return fmt.Errorf("no se pudo escribir el draft cacheado: %w", err)
	}
	return nil
}

// Invalidate borra la entrada si existe.
func (c *IdempotentCache) Invalidate(key string) {
	jsonPath, mdPath := c.paths(key)
	c.removePair(jsonPath, mdPath)
}

func (c *IdempotentCache) removePair(jsonPath, mdPath string) {
	_ = os.Remove(jsonPath)
	_ = os.Remove(mdPath)
}

func safeKey(s string) string {
	replaced := strings.ReplaceAll(s, "/", "#")
	return strings.ReplaceAll(replaced, string(os.PathSeparator), "#")
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
