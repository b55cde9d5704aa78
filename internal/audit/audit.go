// Package audit registra cada intento de publicación en un log append-only.
// El log responde quién intentó publicar qué y si el guardrail lo dejó pasar.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record es una entrada del log de auditoría.
type Record struct {
	TS      string `json:"ts"`
	Repo    string `json:"repo"`
	PR      int    `json:"pr"`
	Actor   string `json:"actor"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Log escribe registros de auditoría como JSONL, un archivo por repo.
type Log struct {
	root string

	mu    sync.Mutex
	nowFn func() time.Time
}

// NewLog crea el log bajo root.
func NewLog(root string) (*Log, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de auditoría: %w", err)
	}
	return &Log{root: root, nowFn: time.Now}, nil
}

// Append agrega un registro. A diferencia de las métricas, una falla acá se
// reporta: el log de auditoría es parte del contrato de publicación.
func (l *Log) Append(rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.TS == "" {
		rec.TS = l.nowFn().UTC().Format(time.RFC3339)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	safe := filepath.Join(l.root, sanitize(rec.Repo)+".audit.jsonl")
	f, err := os.OpenFile(safe, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("no se pudo abrir el log de auditoría: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("no se pudo escribir el registro de auditoría: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '/' || r == os.PathSeparator {
			out = append(out, '#')
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
