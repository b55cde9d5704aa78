// Package metrics emite eventos operacionales como JSONL local, un archivo
// por día. Sin daemon ni agregación: los archivos se inspeccionan con jq.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maticastro/notaprensa/internal/config"
)

type event struct {
	TS    string            `json:"ts"`
	Name  string            `json:"name"`
	Value float64           `json:"value"`
	Tags  map[string]string `json:"tags,omitempty"`
}

// Sink escribe eventos de métricas. Deshabilitado es un no-op silencioso:
// las métricas jamás interrumpen el pipeline.
type Sink struct {
	root    string
	enabled bool

	mu    sync.Mutex
	nowFn func() time.Time
}

// NewSink crea el sink bajo cfg.Root.
func NewSink(cfg config.MetricsConfig) (*Sink, error) {
	if cfg.Enabled {
		if err := os.MkdirAll(cfg.Root, 0755); err != nil {
			return nil, fmt.Errorf("no se pudo crear el directorio de métricas: %w", err)
		}
	}
	return &Sink{root: cfg.Root, enabled: cfg.Enabled, nowFn: time.Now}, nil
}

// Incr registra un contador con valor 1.
func (s *Sink) Incr(name string, tags map[string]string) {
	s.emit(name, 1, tags)
}

// Observe registra un valor arbitrario, por ejemplo una duración en ms.
func (s *Sink) Observe(name string, value float64, tags map[string]string) {
	s.emit(name, value, tags)
}

// Timer devuelve una función que al invocarse registra los milisegundos
// transcurridos desde la llamada a Timer.
func (s *Sink) Timer(name string, tags map[string]string) func() {
	start := s.nowFn()
	return func() {
		s.Observe(name, float64(s.nowFn().Sub(start).Milliseconds()), tags)
	}
}

func (s *Sink) emit(name string, value float64, tags map[string]string) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn().UTC()
	line, err := json.Marshal(event{
		TS:    now.Format(time.RFC3339),
		Name:  name,
		Value: value,
		Tags:  tags,
	})
	if err != nil {
		return
	}

	path := filepath.Join(s.root, "metrics-"+now.Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.Write(append(line, '\n'))
}
