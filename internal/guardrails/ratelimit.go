package guardrails

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maticastro/notaprensa/internal/config"
)

// RateLimitResult es la decisión del limitador para una clave.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetInS  int
}

type rateWindow struct {
	WindowStart int64 `json:"window_start"`
	Count       int   `json:"count"`
}

// RateLimiter aplica una ventana fija por clave con estado en disco, una
// clave por archivo. Igual que el breaker, el archivo compartido es lo que
// coordina procesos CLI independientes.
type RateLimiter struct {
	root  string
	nowFn func() time.Time
}

// NewRateLimiter crea un limitador con estado bajo cfg.StateRoot.
func NewRateLimiter(cfg config.RateLimitConfig) (*RateLimiter, error) {
	if err := os.MkdirAll(cfg.StateRoot, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de estado del rate limiter: %w", err)
	}
	return &RateLimiter{root: cfg.StateRoot, nowFn: time.Now}, nil
}

// RateLimitKey construye la clave canónica por PR.
func RateLimitKey(repo string, prNumber int) string {
	return fmt.Sprintf("%s#pr#%d", repo, prNumber)
}

func (rl *RateLimiter) statePath(key string) string {
	return filepath.Join(rl.root, safeKey(key)+".rl.json")
}

func (rl *RateLimiter) load(key string) rateWindow {
	data, err := os.ReadFile(rl.statePath(key))
	if err != nil {
		return rateWindow{}
	}
	var w rateWindow
	if err := json.Unmarshal(data, &w); err != nil {
		return rateWindow{}
	}
	return w
}

// CheckAndUpdate consume un intento para key dentro de una ventana fija de
// windowSeconds con máximo maxAttempts. Si la ventana expiró arranca una
// nueva. Un intento denegado no consume cupo.
func (rl *RateLimiter) CheckAndUpdate(key string, maxAttempts, windowSeconds int) (RateLimitResult, error) {
	now := rl.nowFn().Unix()
	w := rl.load(key)

	if w.WindowStart == 0 || now-w.WindowStart >= int64(windowSeconds) {
		w = rateWindow{WindowStart: now, Count: 0}
	}

	resetIn := int(w.WindowStart + int64(windowSeconds) - now)
	if resetIn < 0 {
		resetIn = 0
	}

	if w.Count >= maxAttempts {
		return RateLimitResult{Allowed: false, Remaining: 0, ResetInS: resetIn}, nil
	}

	w.Count++
	data, err := json.Marshal(w)
	if err != nil {
		return RateLimitResult{}, err
	}
	if err := writeFileAtomic(rl.statePath(key), data); err != nil {
		return RateLimitResult{}, fmt.Errorf("no se pudo persistir la ventana del rate limiter: %w", err)
	}

	return RateLimitResult{Allowed: true, Remaining: maxAttempts - w.Count, ResetInS: resetIn}, nil
}
