package guardrails

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maticastro/notaprensa/internal/config"
)

// BreakerState representa el estado del circuit breaker.
type BreakerState string

const (
	StateClosed   BreakerState = "CLOSED"
	StateOpen     BreakerState = "OPEN"
	StateHalfOpen BreakerState = "HALF_OPEN"
)

// breakerRecord es la forma persistida en disco. Varios procesos comparten el
// mismo archivo, por eso cada transición se escribe con rename atómico.
type breakerRecord struct {
	State         string `json:"state"`
	Failures      int    `json:"failures"`
	OpenedAt      int64  `json:"opened_at"`
	HalfOpenCalls int    `json:"half_open_calls"`
}

// CircuitBreaker protege una dependencia externa con el ciclo clásico
// CLOSED -> OPEN -> HALF_OPEN -> CLOSED. El estado vive en un archivo JSON
// para que invocaciones CLI independientes compartan la misma visión.
//
// La transición OPEN -> HALF_OPEN es perezosa: ocurre dentro de Allow cuando
// ya pasó el tiempo de recuperación, no hay ningún timer de fondo.
type CircuitBreaker struct {
	name string
	cfg  config.BreakerConfig
	root string

	// nowFn se inyecta en tests para avanzar el reloj sin dormir.
	nowFn func() time.Time
}

// NewCircuitBreaker crea un breaker con estado en cfg.StateRoot/<name>.cb.json.
func NewCircuitBreaker(name string, cfg config.BreakerConfig) (*CircuitBreaker, error) {
	if err := os.MkdirAll(cfg.StateRoot, 0755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de estado del breaker: %w", err)
	}
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg,
		root:  cfg.StateRoot,
		nowFn: time.Now,
	}, nil
}

func (cb *CircuitBreaker) statePath() string {
	return filepath.Join(cb.root, safeKey(cb.name)+".cb.json")
}

// load devuelve el estado persistido. Cualquier error de lectura (archivo
// ausente, JSON corrupto) degrada a CLOSED limpio: un estado ilegible jamás
// bloquea la operación.
func (cb *CircuitBreaker) load() breakerRecord {
	clean := breakerRecord{State: string(StateClosed)}

	data, err := os.ReadFile(cb.statePath())
	if err != nil {
		return clean
	}
	var rec breakerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return clean
	}
	switch BreakerState(rec.State) {
	case StateClosed, StateOpen, StateHalfOpen:
		return rec
	default:
		return clean
	}
}

func (cb *CircuitBreaker) save(rec breakerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return writeFileAtomic(cb.statePath(), data)
}

// State devuelve el estado actual sin mutarlo.
func (cb *CircuitBreaker) State() BreakerState {
	return BreakerState(cb.load().State)
}

// Allow decide si la próxima llamada puede ejecutarse.
//
//   - CLOSED: siempre true.
//   - OPEN: false hasta que pase RecoveryTimeoutS; entonces transiciona a
//     HALF_OPEN y permite la sonda.
//   - HALF_OPEN: true mientras queden sondas dentro de HalfOpenMaxCalls.
//
// Las escrituras de estado son best-effort: una transición perdida solo
// retrasa la próxima sonda, nunca produce un estado inconsistente.
func (cb *CircuitBreaker) Allow() bool {
	rec := cb.load()
	now := cb.nowFn().Unix()

	switch BreakerState(rec.State) {
	case StateClosed:
		return true

	case StateOpen:
		if now-rec.OpenedAt < int64(cb.cfg.RecoveryTimeSeconds) {
			return false
		}
		rec.State = string(StateHalfOpen)
		rec.HalfOpenCalls = 1
		_ = cb.save(rec)
		return true

	case StateHalfOpen:
		if rec.HalfOpenCalls >= cb.cfg.HalfOpenMaxCalls {
			return false
		}
		rec.HalfOpenCalls++
		_ = cb.save(rec)
		return true
	}
	return true
}

// RecordSuccess registra un resultado exitoso. En HALF_OPEN la sonda exitosa
// cierra el circuito; en CLOSED resetea el contador de fallas.
func (cb *CircuitBreaker) RecordSuccess() {
	rec := cb.load()
	rec.State = string(StateClosed)
	rec.Failures = 0
	rec.OpenedAt = 0
	rec.HalfOpenCalls = 0
	_ = cb.save(rec)
}

// RecordFailure registra una falla. En HALF_OPEN una sola falla reabre el
// circuito; en CLOSED el circuito abre al alcanzar FailureThreshold.
func (cb *CircuitBreaker) RecordFailure() {
	rec := cb.load()
	now := cb.nowFn().Unix()

	if BreakerState(rec.State) == StateHalfOpen {
		rec.State = string(StateOpen)
		rec.OpenedAt = now
		rec.HalfOpenCalls = 0
		_ = cb.save(rec)
		return
	}

	rec.Failures++
	if rec.Failures >= cb.cfg.FailureThreshold {
		rec.State = string(StateOpen)
		rec.OpenedAt = now
		rec.HalfOpenCalls = 0
	}
	_ = cb.save(rec)
}
