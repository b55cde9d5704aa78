package guardrails

import (
	"context"
	"fmt"
	"time"

	"github.com/maticastro/notaprensa/internal/domain/errors"
)

// RetryOptions controla la política de reintentos.
type RetryOptions struct {
	MaxAttempts int
	Backoff     time.Duration
	RetryOn     []errors.Code

	// Classify traduce un error a un código de pipeline. Si es nil se usa
	// errors.CodeOf.
	Classify func(error) errors.Code
}

// Retry ejecuta fn reintentando con backoff exponencial (Backoff, 2*Backoff,
// 4*Backoff, ...) solo cuando el error clasifica en RetryOn. Errores no
// retriables y el último intento devuelven el error original sin envolver.
func Retry[T any](ctx context.Context, opts RetryOptions, fn func() (T, error)) (T, error) {
	var zero T

	classify := opts.Classify
	if classify == nil {
		classify = errors.CodeOf
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}

	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt+1 >= opts.MaxAttempts || !codeIn(classify(err), opts.RetryOn) {
			return zero, err
		}

		delay := opts.Backoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return zero, errors.Wrap(errors.CodeTimeout, "reintento cancelado por el contexto", ctx.Err())
		case <-time.After(delay):
		}
	}
}

func codeIn(code errors.Code, set []errors.Code) bool {
	for _, c := range set {
		if c == code {
			return true
		}
	}
	return false
}

// Watchdog ejecuta fn midiendo su tiempo de pared. Si la ejecución supera
// maxRuntime, invoca onTimeout (si no es nil) y devuelve un error TIMEOUT.
//
// La detección es post-hoc: fn ya terminó cuando el watchdog decide. No
// cancela trabajo en curso, marca como fallida una operación que tardó
// demasiado para que los guardrails superiores reaccionen.
func Watchdog[T any](maxRuntime time.Duration, onTimeout func(), fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if elapsed > maxRuntime {
		if onTimeout != nil {
			onTimeout()
		}
		var zero T
		msg := fmt.Sprintf("la operación tardó %.1fs, máximo permitido %.1fs", elapsed.Seconds(), maxRuntime.Seconds())
		if err != nil {
			return zero, errors.Wrap(errors.CodeTimeout, msg, err)
		}
		return zero, errors.New(errors.CodeTimeout, msg)
	}
	return result, err
}
