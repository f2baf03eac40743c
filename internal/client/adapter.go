package client

import (
	"context"
	"errors"
	"sync"

	"concept-booster/internal/logger"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

var (
	// ErrBusy is returned when a feature already has a request in flight.
	ErrBusy = errors.New("request already in flight")
	// ErrStale is returned when a reply arrives after a newer request or a reset; the reply is dropped.
	ErrStale = errors.New("reply superseded")
)

// ToastError carries the localized message to show for a failed request.
type ToastError struct {
	Toast string
	Err   error
}

func (e *ToastError) Error() string { return e.Toast + ": " + e.Err.Error() }
func (e *ToastError) Unwrap() error { return e.Err }

// State is what a feature currently shows: the last successful input and result, and the last toast.
type State[Req, Res any] struct {
	Input     Req
	Result    Res
	HasResult bool
	Toast     string
}

// Feature runs one request at a time for a single tutoring feature and applies only the latest reply.
type Feature[Req, Res any] struct {
	kind      services.Feature
	call      func(context.Context, Req) (Res, error)
	onSuccess func(context.Context, Req, Res) error
	log       *logger.Logger

	mu      sync.Mutex
	loading bool
	seq     uint64
	state   State[Req, Res]
}

func NewFeature[Req, Res any](
	kind services.Feature,
	call func(context.Context, Req) (Res, error),
	onSuccess func(context.Context, Req, Res) error,
	log *logger.Logger,
) *Feature[Req, Res] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Feature[Req, Res]{kind: kind, call: call, onSuccess: onSuccess, log: log}
}

// Submit sends req. While it is outstanding further submits fail with ErrBusy.
// On failure the previous state is kept and a *ToastError is returned.
func (f *Feature[Req, Res]) Submit(ctx context.Context, mode models.LanguageMode, req Req) (Res, error) {
	var zero Res

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return zero, ErrBusy
	}
	f.loading = true
	f.seq++
	ticket := f.seq
	f.mu.Unlock()

	res, err := f.call(ctx, req)

	f.mu.Lock()
	if ticket != f.seq {
		f.mu.Unlock()
		f.log.Debug("dropping stale reply", "feature", f.kind.String(), "ticket", ticket)
		return zero, ErrStale
	}
	f.loading = false
	if err != nil {
		toast := Toast(f.kind, mode, err)
		f.state.Toast = toast
		f.mu.Unlock()
		return zero, &ToastError{Toast: toast, Err: err}
	}
	f.state = State[Req, Res]{Input: req, Result: res, HasResult: true}
	f.mu.Unlock()

	if f.onSuccess != nil {
		if err := f.onSuccess(ctx, req, res); err != nil {
			f.log.Warn("post-success hook failed", "feature", f.kind.String(), "error", err)
		}
	}
	return res, nil
}

func (f *Feature[Req, Res]) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *Feature[Req, Res]) State() State[Req, Res] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset clears the feature. A reply still in flight will be dropped.
func (f *Feature[Req, Res]) Reset() {
	f.mu.Lock()
	f.seq++
	f.loading = false
	f.state = State[Req, Res]{}
	f.mu.Unlock()
}
