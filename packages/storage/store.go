// Package storage reads and writes the application's localStorage through a
// page that can evaluate scripts.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/stripcheck/packages/browser"
	"github.com/abdul-hamid-achik/stripcheck/packages/movement"
	"github.com/tidwall/gjson"
)

const (
	clearScript = `([movements, bookings]) => {
		localStorage.removeItem(movements);
		localStorage.removeItem(bookings);
	}`
	setScript = `([key, value]) => { localStorage.setItem(key, value); }`
	getScript = `(key) => localStorage.getItem(key)`
)

const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultTimeout      = 3 * time.Second
)

// Evaluator runs a script in the page. playwright.Page satisfies it.
type Evaluator interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
}

// Keys names the localStorage entries the application owns
type Keys struct {
	Movements string
	Bookings  string
}

// Store gives typed access to the movements envelope
type Store struct {
	page    Evaluator
	keys    Keys
	poll    time.Duration
	timeout time.Duration
}

// Option configures a Store
type Option func(*Store)

// WithPollInterval sets how often WaitFor re-reads storage
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.poll = d
		}
	}
}

// WithTimeout bounds how long WaitFor keeps polling
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Store over page
func New(page Evaluator, keys Keys, opts ...Option) *Store {
	s := &Store{
		page:    page,
		keys:    keys,
		poll:    DefaultPollInterval,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clear removes both the movements and bookings entries
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Evaluate(clearScript, []string{s.keys.Movements, s.keys.Bookings}); err != nil {
		return browser.Classify("clearing storage", s.keys.Movements+", "+s.keys.Bookings, err)
	}
	return nil
}

// Seed validates env and writes it under the movements key
func (s *Store) Seed(ctx context.Context, env *movement.Envelope) error {
	if err := env.Validate(); err != nil {
		return fmt.Errorf("seed envelope: %w", err)
	}
	raw, err := env.Marshal()
	if err != nil {
		return err
	}
	return s.SeedRaw(ctx, raw)
}

// SeedRaw writes raw under the movements key without validation
func (s *Store) SeedRaw(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Evaluate(setScript, []string{s.keys.Movements, raw}); err != nil {
		return browser.Classify("writing", s.keys.Movements, err)
	}
	return nil
}

// Raw returns the stored envelope text, or "" when the key is unset
func (s *Store) Raw(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := s.page.Evaluate(getScript, s.keys.Movements)
	if err != nil {
		return "", browser.Classify("reading", s.keys.Movements, err)
	}
	switch raw := v.(type) {
	case nil:
		return "", nil
	case string:
		return raw, nil
	default:
		return "", fmt.Errorf("reading %s: unexpected %T", s.keys.Movements, v)
	}
}

// Movements returns the stored movements array. A missing envelope yields a
// result for which Exists() is false.
func (s *Store) Movements(ctx context.Context) (gjson.Result, error) {
	raw, err := s.Raw(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Get(raw, "movements"), nil
}

// Movement returns the stored movement with the given id
func (s *Store) Movement(ctx context.Context, id int) (gjson.Result, error) {
	movements, err := s.Movements(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	return ByID(movements, id), nil
}

// ByID selects the movement with the given id from a movements array
func ByID(movements gjson.Result, id int) gjson.Result {
	for _, m := range movements.Array() {
		if int(m.Get("id").Int()) == id {
			return m
		}
	}
	return gjson.Result{}
}

// WaitFor polls storage until cond holds for the movements array or the
// timeout elapses. It returns the last movements read and whether cond held.
// Only read failures and context cancellation are errors.
func (s *Store) WaitFor(ctx context.Context, cond func(gjson.Result) bool) (gjson.Result, bool, error) {
	deadline := time.NewTimer(s.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		movements, err := s.Movements(ctx)
		if err != nil {
			return movements, false, err
		}
		if cond(movements) {
			return movements, true, nil
		}

		select {
		case <-ctx.Done():
			return movements, false, ctx.Err()
		case <-deadline.C:
			return movements, false, nil
		case <-ticker.C:
		}
	}
}
