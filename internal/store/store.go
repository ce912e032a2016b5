// Package store persists whole JSON documents under fixed keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
)

var ErrNotFound = errors.New("document not found")

// Backend stores raw document blobs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Document is a typed view over one key of a Backend. Reads merge the stored
// fields over the defaults; writes always persist the full object.
type Document[T any] struct {
	backend  Backend
	key      string
	defaults func() T
	logger   *zap.Logger

	mu sync.Mutex
}

func NewDocument[T any](backend Backend, key string, defaults func() T, log *zap.Logger) *Document[T] {
	return &Document[T]{
		backend:  backend,
		key:      key,
		defaults: defaults,
		logger:   logger.WithFields(log, zap.String("document", key)),
	}
}

func (d *Document[T]) Key() string { return d.key }

// Load returns the stored document, or the defaults when nothing is stored
// or the stored blob cannot be decoded.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

func (d *Document[T]) Save(ctx context.Context, value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, value)
}

// Reset removes the stored blob and returns the defaults.
func (d *Document[T]) Reset(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.backend.Delete(ctx, d.key); err != nil && !errors.Is(err, ErrNotFound) {
		var zero T
		return zero, fmt.Errorf("delete %s: %w", d.key, err)
	}
	d.logger.Debug("document reset")
	return d.defaults(), nil
}

// Update loads the document, applies fn and persists the result. Nothing is
// written when fn fails.
func (d *Document[T]) Update(ctx context.Context, fn func(*T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.load(ctx)
	if err != nil {
		return value, err
	}
	if err := fn(&value); err != nil {
		return value, err
	}
	if err := d.save(ctx, value); err != nil {
		return value, err
	}
	return value, nil
}

func (d *Document[T]) load(ctx context.Context) (T, error) {
	value := d.defaults()

	data, err := d.backend.Get(ctx, d.key)
	if errors.Is(err, ErrNotFound) {
		return value, nil
	}
	if err != nil {
		return value, fmt.Errorf("read %s: %w", d.key, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		d.logger.Warn("stored document is corrupt, using defaults", zap.Error(err))
		return d.defaults(), nil
	}
	return value, nil
}

func (d *Document[T]) save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.key, err)
	}
	if err := d.backend.Put(ctx, d.key, data); err != nil {
		return fmt.Errorf("write %s: %w", d.key, err)
	}
	d.logger.Debug("document saved", zap.Int("bytes", len(data)))
	return nil
}
