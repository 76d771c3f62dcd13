// Package resource tracks the single document or video currently under
// discussion and resolves the time-limited URL used to display it.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"github.com/ethanbaker/docchat/pkg/store"
	"go.uber.org/zap"
)

// Kind is the type of a bound resource
type Kind string

const (
	KindDocument Kind = "document"
	KindVideo    Kind = "video"
)

// Binding identifies the resource under discussion. Two bindings refer to the
// same resource only if their storage keys are equal.
type Binding struct {
	DisplayName string `yaml:"display_name"`
	StorageKey  string `yaml:"storage_key"`
	Kind        Kind   `yaml:"kind"`
	AccessURL   string `yaml:"access_url,omitempty"` // empty until resolved
}

// IsZero reports whether b is the empty (unbound) binding
func (b Binding) IsZero() bool {
	return b.StorageKey == ""
}

// SameResource reports whether b and other identify the same stored resource
func (b Binding) SameResource(other Binding) bool {
	return b.StorageKey == other.StorageKey
}

// Resolver looks up the access URL of a stored document
type Resolver interface {
	GetDocument(ctx context.Context, filename string) (*sdk.DocumentURL, error)
}

// Listener is called after the binding changes. previous or current is the
// zero Binding when nothing was or is bound.
type Listener func(ctx context.Context, previous, current Binding)

// Binder owns the active binding and its durable identity. Only Binder writes
// the binding.
type Binder struct {
	store    store.Store
	resolver Resolver
	logger   *zap.Logger

	mu        sync.RWMutex
	current   Binding
	listeners []Listener
}

// NewBinder creates an unbound Binder
func NewBinder(s store.Store, resolver Resolver, logger *zap.Logger) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binder{
		store:    s,
		resolver: resolver,
		logger:   logger.Named("resource"),
	}
}

// Subscribe registers a listener for binding changes
func (b *Binder) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Current returns the active binding
func (b *Binder) Current() (Binding, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current, !b.current.IsZero()
}

// Bind replaces any existing binding and persists the new identity. Listeners
// are notified on every call, including a re-bind of the same storage key.
func (b *Binder) Bind(ctx context.Context, displayName, storageKey string, kind Kind) (Binding, error) {
	displayName = strings.TrimSpace(displayName)
	storageKey = strings.TrimSpace(storageKey)
	if displayName == "" || storageKey == "" {
		return Binding{}, errs.Validation("resource name and storage key required")
	}
	if kind == "" {
		kind = KindDocument
	}

	next := Binding{DisplayName: displayName, StorageKey: storageKey, Kind: kind}
	if kind == KindVideo {
		next.AccessURL = EmbedURL(storageKey)
	}

	b.mu.RLock()
	previous := b.current
	b.mu.RUnlock()

	if err := b.persist(ctx, next); err != nil {
		b.rollback(ctx, previous)
		return Binding{}, fmt.Errorf("failed to persist binding: %w", err)
	}

	b.mu.Lock()
	b.current = next
	b.mu.Unlock()

	b.logger.Info("bound resource", zap.String("name", displayName), zap.String("kind", string(kind)))
	b.notify(ctx, previous, next)
	return next, nil
}

// ResolveAccessURL fetches a fresh access URL for the bound resource. A
// failure leaves the identity bound and returns the error for display.
func (b *Binder) ResolveAccessURL(ctx context.Context) (string, error) {
	current, ok := b.Current()
	if !ok {
		return "", errs.ErrNotBound
	}

	if current.Kind == KindVideo {
		return EmbedURL(current.StorageKey), nil
	}

	doc, err := b.resolver.GetDocument(ctx, current.DisplayName)
	if err != nil {
		b.logger.Warn("could not resolve access url", zap.String("name", current.DisplayName), zap.Error(err))
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The binding may have moved on while the request was in flight
	if b.current.StorageKey != current.StorageKey {
		return "", errs.ErrStale
	}
	b.current.AccessURL = doc.PresignedURL

	return doc.PresignedURL, nil
}

// Clear removes the binding and its persisted identity
func (b *Binder) Clear(ctx context.Context) {
	if err := b.store.Delete(ctx, store.KeyResourceName, store.KeyResourceKey, store.KeyResourceKind); err != nil {
		b.logger.Error("failed to remove persisted binding", zap.Error(err))
	}

	b.mu.Lock()
	previous := b.current
	b.current = Binding{}
	b.mu.Unlock()

	if !previous.IsZero() {
		b.logger.Info("cleared resource", zap.String("name", previous.DisplayName))
	}
	b.notify(ctx, previous, Binding{})
}

// Restore loads the persisted identity without contacting the server. An
// incomplete or unreadable identity leaves the binder unbound.
func (b *Binder) Restore(ctx context.Context) (Binding, bool) {
	values := make(map[string]string, 3)
	for _, key := range []string{store.KeyResourceName, store.KeyResourceKey, store.KeyResourceKind} {
		v, err := b.store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, errs.ErrNotFound) {
				b.logger.Warn("could not read persisted binding", zap.String("key", key), zap.Error(err))
			}
			continue
		}
		values[key] = v
	}

	restored := Binding{
		DisplayName: values[store.KeyResourceName],
		StorageKey:  values[store.KeyResourceKey],
		Kind:        Kind(values[store.KeyResourceKind]),
	}
	if restored.DisplayName == "" || restored.StorageKey == "" {
		return Binding{}, false
	}

	switch restored.Kind {
	case KindVideo:
		restored.AccessURL = EmbedURL(restored.StorageKey)
	case KindDocument:
	default:
		restored.Kind = KindDocument
	}

	b.mu.Lock()
	b.current = restored
	b.mu.Unlock()

	return restored, true
}

func (b *Binder) persist(ctx context.Context, binding Binding) error {
	if err := b.store.Set(ctx, store.KeyResourceName, binding.DisplayName); err != nil {
		return err
	}
	if err := b.store.Set(ctx, store.KeyResourceKey, binding.StorageKey); err != nil {
		return err
	}
	return b.store.Set(ctx, store.KeyResourceKind, string(binding.Kind))
}

// rollback restores the persisted identity of previous after a failed write
func (b *Binder) rollback(ctx context.Context, previous Binding) {
	var err error
	if previous.IsZero() {
		err = b.store.Delete(ctx, store.KeyResourceName, store.KeyResourceKey, store.KeyResourceKind)
	} else {
		err = b.persist(ctx, previous)
	}
	if err != nil {
		b.logger.Error("failed to roll back persisted binding", zap.Error(err))
	}
}

func (b *Binder) notify(ctx context.Context, previous, current Binding) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, previous, current)
	}
}
