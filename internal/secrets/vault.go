// Package secrets holds credentials that can be swapped on a running server.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// AdminTokenHash is the key of the bcrypt hash guarding section writes.
const AdminTokenHash = "admin_token_hash"

// Loader reads the current secret values from their source.
type Loader func() (map[string]string, error)

// Vault keeps the last successfully loaded values in memory.
type Vault struct {
	mu     sync.RWMutex
	values map[string]string
	loader Loader
}

// NewVault creates a Vault, calling the loader once to populate initial values.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial secret load: %w", err)
	}
	return &Vault{values: vals, loader: loader}, nil
}

// Get returns the value for key, or an empty string if not found.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[key]
}

// Getter binds key to the vault so callers always see the latest value.
func (v *Vault) Getter(key string) func() string {
	return func() string { return v.Get(key) }
}

// Reload swaps in freshly loaded values. On error the old values stay.
func (v *Vault) Reload() error {
	vals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.mu.Lock()
	v.values = vals
	v.mu.Unlock()
	return nil
}

// ReloadOn reloads the vault for every signal received on sigs until ctx is
// done. Failed reloads are logged and keep the previous values.
func (v *Vault) ReloadOn(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			if err := v.Reload(); err != nil {
				slog.ErrorContext(ctx, "secret reload failed", "signal", sig.String(), "error", err)
				continue
			}
			slog.InfoContext(ctx, "secrets reloaded", "signal", sig.String())
		}
	}
}
