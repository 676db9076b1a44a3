package dataservice

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"walletbot/config"
)

// Opener builds a Store from backend configuration.
type Opener func(ctx context.Context, cfg config.BackendConfig) (Store, error)

// StoreRegistry maps backend driver names to store constructors.
type StoreRegistry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

func NewStoreRegistry() *StoreRegistry {
	r := &StoreRegistry{openers: make(map[string]Opener)}
	r.Register("postgres", openPostgres)
	r.Register("postgrest", openPostgREST)
	return r
}

// Register adds or replaces a driver.
func (r *StoreRegistry) Register(driver string, open Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[driver] = open
}

// Drivers lists the registered driver names, sorted.
func (r *StoreRegistry) Drivers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open builds the store for cfg.Driver.
func (r *StoreRegistry) Open(ctx context.Context, cfg config.BackendConfig) (Store, error) {
	r.mu.RLock()
	open, ok := r.openers[cfg.Driver]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend driver %q (available: %v)", cfg.Driver, r.Drivers())
	}
	return open(ctx, cfg)
}

// OpenStore opens cfg with the built-in drivers.
func OpenStore(ctx context.Context, cfg config.BackendConfig) (Store, error) {
	return NewStoreRegistry().Open(ctx, cfg)
}

func openPostgres(ctx context.Context, cfg config.BackendConfig) (Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
	}
	return NewPostgresStore(ctx, cfg.DatabaseURL)
}

func openPostgREST(_ context.Context, cfg config.BackendConfig) (Store, error) {
	if cfg.SupabaseURL == "" || cfg.ServiceRoleKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the postgrest driver")
	}
	return NewPostgRESTStore(cfg.SupabaseURL, cfg.ServiceRoleKey), nil
}
