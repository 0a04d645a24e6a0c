// internal/account/registry.go
//
// Host-keyed registry of live accounts.
//
// Context
// -------
// The registry lazily loads accounts on first hit, stores them in a
// sync.Map, and evicts them on idle TTL or LRU pressure.  Concurrent
// first hits for the same host are coalesced through singleflight so the
// control-plane DB sees exactly one load per host.
package account

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/atrium/internal/metrics"
)

// Static defaults.  Override via the Registry fields before first use.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// ErrNotFound is returned when a host is not present in the account table.
var ErrNotFound = errors.New("account not found")

// Registry lazily loads accounts and owns their lifecycle.
type Registry struct {
	globalDB    *sqlx.DB
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	idleTTL     time.Duration
	maxEntries  int
}

// NewRegistry constructs a Registry and starts the background evictor.
func NewRegistry(global *sqlx.DB, idleTTL time.Duration, maxEntries int) *Registry {
	r := &Registry{
		globalDB:   global,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	r.evictTicker = time.NewTicker(EvictInterval)
	go r.evictLoop()
	return r
}

// GlobalDB exposes the control-plane pool for callers that query across
// accounts (the admin listing, batch jobs).
func (r *Registry) GlobalDB() *sqlx.DB { return r.globalDB }

// Resolve returns the Account for host, loading it on demand.
func (r *Registry) Resolve(ctx context.Context, host string) (*Account, error) {
	if v, ok := r.m.Load(host); ok {
		ent := v.(*entry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.account, nil
	}

	v, err, _ := r.sfg.Do(host, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := r.m.Load(host); ok {
			ent := v.(*entry)
			atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
			return ent.account, nil
		}
		acct, err := loadAccount(ctx, r.globalDB, host)
		if err != nil {
			metrics.AccountLoadErrorsTotal.Inc()
			return nil, err
		}
		ent := &entry{
			account:  acct,
			lastSeen: time.Now().UnixNano(),
		}
		r.m.Store(host, ent)
		metrics.AccountLoadTotal.Inc()
		metrics.ActiveAccounts.Inc()
		return acct, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}
