// evictor.go houses the eviction loop for Registry.  Every EvictInterval it
// scans the map and removes:
//
//   - accounts idle longer than idleTTL
//   - least-recently-used accounts when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package account

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/metrics"
)

func (r *Registry) evictLoop() {
	for range r.evictTicker.C {
		now := time.Now().UnixNano()
		var count int

		// ----------------------------------------------------------------
		// Idle eviction pass
		// ----------------------------------------------------------------
		r.m.Range(func(key, value any) bool {
			count++
			ent := value.(*entry)
			idle := time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) * time.Nanosecond
			if idle > r.idleTTL {
				_ = ent.account.Close()
				r.m.Delete(key)
				zap.S().Infow("account evicted", "host", key, "idle", idle.Truncate(time.Second))
				metrics.AccountEvictTotal.Inc()
				metrics.ActiveAccounts.Dec()
			}
			return true
		})

		// ----------------------------------------------------------------
		// LRU eviction pass
		// ----------------------------------------------------------------
		if r.maxEntries > 0 && count > r.maxEntries {
			type kv struct {
				key string
				at  int64
			}
			var all []kv
			r.m.Range(func(key, value any) bool {
				ent := value.(*entry)
				all = append(all, kv{key: key.(string), at: ent.lastSeen})
				return true
			})
			sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
			for i := 0; i < count-r.maxEntries; i++ {
				if v, ok := r.m.Load(all[i].key); ok {
					_ = v.(*entry).account.Close()
					r.m.Delete(all[i].key)
					zap.S().Infow("account evicted (LRU pressure)", "host", all[i].key)
					metrics.AccountEvictTotal.Inc()
					metrics.ActiveAccounts.Dec()
				}
			}
		}
	}
}
