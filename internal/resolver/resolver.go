// Package resolver implements batch resolution of merchant display names
// for ticket records: skip records that already carry a durable name, call
// the directory at most once per distinct (franchise, outlet) key, fan the
// answer out to every record sharing the key, and backfill fresh names to
// the store without letting a persistence failure touch the caller.
package resolver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"ticket-admin-service/api/dto"
	"ticket-admin-service/internal/config"
	"ticket-admin-service/internal/metrics"
)

// Lookup answers one (franchiseId, outletId) pair. An error means the
// directory could not answer; Found=false with a nil error means the pair
// is unknown. The resolver treats both as a negative result and never
// retries (resilience is deliberately left to the directory's operators).
type Lookup interface {
	LookupNames(ctx context.Context, franchiseID, outletID string) (*dto.ResolutionResult, error)
}

// PersistFn writes both resolved names for one record back to durable
// storage in a single atomic update. It must be idempotent; the resolver
// guarantees at most one call per record per batch.
type PersistFn func(ctx context.Context, recordID, franchiseName, outletName string) error

const (
	defaultMaxParallelLookups  = 8
	defaultMaxParallelPersists = 16
	defaultPersistTimeout      = 5 * time.Second
)

// BatchResolver drives the single-flight + backfill protocol for one
// request-scoped batch at a time. The struct itself is stateless between
// calls: every ResolveBatch owns its cache map and its task tracking, so
// concurrent batches never share anything.
type BatchResolver struct {
	lookup  Lookup
	persist PersistFn

	maxParallelLookups  int
	maxParallelPersists int
	persistTimeout      time.Duration
}

func New(lookup Lookup, persist PersistFn, cfg config.Resolver) *BatchResolver {
	if lookup == nil {
		panic("resolver: lookup is nil")
	}
	if persist == nil {
		panic("resolver: persist is nil")
	}
	if cfg.MaxParallelLookups <= 0 {
		zap.S().Warnf("maxParallelLookups ≤ 0 set %d", defaultMaxParallelLookups)
		cfg.MaxParallelLookups = defaultMaxParallelLookups
	}
	if cfg.MaxParallelPersists <= 0 {
		zap.S().Warnf("maxParallelPersists ≤ 0 set %d", defaultMaxParallelPersists)
		cfg.MaxParallelPersists = defaultMaxParallelPersists
	}
	if cfg.PersistTimeout <= 0 {
		zap.S().Warnf("persistTimeout ≤ 0 set %s", defaultPersistTimeout)
		cfg.PersistTimeout = defaultPersistTimeout
	}
	return &BatchResolver{
		lookup:              lookup,
		persist:             persist,
		maxParallelLookups:  cfg.MaxParallelLookups,
		maxParallelPersists: cfg.MaxParallelPersists,
		persistTimeout:      cfg.PersistTimeout,
	}
}

// ResolveBatch resolves display names for every record and returns a map
// from record id to result. The map always contains an entry for each
// distinct record id in the input; a record that cannot be resolved gets
// Found=false rather than being dropped.
//
// All records sharing a normalized key receive the identical result, and
// the directory is called at most once per distinct key. Newly resolved
// positive results are persisted back through PersistFn at most once per
// record; those writes are tracked and drained before ResolveBatch
// returns, so the caller can respond knowing the backfill has settled.
func (r *BatchResolver) ResolveBatch(ctx context.Context, records []*dto.TicketRecord) map[string]*dto.ResolutionResult {
	results := make(map[string]*dto.ResolutionResult, len(records))
	if len(records) == 0 {
		return results
	}
	metrics.ResolveBatches.Inc()

	// Fast path and key grouping. Grouping must finish before any lookup
	// is dispatched: two records sharing a key then can never decide
	// independently to each call the directory.
	groups := make(map[dto.ResolutionKey][]*dto.TicketRecord)
	seen := make(map[string]struct{}, len(records))
	fastPath, invalid := 0, 0

	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			zap.S().Errorw("batch resolver: record without id, skipping")
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			// Callers must not pass duplicate ids; first occurrence wins.
			zap.S().Errorw("batch resolver: duplicate record id in batch", "id", rec.ID)
			continue
		}
		seen[rec.ID] = struct{}{}

		if rec.HasResolvedNames() {
			results[rec.ID] = &dto.ResolutionResult{
				FranchiseName: rec.FranchiseName,
				OutletName:    rec.OutletName,
				Found:         true,
			}
			fastPath++
			continue
		}

		key, ok := rec.ResolutionKey()
		if !ok {
			results[rec.ID] = &dto.ResolutionResult{Found: false}
			invalid++
			continue
		}
		groups[key] = append(groups[key], rec)
	}

	// Single flight: one lookup per distinct key, bounded fan-out. The
	// cache map lives and dies with this call.
	cache := make(map[dto.ResolutionKey]*dto.ResolutionResult, len(groups))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	limiter := make(chan struct{}, r.maxParallelLookups)

	for key := range groups {
		wg.Add(1)
		limiter <- struct{}{}

		go func(k dto.ResolutionKey) {
			defer wg.Done()
			defer func() { <-limiter }()

			res, err := r.lookup.LookupNames(ctx, k.FranchiseID, k.OutletID)
			if err != nil {
				// Degrades to not-found for the whole key group.
				zap.S().Warnw("directory lookup failed", "key", k.String(), "error", err)
				res = &dto.ResolutionResult{Found: false}
			}
			if res == nil {
				res = &dto.ResolutionResult{Found: false}
			}

			mu.Lock()
			cache[k] = res
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	// Fan-out and backfill dispatch. Persistence runs concurrently per
	// record but is joined before returning; a dispatched write is never
	// silently dropped.
	var persistWG sync.WaitGroup
	tokens := make(chan struct{}, r.maxParallelPersists)
	resolved, unresolved := 0, 0

	for key, group := range groups {
		res := cache[key]
		if len(group) > 1 {
			metrics.LookupsSaved.Add(float64(len(group) - 1))
		}
		if res.Found {
			resolved += len(group)
		} else {
			unresolved += len(group)
		}

		for _, rec := range group {
			results[rec.ID] = res
			if res.Found && (res.FranchiseName != "" || res.OutletName != "") {
				r.dispatchPersist(&persistWG, tokens, rec.ID, res)
			}
		}
	}
	persistWG.Wait()

	metrics.RecordResolveOutcome("fast_path", fastPath)
	metrics.RecordResolveOutcome("invalid_key", invalid)
	metrics.RecordResolveOutcome("resolved", resolved)
	metrics.RecordResolveOutcome("unresolved", unresolved)

	return results
}

// dispatchPersist runs one tracked backfill write. The write is detached
// from the request context: once dispatched it either completes within
// persistTimeout or is reported as failed, never half-abandoned by a
// caller cancellation.
func (r *BatchResolver) dispatchPersist(wg *sync.WaitGroup, tokens chan struct{}, recordID string, res *dto.ResolutionResult) {
	wg.Add(1)
	tokens <- struct{}{}

	go func() {
		defer wg.Done()
		defer func() { <-tokens }()

		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw(alert.Prefix("persist panic"), "id", recordID, "panic", rec)
				metrics.RecordPersistDispatch("abandoned")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
		defer cancel()

		if err := r.persist(ctx, recordID, res.FranchiseName, res.OutletName); err != nil {
			zap.S().Errorw(alert.Prefix("name backfill failed"), "id", recordID, "error", err)
			metrics.RecordPersistDispatch("error")
			return
		}
		metrics.RecordPersistDispatch("success")
	}()
}
