package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"iam-academy-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ModuleLoader fetches course module content from a backing store
// (e.g., Postgres JSONB).
type ModuleLoader interface {
	LoadModule(ctx context.Context, moduleID string) (domain.CourseModule, error)
}

// ModuleRepository caches modules with TTL to avoid repeated backing-store
// hits; course content changes rarely but is read on every session start.
type ModuleRepository struct {
	loader ModuleLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedModule
}

type cachedModule struct {
	module    domain.CourseModule
	expiresAt time.Time
}

func NewModuleRepository(loader ModuleLoader, ttl time.Duration) *ModuleRepository {
	return &ModuleRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedModule),
	}
}

func (r *ModuleRepository) GetModule(ctx context.Context, moduleID string) (domain.CourseModule, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[moduleID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.module, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(moduleID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[moduleID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.module, nil
		}
		r.mu.RUnlock()

		module, err := r.loader.LoadModule(ctx, moduleID)
		if err != nil {
			return domain.CourseModule{}, err
		}

		r.mu.Lock()
		r.cache[moduleID] = cachedModule{
			module:    module,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return module, nil
	})
	if err != nil {
		return domain.CourseModule{}, err
	}
	return result.(domain.CourseModule), nil
}

// StaticModuleLoader is a loader backed by an in-memory map (built-in
// catalog, tests, demos).
type StaticModuleLoader struct {
	modules map[string]domain.CourseModule
}

func NewStaticModuleLoader(modules map[string]domain.CourseModule) *StaticModuleLoader {
	return &StaticModuleLoader{modules: modules}
}

func (l *StaticModuleLoader) LoadModule(_ context.Context, moduleID string) (domain.CourseModule, error) {
	if module, ok := l.modules[moduleID]; ok {
		return module, nil
	}
	return domain.CourseModule{}, domain.ErrModuleNotFound
}

func (r *ModuleRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
