package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"iam-academy-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ModuleLoader fetches course module content from a backing store
// (e.g., Postgres JSONB).
type ModuleLoader interface {
	LoadModule(ctx context.Context, moduleID string) (domain.CourseModule, error)
}

// ModuleRepository caches serialized course modules in Redis and falls back
// to a loader on cache miss. Modules are stored as:
//
//	SET module:{moduleID} {json CourseModule} EX {ttl}
//
// so multiple service instances share one warm cache.
type ModuleRepository struct {
	client *redis.Client
	loader ModuleLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewModuleRepository(client *redis.Client, loader ModuleLoader, ttl time.Duration) *ModuleRepository {
	return &ModuleRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ModuleRepository) GetModule(ctx context.Context, moduleID string) (domain.CourseModule, error) {
	key := r.moduleKey(moduleID)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		if module, decodeErr := decodeModule(raw); decodeErr == nil {
			return module, nil
		}
		// A corrupt entry falls through to a fresh load.
	}

	result, err, _ := r.sf.Do(moduleID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		raw, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			if module, decodeErr := decodeModule(raw); decodeErr == nil {
				return module, nil
			}
		}

		module, err := r.loader.LoadModule(ctx, moduleID)
		if err != nil {
			return domain.CourseModule{}, err
		}

		if data, err := json.Marshal(module); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return module, nil
	})
	if err != nil {
		return domain.CourseModule{}, err
	}
	return result.(domain.CourseModule), nil
}

func (r *ModuleRepository) moduleKey(moduleID string) string {
	return "module:" + moduleID
}

func decodeModule(raw []byte) (domain.CourseModule, error) {
	var module domain.CourseModule
	if err := json.Unmarshal(raw, &module); err != nil {
		return domain.CourseModule{}, err
	}
	return module, nil
}

func (r *ModuleRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
