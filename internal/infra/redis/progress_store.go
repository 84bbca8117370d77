package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"iam-academy-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProgressStore persists attempt history and badges in Redis.
// Layout:
//   - attempts: RPUSH progress:{moduleID}:attempts {json AttemptRecord}
//     (a list keeps insertion order, so history reads most-recent-last)
//   - badges:   SADD progress:{moduleID}:badges {badgeID}
//     (a set makes badge awards idempotent without a read-modify-write)
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) GetProgress(ctx context.Context, moduleID string) (domain.ModuleProgress, error) {
	progress := domain.ModuleProgress{ModuleID: moduleID}

	raw, err := s.client.LRange(ctx, s.attemptsKey(moduleID), 0, -1).Result()
	if err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read attempts: %w", err)
	}
	for _, item := range raw {
		var attempt domain.AttemptRecord
		if err := json.Unmarshal([]byte(item), &attempt); err != nil {
			return domain.ModuleProgress{}, fmt.Errorf("decode attempt: %w", err)
		}
		progress.Attempts = append(progress.Attempts, attempt)
	}

	badges, err := s.client.SMembers(ctx, s.badgesKey(moduleID)).Result()
	if err != nil {
		return domain.ModuleProgress{}, fmt.Errorf("read badges: %w", err)
	}
	// SMEMBERS order is unspecified; sort for a stable view.
	sort.Strings(badges)
	progress.Badges = badges
	return progress, nil
}

func (s *ProgressStore) RecordAttempt(ctx context.Context, moduleID string, attempt domain.AttemptRecord) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := s.client.RPush(ctx, s.attemptsKey(moduleID), data).Err(); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (s *ProgressStore) AwardBadge(ctx context.Context, moduleID, badgeID string) error {
	if err := s.client.SAdd(ctx, s.badgesKey(moduleID), badgeID).Err(); err != nil {
		return fmt.Errorf("award badge: %w", err)
	}
	return nil
}

func (s *ProgressStore) attemptsKey(moduleID string) string {
	return "progress:" + moduleID + ":attempts"
}

func (s *ProgressStore) badgesKey(moduleID string) string {
	return "progress:" + moduleID + ":badges"
}
