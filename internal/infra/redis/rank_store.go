package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"studyhub-service/internal/app"
)

const rankKey = "leaderboard:scores"

// RankStore keeps the leaderboard as a Redis sorted set so ranking stays
// O(log n) per update and shared across instances. On a cold start the set
// is seeded from the source-of-truth store.
type RankStore struct {
	client *redis.Client
	source app.RankStore
}

func NewRankStore(client *redis.Client, source app.RankStore) *RankStore {
	return &RankStore{client: client, source: source}
}

// Warm fills the sorted set from the source if it does not exist yet.
// Call it before score updates start flowing.
func (s *RankStore) Warm(ctx context.Context) error {
	return s.ensureSeeded(ctx)
}

func (s *RankStore) IncrScore(ctx context.Context, userID string, delta int) error {
	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}
	if err := s.client.ZIncrBy(ctx, rankKey, float64(delta), userID).Err(); err != nil {
		return fmt.Errorf("zincrby: %w", err)
	}
	return nil
}

func (s *RankStore) Top(ctx context.Context, n int) ([]app.RankedScore, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	members, err := s.client.ZRevRangeWithScores(ctx, rankKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}
	ranked := make([]app.RankedScore, 0, len(members))
	for _, m := range members {
		userID, ok := m.Member.(string)
		if !ok {
			continue
		}
		ranked = append(ranked, app.RankedScore{UserID: userID, Score: int(m.Score)})
	}
	return ranked, nil
}

func (s *RankStore) ensureSeeded(ctx context.Context) error {
	n, err := s.client.Exists(ctx, rankKey).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if n > 0 || s.source == nil {
		return nil
	}
	seed, err := s.source.Top(ctx, 0)
	if err != nil {
		return err
	}
	if len(seed) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(seed))
	for _, r := range seed {
		members = append(members, redis.Z{Score: float64(r.Score), Member: r.UserID})
	}
	if err := s.client.ZAdd(ctx, rankKey, members...).Err(); err != nil {
		return fmt.Errorf("seed ranks: %w", err)
	}
	return nil
}
