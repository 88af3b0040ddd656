package app

import (
	"context"
	"log"
	"sync"
	"time"

	"studyhub-service/internal/domain"
)

// RankedScore is one row from the rank store, before user details are
// joined in.
type RankedScore struct {
	UserID string
	Score  int
}

// RankStore is the ordered score read model behind the leaderboard
// (in-memory map or a Redis sorted set).
type RankStore interface {
	IncrScore(ctx context.Context, userID string, delta int) error
	// Top returns up to n scores, highest first. Ties order by user ID so
	// snapshots are stable.
	Top(ctx context.Context, n int) ([]RankedScore, error)
}

// LeaderboardService joins ranked scores with user records, hides users who
// opted out, and fans snapshots out to subscribers.
type LeaderboardService struct {
	ranks RankStore
	users UserStore
	size  int
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(ranks RankStore, users UserStore, size int) *LeaderboardService {
	if size <= 0 {
		size = 25
	}
	return &LeaderboardService{
		ranks:       ranks,
		users:       users,
		size:        size,
		now:         time.Now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Top builds the current standings. Users with ShowOnLeaderboard unset are
// ranked internally but never shown.
func (s *LeaderboardService) Top(ctx context.Context) (domain.Leaderboard, error) {
	scores, err := s.ranks.Top(ctx, s.size*2)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	entries := make([]domain.LeaderboardEntry, 0, s.size)
	for _, ranked := range scores {
		if len(entries) == s.size {
			break
		}
		user, err := s.users.GetUser(ctx, ranked.UserID)
		if err != nil {
			continue
		}
		if !user.ShowOnLeaderboard {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			Score:       ranked.Score,
		})
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// ScoreChanged applies a score delta to the rank store and pushes a fresh
// snapshot to subscribers. It satisfies LeaderboardNotifier.
func (s *LeaderboardService) ScoreChanged(ctx context.Context, userID string, delta int) {
	if err := s.ranks.IncrScore(ctx, userID, delta); err != nil {
		log.Printf("leaderboard incr for %s: %v", userID, err)
	}
	lb, err := s.Top(ctx)
	if err != nil {
		log.Printf("leaderboard snapshot: %v", err)
		return
	}
	s.broadcast(lb)
}

// Subscribe returns a channel receiving leaderboard updates, primed with
// the current snapshot. The caller must invoke cancel to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Top(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *LeaderboardService) broadcast(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscribers drop their stale snapshot instead of
			// blocking the broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
