package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/splash/internal/cache"
	"github.com/fortuna/splash/internal/scrape"
)

// ScheduleService exposes the scraped schedule to the API layer. Every
// call is a fresh fetch-and-parse of the live page; the only retained
// state is the short-lived Redis copy of the next-game response.
type ScheduleService struct {
	fetcher     scrape.Fetcher
	cache       *cache.RedisCache // optional, may be nil
	scheduleURL string
}

// NewScheduleService creates a new schedule service
func NewScheduleService(fetcher scrape.Fetcher, redisCache *cache.RedisCache, scheduleURL string) *ScheduleService {
	if scheduleURL == "" {
		scheduleURL = scrape.ScheduleURL
	}

	return &ScheduleService{
		fetcher:     fetcher,
		cache:       redisCache,
		scheduleURL: scheduleURL,
	}
}

// NextGame returns the next upcoming game, serving a cached copy when
// one is fresh. Returns nil when the schedule page has no qualifying
// row, which callers report as not-found rather than failure.
func (s *ScheduleService) NextGame(ctx context.Context) (*scrape.Game, error) {
	if s.cache != nil {
		if payload, hit, err := s.cache.GetNextGame(ctx); err != nil {
			log.Printf("[schedule] ⚠️  cache read failed: %v", err)
		} else if hit {
			game := &scrape.Game{}
			if err := json.Unmarshal(payload, game); err == nil {
				return game, nil
			}
			log.Printf("[schedule] ⚠️  discarding unreadable cached next game")
		}
	}

	rows, err := s.fetchRows(ctx)
	if err != nil {
		return nil, err
	}

	game, ok := scrape.NextGame(rows)
	if !ok {
		log.Printf("[schedule] no upcoming game found in %d rows", len(rows))
		return nil, nil
	}

	if s.cache != nil {
		if payload, err := json.Marshal(game); err == nil {
			if err := s.cache.SetNextGame(ctx, payload); err != nil {
				log.Printf("[schedule] ⚠️  cache write failed: %v", err)
			}
		}
	}

	return &game, nil
}

// RecentGames returns up to count completed games from the schedule page
func (s *ScheduleService) RecentGames(ctx context.Context, count int) ([]scrape.Game, error) {
	rows, err := s.fetchRows(ctx)
	if err != nil {
		return nil, err
	}

	return scrape.LastCompleted(rows, count, time.Now()), nil
}

func (s *ScheduleService) fetchRows(ctx context.Context) ([]scrape.Row, error) {
	rawHTML, err := s.fetcher.Fetch(ctx, s.scheduleURL)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule page: %w", err)
	}

	rows, err := scrape.ParseRows(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing schedule page: %w", err)
	}

	return rows, nil
}
