package reconciliation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/splash/internal/scrape"
	"github.com/fortuna/splash/internal/store"
)

// PredictionStore is the slice of the prediction repository the engine
// needs: the most recently created prediction plus partial updates.
type PredictionStore interface {
	MostRecent(ctx context.Context) (*store.Prediction, error)
	Update(ctx context.Context, playerID string, inputGameDate time.Time, fields store.PredictionUpdate) error
}

// EventPublisher receives reconciliation events after successful writes
type EventPublisher interface {
	PublishReconciliation(ctx context.Context, event interface{}) error
}

// Config holds engine configuration
type Config struct {
	ScheduleURL string // schedule page to scan for the target game
	GameLogURL  string // game log page to scan for actual points
	SeasonYear  int    // appended to game log dates, which carry no year
}

// DefaultConfig returns default engine configuration
func DefaultConfig() *Config {
	return &Config{
		ScheduleURL: scrape.ScheduleURL,
		GameLogURL:  scrape.GameLogURL,
		SeasonYear:  time.Now().Year(),
	}
}

// Metrics tracks reconciliation pass statistics
type Metrics struct {
	GameDatePasses  int
	GameDateWrites  int
	ActualPtsPasses int
	ActualPtsWrites int
	LastPass        time.Time
}

// Engine reconciles the prediction store against the scraped schedule
// and game log pages. Both operations act on the most recently created
// prediction only, never overwrite a filled field, and treat a missing
// prediction or an unlocatable game as handled conditions rather than
// errors. The emptiness check before each write is a best-effort guard,
// not a transaction; passes are expected not to overlap.
type Engine struct {
	store     PredictionStore
	fetcher   scrape.Fetcher
	publisher EventPublisher // optional, may be nil
	config    *Config
	metrics   *Metrics
}

// NewEngine creates a new reconciliation engine
func NewEngine(st PredictionStore, fetcher scrape.Fetcher, publisher EventPublisher, config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		store:     st,
		fetcher:   fetcher,
		publisher: publisher,
		config:    config,
		metrics:   &Metrics{},
	}
}

// FillGameDate fills the target game date of the most recently created
// prediction when it is still unset, using the first scheduled game
// after the prediction's input date. Re-invocation after a successful
// fill is a no-op.
func (e *Engine) FillGameDate(ctx context.Context) error {
	e.metrics.GameDatePasses++
	e.metrics.LastPass = time.Now()

	p, err := e.store.MostRecent(ctx)
	if err != nil {
		return fmt.Errorf("reading most recent prediction: %w", err)
	}
	if p == nil {
		log.Println("[reconcile] no predictions in store, nothing to fill")
		return nil
	}

	if p.GameDate.Valid {
		log.Printf("[reconcile] prediction %s/%s already dated %s, skipping",
			p.PlayerID, p.InputGameDate.Format("2006-01-02"), p.GameDate.Time.Format("2006-01-02"))
		return nil
	}

	rawHTML, err := e.fetcher.Fetch(ctx, e.config.ScheduleURL)
	if err != nil {
		return fmt.Errorf("fetching schedule page: %w", err)
	}

	rows, err := scrape.ParseRows(rawHTML)
	if err != nil {
		return fmt.Errorf("parsing schedule page: %w", err)
	}

	game, ok := scrape.FirstGameAfter(rows, p.InputGameDate)
	if !ok {
		log.Printf("[reconcile] no scheduled game after %s on schedule page",
			p.InputGameDate.Format("2006-01-02"))
		return nil
	}

	gameDate := game.Timestamp
	err = e.store.Update(ctx, p.PlayerID, p.InputGameDate, store.PredictionUpdate{GameDate: &gameDate})
	if err != nil {
		return fmt.Errorf("writing game_date: %w", err)
	}

	e.metrics.GameDateWrites++
	log.Printf("[reconcile] ✓ filled game_date=%s for prediction %s/%s (%s)",
		gameDate.Format("2006-01-02"), p.PlayerID, p.InputGameDate.Format("2006-01-02"), game.Opponent)

	e.publish(ctx, "game_date_filled", p, map[string]interface{}{
		"game_date": gameDate.Format("2006-01-02"),
		"opponent":  game.Opponent,
	})

	return nil
}

// FillActualPoints fills the actual outcome of the most recently created
// prediction when its target game shows up in the game log. A missing
// row, a missing points cell, or a zero total all mean the game has not
// been played or the data has not been posted yet — no write happens and
// the pass is retried later.
func (e *Engine) FillActualPoints(ctx context.Context) error {
	e.metrics.ActualPtsPasses++
	e.metrics.LastPass = time.Now()

	p, err := e.store.MostRecent(ctx)
	if err != nil {
		return fmt.Errorf("reading most recent prediction: %w", err)
	}
	if p == nil {
		log.Println("[reconcile] no predictions in store, nothing to fill")
		return nil
	}

	if !p.GameDate.Valid {
		log.Printf("[reconcile] prediction %s/%s has no game_date yet, cannot match game log",
			p.PlayerID, p.InputGameDate.Format("2006-01-02"))
		return nil
	}

	if p.ActualPts.Valid {
		log.Printf("[reconcile] prediction %s/%s already has actual_pts=%.0f, skipping",
			p.PlayerID, p.InputGameDate.Format("2006-01-02"), p.ActualPts.Float64)
		return nil
	}

	rawHTML, err := e.fetcher.Fetch(ctx, e.config.GameLogURL)
	if err != nil {
		return fmt.Errorf("fetching game log page: %w", err)
	}

	rows, err := scrape.ParseRows(rawHTML)
	if err != nil {
		return fmt.Errorf("parsing game log page: %w", err)
	}

	pts, ok := scrape.PointsForDate(rows, p.GameDate.Time, e.config.SeasonYear)
	if !ok {
		log.Printf("[reconcile] actual points for %s not yet available",
			p.GameDate.Time.Format("2006-01-02"))
		return nil
	}

	actual := float64(pts)
	err = e.store.Update(ctx, p.PlayerID, p.InputGameDate, store.PredictionUpdate{ActualPts: &actual})
	if err != nil {
		return fmt.Errorf("writing actual_pts: %w", err)
	}

	e.metrics.ActualPtsWrites++
	log.Printf("[reconcile] ✓ filled actual_pts=%d for prediction %s/%s",
		pts, p.PlayerID, p.InputGameDate.Format("2006-01-02"))

	e.publish(ctx, "actual_pts_filled", p, map[string]interface{}{
		"actual_pts": pts,
		"game_date":  p.GameDate.Time.Format("2006-01-02"),
	})

	return nil
}

// RunPass executes both fill operations in order: target game date
// first, actual outcome second. A failure in one operation does not
// stop the other; the first error is returned.
func (e *Engine) RunPass(ctx context.Context) error {
	dateErr := e.FillGameDate(ctx)
	if dateErr != nil {
		log.Printf("[reconcile] ❌ fill game date failed: %v", dateErr)
	}

	ptsErr := e.FillActualPoints(ctx)
	if ptsErr != nil {
		log.Printf("[reconcile] ❌ fill actual points failed: %v", ptsErr)
	}

	if dateErr != nil {
		return dateErr
	}
	return ptsErr
}

// GetMetrics returns current reconciliation metrics
func (e *Engine) GetMetrics() *Metrics {
	return e.metrics
}

// publish sends a reconciliation event, best-effort. Publish failures
// are logged and swallowed: eventing is never on the write path.
func (e *Engine) publish(ctx context.Context, kind string, p *store.Prediction, extra map[string]interface{}) {
	if e.publisher == nil {
		return
	}

	event := map[string]interface{}{
		"kind":            kind,
		"player_id":       p.PlayerID,
		"input_game_date": p.InputGameDate.Format("2006-01-02"),
	}
	for k, v := range extra {
		event[k] = v
	}

	if err := e.publisher.PublishReconciliation(ctx, event); err != nil {
		log.Printf("[reconcile] ⚠️  failed to publish %s event: %v", kind, err)
	}
}
