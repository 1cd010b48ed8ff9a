package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/splash/internal/store"
)

// PredictionRepository handles prediction data access
type PredictionRepository struct {
	db *store.Database
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *store.Database) *PredictionRepository {
	return &PredictionRepository{db: db}
}

const predictionColumns = `player_id, input_game_date, game_date, predicted_pts, actual_pts, created_at, updated_at`

// MostRecent returns the most recently created prediction, or nil when
// the table is empty. An empty table is a handled condition for the
// reconciliation engine, not an error.
func (r *PredictionRepository) MostRecent(ctx context.Context) (*store.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM predictions
		ORDER BY created_at DESC
		LIMIT 1
	`, predictionColumns)

	p := &store.Prediction{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&p.PlayerID, &p.InputGameDate, &p.GameDate, &p.PredictedPts, &p.ActualPts,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying most recent prediction: %w", err)
	}

	return p, nil
}

// Pending returns the next prediction still waiting on an actual
// outcome, earliest input date first, or nil when none is pending.
func (r *PredictionRepository) Pending(ctx context.Context) (*store.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM predictions
		WHERE actual_pts IS NULL
		ORDER BY input_game_date ASC
		LIMIT 1
	`, predictionColumns)

	p := &store.Prediction{}
	err := r.db.DB().QueryRowContext(ctx, query).Scan(
		&p.PlayerID, &p.InputGameDate, &p.GameDate, &p.PredictedPts, &p.ActualPts,
		&p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying pending prediction: %w", err)
	}

	return p, nil
}

// All returns every prediction, newest input date first
func (r *PredictionRepository) All(ctx context.Context) ([]*store.Prediction, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM predictions
		ORDER BY input_game_date DESC
	`, predictionColumns)

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying predictions: %w", err)
	}
	defer rows.Close()

	return r.scanPredictions(rows)
}

// Update applies a partial update keyed by (player_id, input_game_date).
// Each settable field carries an IS NULL guard in the WHERE clause so an
// already-filled value is never overwritten, even when two passes race
// between the read and the write. Zero rows affected means the row was
// missing or already filled.
func (r *PredictionRepository) Update(ctx context.Context, playerID string, inputGameDate time.Time, fields store.PredictionUpdate) error {
	set := []string{"updated_at = NOW()"}
	where := []string{"player_id = $1", "input_game_date = $2"}
	args := []interface{}{playerID, inputGameDate}

	if fields.GameDate != nil {
		args = append(args, *fields.GameDate)
		set = append(set, fmt.Sprintf("game_date = $%d", len(args)))
		where = append(where, "game_date IS NULL")
	}

	if fields.ActualPts != nil {
		args = append(args, *fields.ActualPts)
		set = append(set, fmt.Sprintf("actual_pts = $%d", len(args)))
		where = append(where, "actual_pts IS NULL")
	}

	if len(args) == 2 {
		return fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf("UPDATE predictions SET %s WHERE %s",
		strings.Join(set, ", "), strings.Join(where, " AND "))

	result, err := r.db.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating prediction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("prediction not found or already filled: %s/%s",
			playerID, inputGameDate.Format("2006-01-02"))
	}

	return nil
}

// scanPredictions scans multiple prediction rows
func (r *PredictionRepository) scanPredictions(rows *sql.Rows) ([]*store.Prediction, error) {
	var predictions []*store.Prediction
	for rows.Next() {
		p := &store.Prediction{}
		err := rows.Scan(
			&p.PlayerID, &p.InputGameDate, &p.GameDate, &p.PredictedPts, &p.ActualPts,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}
