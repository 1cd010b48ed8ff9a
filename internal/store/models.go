package store

import (
	"database/sql"
	"time"
)

// Prediction is one persisted point-total forecast for a player.
// (player_id, input_game_date) identifies the row. game_date and
// actual_pts start NULL and are filled in by reconciliation: game_date
// once the target game is located on the schedule page, actual_pts once
// the game log shows a played game on that date.
type Prediction struct {
	PlayerID      string          `json:"player_id" db:"player_id"`
	InputGameDate time.Time       `json:"input_game_date" db:"input_game_date"`
	GameDate      sql.NullTime    `json:"game_date,omitempty" db:"game_date"`
	PredictedPts  float64         `json:"predicted_pts" db:"predicted_pts"`
	ActualPts     sql.NullFloat64 `json:"actual_pts,omitempty" db:"actual_pts"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// PredictionUpdate carries the fields a partial update may set. Nil
// fields are left untouched.
type PredictionUpdate struct {
	GameDate  *time.Time
	ActualPts *float64
}
