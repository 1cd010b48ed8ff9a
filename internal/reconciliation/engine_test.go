package reconciliation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fortuna/splash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	prediction    *store.Prediction
	mostRecentErr error
	updateErr     error
	updates       []store.PredictionUpdate
}

func (f *fakeStore) MostRecent(ctx context.Context) (*store.Prediction, error) {
	return f.prediction, f.mostRecentErr
}

func (f *fakeStore) Update(ctx context.Context, playerID string, inputGameDate time.Time, fields store.PredictionUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}

	f.updates = append(f.updates, fields)

	// mirror the repository: fill the field so follow-up reads see it
	if fields.GameDate != nil {
		f.prediction.GameDate = sql.NullTime{Time: *fields.GameDate, Valid: true}
	}
	if fields.ActualPts != nil {
		f.prediction.ActualPts = sql.NullFloat64{Float64: *fields.ActualPts, Valid: true}
	}

	return nil
}

type fakeFetcher struct {
	pages map[string]string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.pages[url], nil
}

type fakePublisher struct {
	events []interface{}
}

func (f *fakePublisher) PublishReconciliation(ctx context.Context, event interface{}) error {
	f.events = append(f.events, event)
	return nil
}

const (
	testScheduleURL = "http://test/schedule"
	testGameLogURL  = "http://test/gamelog"
)

func testConfig() *Config {
	return &Config{
		ScheduleURL: testScheduleURL,
		GameLogURL:  testGameLogURL,
		SeasonYear:  2025,
	}
}

func pendingPrediction() *store.Prediction {
	return &store.Prediction{
		PlayerID:      "curry",
		InputGameDate: time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		PredictedPts:  28.5,
	}
}

const testScheduleHTML = `
<html><body><table><tbody>
  <tr><td>Wed, Jan 8, 2025</td><td>vs Heat</td><td>W 110-102</td></tr>
  <tr><td>Wed, Jan 15, 2025</td><td>vs Suns</td><td></td><td><a href="#">Buy Tickets</a></td></tr>
</tbody></table></body></html>`

func gameLogHTML(date, pts string) string {
	cells := []string{
		date, "@LAL", "W 120-112", "36", "11-20", "55.0", "6-11", "54.5",
		"4-4", "100.0", "5", "6", "0", "1", "2", "3", pts,
	}
	row := ""
	for _, cell := range cells {
		row += fmt.Sprintf("<td>%s</td>", cell)
	}
	return fmt.Sprintf(`<html><body><table><tbody><tr>%s</tr></tbody></table></body></html>`, row)
}

func TestFillGameDateWritesOnce(t *testing.T) {
	st := &fakeStore{prediction: pendingPrediction()}
	fetcher := &fakeFetcher{pages: map[string]string{testScheduleURL: testScheduleHTML}}
	engine := NewEngine(st, fetcher, nil, testConfig())

	require.NoError(t, engine.FillGameDate(context.Background()))
	require.Len(t, st.updates, 1)

	require.NotNil(t, st.updates[0].GameDate)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), *st.updates[0].GameDate)
	assert.Nil(t, st.updates[0].ActualPts)

	// second pass with no external change is a no-op
	require.NoError(t, engine.FillGameDate(context.Background()))
	assert.Len(t, st.updates, 1)

	assert.Equal(t, 2, engine.GetMetrics().GameDatePasses)
	assert.Equal(t, 1, engine.GetMetrics().GameDateWrites)
}

func TestFillGameDateNoPrediction(t *testing.T) {
	st := &fakeStore{}
	engine := NewEngine(st, &fakeFetcher{}, nil, testConfig())

	// an empty store is a handled condition, not an error
	require.NoError(t, engine.FillGameDate(context.Background()))
	assert.Empty(t, st.updates)
}

func TestFillGameDateNoGameAfterInput(t *testing.T) {
	p := pendingPrediction()
	p.InputGameDate = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	st := &fakeStore{prediction: p}
	fetcher := &fakeFetcher{pages: map[string]string{testScheduleURL: testScheduleHTML}}
	engine := NewEngine(st, fetcher, nil, testConfig())

	require.NoError(t, engine.FillGameDate(context.Background()))
	assert.Empty(t, st.updates)
}

func TestFillGameDateFetchFailure(t *testing.T) {
	st := &fakeStore{prediction: pendingPrediction()}
	fetcher := &fakeFetcher{err: errors.New("status 403")}
	engine := NewEngine(st, fetcher, nil, testConfig())

	err := engine.FillGameDate(context.Background())
	require.Error(t, err)
	assert.Empty(t, st.updates)
}

func TestFillGameDateNeverOverwrites(t *testing.T) {
	p := pendingPrediction()
	p.GameDate = sql.NullTime{Time: time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC), Valid: true}

	st := &fakeStore{prediction: p}
	engine := NewEngine(st, &fakeFetcher{}, nil, testConfig())

	require.NoError(t, engine.FillGameDate(context.Background()))
	assert.Empty(t, st.updates)
}

func TestFillActualPointsWritesOnce(t *testing.T) {
	p := pendingPrediction()
	p.GameDate = sql.NullTime{Time: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), Valid: true}

	st := &fakeStore{prediction: p}
	fetcher := &fakeFetcher{pages: map[string]string{testGameLogURL: gameLogHTML("Wed 1/15", "32")}}
	publisher := &fakePublisher{}
	engine := NewEngine(st, fetcher, publisher, testConfig())

	require.NoError(t, engine.FillActualPoints(context.Background()))
	require.Len(t, st.updates, 1)

	require.NotNil(t, st.updates[0].ActualPts)
	assert.Equal(t, float64(32), *st.updates[0].ActualPts)
	assert.Len(t, publisher.events, 1)

	// re-invocation after completion is a no-op
	require.NoError(t, engine.FillActualPoints(context.Background()))
	assert.Len(t, st.updates, 1)
	assert.Len(t, publisher.events, 1)
}

func TestFillActualPointsNotYetAvailable(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no matching row", gameLogHTML("Mon 1/13", "25")},
		{"zero points", gameLogHTML("Wed 1/15", "0")},
		{"empty points cell", gameLogHTML("Wed 1/15", "")},
		{"no table", `<html><body></body></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pendingPrediction()
			p.GameDate = sql.NullTime{Time: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), Valid: true}

			st := &fakeStore{prediction: p}
			fetcher := &fakeFetcher{pages: map[string]string{testGameLogURL: tt.html}}
			engine := NewEngine(st, fetcher, nil, testConfig())

			require.NoError(t, engine.FillActualPoints(context.Background()))
			assert.Empty(t, st.updates)
		})
	}
}

func TestFillActualPointsRequiresGameDate(t *testing.T) {
	st := &fakeStore{prediction: pendingPrediction()}
	engine := NewEngine(st, &fakeFetcher{}, nil, testConfig())

	// no game_date yet: nothing to match the game log against
	require.NoError(t, engine.FillActualPoints(context.Background()))
	assert.Empty(t, st.updates)
}

func TestFillActualPointsStoreReadFailure(t *testing.T) {
	st := &fakeStore{mostRecentErr: errors.New("connection refused")}
	engine := NewEngine(st, &fakeFetcher{}, nil, testConfig())

	require.Error(t, engine.FillActualPoints(context.Background()))
}

func TestRunPassFillsBothFields(t *testing.T) {
	st := &fakeStore{prediction: pendingPrediction()}
	fetcher := &fakeFetcher{pages: map[string]string{
		testScheduleURL: testScheduleHTML,
		testGameLogURL:  gameLogHTML("Wed 1/15", "32"),
	}}
	engine := NewEngine(st, fetcher, nil, testConfig())

	require.NoError(t, engine.RunPass(context.Background()))
	require.Len(t, st.updates, 2)

	assert.True(t, st.prediction.GameDate.Valid)
	assert.True(t, st.prediction.ActualPts.Valid)
	assert.Equal(t, float64(32), st.prediction.ActualPts.Float64)

	// the completed prediction is untouched by another pass
	require.NoError(t, engine.RunPass(context.Background()))
	assert.Len(t, st.updates, 2)
}
