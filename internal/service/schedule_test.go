package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	html  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.html, f.err
}

const stubScheduleHTML = `
<html><body><table><tbody>
  <tr><td>Wed, Jan 8, 2025</td><td>vs Heat</td><td>W 110-102</td></tr>
  <tr><td>Fri, Jan 10, 2025</td><td>@ Lakers</td><td>L 95-100</td></tr>
  <tr><td>Wed, Jan 15, 2025</td><td>vs Suns</td><td></td><td><a href="#">Buy Tickets</a></td></tr>
</tbody></table></body></html>`

func TestScheduleServiceNextGame(t *testing.T) {
	fetcher := &stubFetcher{html: stubScheduleHTML}
	svc := NewScheduleService(fetcher, nil, "http://test/schedule")

	game, err := svc.NextGame(context.Background())
	require.NoError(t, err)
	require.NotNil(t, game)

	assert.Equal(t, "Suns", game.Opponent)
	assert.True(t, game.IsHome)
	assert.Equal(t, 1, fetcher.calls)
}

func TestScheduleServiceNextGameNotFound(t *testing.T) {
	fetcher := &stubFetcher{html: `<html><body><table><tbody>
		<tr><td>Wed, Jan 8, 2025</td><td>vs Heat</td><td>W 110-102</td></tr>
	</tbody></table></body></html>`}
	svc := NewScheduleService(fetcher, nil, "http://test/schedule")

	game, err := svc.NextGame(context.Background())
	require.NoError(t, err)
	assert.Nil(t, game)
}

func TestScheduleServiceNextGameFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("status 403")}
	svc := NewScheduleService(fetcher, nil, "http://test/schedule")

	_, err := svc.NextGame(context.Background())
	require.Error(t, err)
}

func TestScheduleServiceRecentGames(t *testing.T) {
	fetcher := &stubFetcher{html: stubScheduleHTML}
	svc := NewScheduleService(fetcher, nil, "http://test/schedule")

	games, err := svc.RecentGames(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "Heat", games[0].Opponent)
	assert.Equal(t, "Lakers", games[1].Opponent)
	assert.False(t, games[1].IsHome)
}

func TestScheduleServiceRecentGamesTruncates(t *testing.T) {
	fetcher := &stubFetcher{html: stubScheduleHTML}
	svc := NewScheduleService(fetcher, nil, "http://test/schedule")

	games, err := svc.RecentGames(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Heat", games[0].Opponent)
}
