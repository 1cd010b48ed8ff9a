package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Row is one <tr> of a schedule or game log table, in document order.
// The first three columns are broken out because the schedule page puts
// date, opponent and result there; Cells keeps every column for stat
// tables where the interesting value sits further right.
type Row struct {
	DateText     string   // first column
	OpponentText string   // second column, away marker still embedded
	ResultText   string   // third column, empty until the game is played
	Cells        []string // all columns
	RowText      string   // full row text, used for marker detection
}

// ParseRows extracts the rows of the first table body in the document.
// Rows come back in document order with no filtering; malformed rows
// are passed through for the extractor to judge. A page without the
// expected table yields an empty slice and no error, so callers can
// tell an empty page apart from a fetch failure.
func ParseRows(rawHTML string) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rows := make([]Row, 0)

	doc.Find("table tbody tr").Each(func(i int, s *goquery.Selection) {
		row := Row{
			RowText: strings.TrimSpace(s.Text()),
		}

		s.Find("td").Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			row.Cells = append(row.Cells, text)

			switch j {
			case 0:
				row.DateText = text
			case 1:
				row.OpponentText = text
			case 2:
				row.ResultText = text
			}
		})

		rows = append(rows, row)
	})

	return rows, nil
}
