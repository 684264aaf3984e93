// Package export renders the downloadable report artifacts: RFC4180 CSV,
// tabular letter-landscape PDF, and the screenshot-embed PDF used as the
// local fallback when the remote capture service is unavailable.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV streams a header row plus data rows with RFC4180 quoting, so
// fields containing commas, quotes, or newlines survive a round trip.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
