package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{
	"FirstName", "LastName", "RoomNumber", "PartySize", "GuestID",
	"TimeSeated", "TimeCleared", "DurationMinutes", "Area",
}

// Export writes the ledger as CSV, one row per interaction.  areaName is
// written on every row.
func (l *Ledger) Export(w io.Writer, areaName string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, g := range l.session.GuestInteractions {
		cleared := "N/A"
		if g.TimeCleared != nil {
			cleared = g.TimeCleared.Format(exportTimeLayout)
		}
		row := []string{
			g.FirstName,
			g.LastName,
			g.RoomNumber,
			strconv.Itoa(g.PartySize),
			g.GuestID,
			g.TimeSeated.Format(exportTimeLayout),
			cleared,
			strconv.FormatFloat(g.StayMinutes(), 'f', 2, 64),
			areaName,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToFlatFile writes analytics_<date>.csv under dir and returns its path.
func (l *Ledger) ExportToFlatFile(dir, areaName string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("analytics_%s.csv", l.session.SessionDate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := l.Export(f, areaName); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	l.log.Info("analytics exported", "path", path, "rows", len(l.session.GuestInteractions))
	return path, nil
}
