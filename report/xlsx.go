// Package report renders query results as spreadsheets.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"hospital-finder-server/finder"
)

const SheetName = "Hospitals"

var header = []interface{}{
	"Name", "Distance (km)", "Specialization", "Rating", "Reviews",
	"Working hours", "Average fees", "Address",
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WriteDetails writes one row per detail entry, in the order given, under a
// bold header row.
func WriteDetails(w io.Writer, q finder.Query, details []finder.Detail) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "H1", bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, d := range details {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			d.Location.Name,
			round2(d.DistanceKm),
			d.Location.Specialization,
			round2(d.Record.Rating),
			d.Record.NumReviews,
			d.Record.WorkingHours,
			d.Record.AverageFees,
			d.Record.Address,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row for %s: %w", d.Location.Name, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "H", "H", 48); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("%s hospitals within %.1f km of %s", q.Specialization, q.MaxDistanceKm, q.Source),
		Creator:     "hospital-finder-server",
		Description: fmt.Sprintf("%d hospitals", len(details)),
	}); err != nil {
		return fmt.Errorf("setting document properties: %w", err)
	}

	return f.Write(w)
}
