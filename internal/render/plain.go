package render

import (
	"fmt"
	"io"

	"github.com/klanec/pic2pin/pkg/models"
)

type plainRenderer struct{}

func (r *plainRenderer) Render(w io.Writer, outcomes []models.Outcome) error {
	var records, skipped int

	for _, o := range outcomes {
		if o.Skipped() {
			skipped++
			if _, err := fmt.Fprintf(w, "skipped  %s  (%s)\n", o.Path, o.Skip); err != nil {
				return err
			}
			continue
		}
		records++

		rec := o.Record
		line := fmt.Sprintf("%.12s  %s  %s", rec.Fingerprint, rec.Path, rec.Coordinate)
		if alt := rec.Coordinate.Altitude; alt != nil {
			line += fmt.Sprintf("  %.1fm", *alt)
		}
		if rec.Address != "" {
			line += "  " + rec.Address
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d files, %d with coordinates, %d skipped\n",
		len(outcomes), records, skipped)
	return err
}
