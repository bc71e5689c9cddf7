// Package render prints recommendation results for the terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/okian/getaway/internal/domain/model"
)

// Messages printed for non-table outcomes.
const (
	NotFoundMessage    = "City not found in database."
	UnavailableMessage = "Destination data is unavailable; check the data file and restart."
)

// Column headers of the result table.
var header = []string{"City", "Name", "Distance_km", "Type", "Google review rating"}

const (
	minWidth = 0
	tabWidth = 8
	padding  = 2
)

// Table prints recs under a heading naming the source city.
// Distance_km is rounded to one decimal place.
func Table(w io.Writer, city string, recs []model.Recommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintf(w, "\nNo weekend getaways within range of %s.\n", city)
		return err
	}

	if _, err := fmt.Fprintf(w, "\nTop %d Weekend Getaways from %s:\n\n", len(recs), city); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, minWidth, tabWidth, padding, ' ', 0)
	writeRow(tw, header)
	for _, r := range recs {
		writeRow(tw, []string{
			r.City,
			r.Name,
			strconv.FormatFloat(r.DistanceKm, 'f', 1, 64),
			r.Type,
			strconv.FormatFloat(r.Rating, 'g', -1, 64),
		})
	}
	return tw.Flush()
}

// NotFound prints the unknown-city message.
func NotFound(w io.Writer) error {
	_, err := fmt.Fprintln(w, NotFoundMessage)
	return err
}

// Unavailable prints the missing-data message.
func Unavailable(w io.Writer) error {
	_, err := fmt.Fprintln(w, UnavailableMessage)
	return err
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			_, _ = io.WriteString(w, "\t")
		}
		_, _ = io.WriteString(w, c)
	}
	_, _ = io.WriteString(w, "\n")
}
