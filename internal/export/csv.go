// Package export serializes a processed farmer view to CSV. Every field is
// double-quoted unconditionally, with embedded quotes doubled, to match the
// file format the dashboard has always produced.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agrunetcore/farmhub/types"
)

// ErrNoRows signals that an export was requested for an empty view. It is
// a notice to surface to the user, not a failure.
var ErrNoRows = errors.New("no rows to export")

var header = []string{
	"Name",
	"Email",
	"Phone",
	"Subcity",
	"Farm Name",
	"Farm Type",
	"Farm Size",
	"Registered",
}

// Filename returns the download name for an export taken at the given time,
// e.g. farmers_2026-08-28.csv.
func Filename(now time.Time) string {
	return fmt.Sprintf("farmers_%s.csv", now.UTC().Format("2006-01-02"))
}

// Write serializes the rows to w in display order. An empty row set writes
// nothing and returns ErrNoRows.
func Write(w io.Writer, farmers []types.Farmer) error {
	if len(farmers) == 0 {
		return ErrNoRows
	}

	var sb strings.Builder
	writeRow(&sb, header)
	for _, f := range farmers {
		writeRow(&sb, []string{
			f.Name,
			f.Email,
			f.Phone,
			f.Subcity,
			f.FarmName,
			f.FarmType,
			f.FarmSize,
			f.CreatedAt,
		})
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRow(sb *strings.Builder, fields []string) {
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(field, `"`, `""`))
		sb.WriteByte('"')
	}
}
