package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/xerrors"
)

// WriteCSV writes one header row followed by one row per ranked domain.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return xerrors.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(Columns))
	for _, sd := range r.Scored {
		for i, v := range values(sd) {
			row[i] = formatCell(v)
		}
		if err := cw.Write(row); err != nil {
			return xerrors.Errorf("write csv row for %q: %w", sd.Domain, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return xerrors.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCell(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatScore(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
