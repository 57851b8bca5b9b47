package report

import (
	"github.com/outreachkit/bvscore/scoring"
	"github.com/xuri/excelize/v2"
	"golang.org/x/xerrors"
)

// AllSheet is the name of the workbook sheet listing every ranked domain.
// Each tier additionally gets a sheet named after it.
const AllSheet = "scored"

// WriteXLSX saves the report as a workbook at path.
func (r *Report) WriteXLSX(path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = xerrors.Errorf("close workbook: %w", closeErr)
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), AllSheet); err != nil {
		return xerrors.Errorf("rename default sheet: %w", err)
	}
	if err = writeSheet(f, AllSheet, r.Scored); err != nil {
		return err
	}

	for _, tier := range scoring.Tiers {
		sheet := string(tier)
		if _, err = f.NewSheet(sheet); err != nil {
			return xerrors.Errorf("create sheet %q: %w", sheet, err)
		}
		if err = writeSheet(f, sheet, r.ByTier[tier]); err != nil {
			return err
		}
	}

	if err = f.SaveAs(path); err != nil {
		return xerrors.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, scored []scoring.ScoredDomain) error {
	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return xerrors.Errorf("write header of sheet %q: %w", sheet, err)
	}

	for i, sd := range scored {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return xerrors.Errorf("sheet %q: %w", sheet, err)
		}
		row := values(sd)
		if err = f.SetSheetRow(sheet, cell, &row); err != nil {
			return xerrors.Errorf("write %q to sheet %q: %w", sd.Domain, sheet, err)
		}
	}
	return nil
}
