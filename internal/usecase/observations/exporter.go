package observations

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"unicode"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/xuri/excelize/v2"

	"riskwatch/internal/bootstrap/logging"
	"riskwatch/internal/domain/observation"
	"riskwatch/internal/domain/risk"
	"riskwatch/internal/errs"
)

const (
	reportSheetName = "Safety Observation Report"
	reportTitle     = "SAFETY OBSERVATION REPORT"

	headerRow = 5

	photoTargetWidthPx  = 150.0
	photoTargetHeightPx = 112.0
	photoRowHeightPt    = 90.0
)

var reportHeaders = []string{
	"ObsNo.", "Date of Observation", "Floor", "Location", "Description",
	"Impact", "Likelihood", "Severity", "Risk Rating",
	"Corrective Action Required", "Responsible Person", "Deadline",
	"Photo Evidence", "Closed Photo", "Status",
}

var reportColumnWidths = map[string]float64{
	"A": 8, "B": 20, "C": 15, "D": 35, "E": 60, "F": 45, "G": 12, "H": 12,
	"I": 12, "J": 60, "K": 20, "L": 15, "M": 22, "N": 20, "O": 12,
}

// bandFillColors colors the Risk Rating cell per band; Unscored rows stay
// unfilled.
var bandFillColors = map[risk.Band]string{
	risk.Low:      "C6EFCE",
	risk.Medium:   "FFEB9C",
	risk.High:     "FFC7CE",
	risk.Critical: "9C0006",
}

// BuildReport renders the records into a self-contained xlsx document, one
// row per record in the order given. It does not re-sort. A photo that fails
// to decode marks its own cell and never aborts the export.
func BuildReport(ctx context.Context, records []observation.Record) ([]byte, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "exporter"))

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", reportSheetName); err != nil {
		return nil, errs.Wrap(err, "rename sheet")
	}

	styles, err := newReportStyles(f)
	if err != nil {
		return nil, errs.Wrap(err, "build styles")
	}

	if err := writeTitleBlock(f, styles); err != nil {
		return nil, errs.Wrap(err, "write title block")
	}
	if err := writeHeaderRow(f, styles); err != nil {
		return nil, errs.Wrap(err, "write header row")
	}

	for col, width := range reportColumnWidths {
		if err := f.SetColWidth(reportSheetName, col, col, width); err != nil {
			return nil, errs.Wrapf(err, "set width of column %s", col)
		}
	}

	for i, rec := range records {
		row := headerRow + 1 + i
		if err := writeRecordRow(logCtx, f, styles, row, rec); err != nil {
			return nil, errs.Wrapf(err, "write row for observation %d", rec.ID)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errs.Wrap(err, "serialize workbook")
	}
	return buf.Bytes(), nil
}

// ReportFilename builds the download name for an export, e.g.
// Full_Safety_Report_20260901.xlsx.
func ReportFilename(dateStamp string) string {
	return fmt.Sprintf("Full_Safety_Report_%s.xlsx", dateStamp)
}

type reportStyles struct {
	title  int
	header int
	cell   int
	byBand map[risk.Band]int
}

func newReportStyles(f *excelize.File) (reportStyles, error) {
	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "000080"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return reportStyles{}, err
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"002060"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return reportStyles{}, err
	}

	cellAlignment := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	cell, err := f.NewStyle(&excelize.Style{Alignment: cellAlignment})
	if err != nil {
		return reportStyles{}, err
	}

	byBand := make(map[risk.Band]int, len(bandFillColors))
	for band, color := range bandFillColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Alignment: cellAlignment,
		})
		if err != nil {
			return reportStyles{}, err
		}
		byBand[band] = id
	}

	return reportStyles{title: title, header: header, cell: cell, byBand: byBand}, nil
}

func writeTitleBlock(f *excelize.File, styles reportStyles) error {
	// A1:C4 is reserved for a letterhead logo; D1:O4 carries the title.
	if err := f.MergeCell(reportSheetName, "A1", "C4"); err != nil {
		return err
	}
	if err := f.MergeCell(reportSheetName, "D1", "O4"); err != nil {
		return err
	}
	if err := f.SetCellValue(reportSheetName, "D1", reportTitle); err != nil {
		return err
	}
	return f.SetCellStyle(reportSheetName, "D1", "D1", styles.title)
}

func writeHeaderRow(f *excelize.File, styles reportStyles) error {
	for i, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(reportSheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(reportSheetName, cell, cell, styles.header); err != nil {
			return err
		}
	}
	return nil
}

func writeRecordRow(ctx context.Context, f *excelize.File, styles reportStyles, row int, rec observation.Record) error {
	values := []any{
		rec.ID, rec.DateStr, rec.Floor, rec.Location, rec.Description,
		rec.Impact, rec.Likelihood, rec.Severity, rec.RiskRating,
		rec.CorrectiveAction, titleCase(rec.ResponsiblePerson), rec.Deadline,
		nil, "Attach closed photo", "Open",
	}

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if value != nil {
			if err := f.SetCellValue(reportSheetName, cell, value); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(reportSheetName, cell, cell, styles.cell); err != nil {
			return err
		}
	}

	if err := f.SetRowHeight(reportSheetName, row, photoRowHeightPt); err != nil {
		return err
	}

	ratingCell, err := excelize.CoordinatesToCellName(columnIndex("Risk Rating"), row)
	if err != nil {
		return err
	}
	if styleID, ok := styles.byBand[rec.Band()]; ok {
		if err := f.SetCellStyle(reportSheetName, ratingCell, ratingCell, styleID); err != nil {
			return err
		}
	}

	photoCell, err := excelize.CoordinatesToCellName(columnIndex("Photo Evidence"), row)
	if err != nil {
		return err
	}
	if len(rec.PhotoBytes) == 0 {
		return f.SetCellValue(reportSheetName, photoCell, "No Photo")
	}
	if err := embedPhoto(f, photoCell, rec.PhotoBytes); err != nil {
		logging.Error(ctx, "photo embedding failed, continuing export",
			slog.Int64("observation_id", rec.ID),
			slog.Any("err", errs.Loggable(err)))
		return f.SetCellValue(reportSheetName, photoCell, "Error")
	}
	return nil
}

// embedPhoto places the image at the fixed target size by scaling from its
// native dimensions.
func embedPhoto(f *excelize.File, cell string, photo []byte) error {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(photo))
	if err != nil {
		return errs.Wrap(err, "decode image dimensions")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("degenerate image dimensions %dx%d", cfg.Width, cfg.Height)
	}

	var ext string
	switch format {
	case "png":
		ext = ".png"
	case "jpeg":
		ext = ".jpg"
	case "gif":
		ext = ".gif"
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}

	return f.AddPictureFromBytes(reportSheetName, cell, &excelize.Picture{
		Extension: ext,
		File:      photo,
		Format: &excelize.GraphicOptions{
			ScaleX: photoTargetWidthPx / float64(cfg.Width),
			ScaleY: photoTargetHeightPx / float64(cfg.Height),
		},
	})
}

func columnIndex(header string) int {
	for i, h := range reportHeaders {
		if h == header {
			return i + 1
		}
	}
	return 0
}

// titleCase capitalizes each letter that follows a non-letter, so
// "director of p&c" becomes "Director Of P&C".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
