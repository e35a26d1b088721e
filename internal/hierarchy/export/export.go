// Package export encodes flattened hierarchy rows as an xlsx workbook.
package export

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"partnersearch/internal/hierarchy"
	dErrors "partnersearch/pkg/domain-errors"
)

const (
	HierarchySheet = "Corporate Hierarchy"
	MetadataSheet  = "Metadata"
	ContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	instructions = "Use Level column to understand hierarchy. Negative levels = upward (parents), Positive levels = downward (subsidiaries)"
)

type column struct {
	header string
	width  float64
	value  func(r hierarchy.ExportRow) any
}

var columns = []column{
	{"Level", 8, func(r hierarchy.ExportRow) any { return r.Level }},
	{"Expand", 8, func(r hierarchy.ExportRow) any { return r.Expand }},
	{"Entity Type", 15, func(r hierarchy.ExportRow) any { return string(r.EntityType) }},
	{"D-U-N-S", 12, func(r hierarchy.ExportRow) any { return r.DUNS }},
	{"Name", 30, func(r hierarchy.ExportRow) any { return r.Name }},
	{"Legal Name", 30, func(r hierarchy.ExportRow) any { return r.LegalName }},
	{"Operating Status", 15, func(r hierarchy.ExportRow) any { return r.OperatingStatus }},
	{"Address", 40, func(r hierarchy.ExportRow) any { return r.Address }},
	{"Phone", 15, func(r hierarchy.ExportRow) any { return r.Phone }},
	{"Email", 25, func(r hierarchy.ExportRow) any { return r.Email }},
	{"Website", 25, func(r hierarchy.ExportRow) any { return r.Website }},
	{"Industry", 20, func(r hierarchy.ExportRow) any { return r.Industry }},
	{"Employee Count", 15, func(r hierarchy.ExportRow) any { return optionalInt(r.EmployeeCount) }},
	{"Sales Volume", 15, func(r hierarchy.ExportRow) any { return r.SalesVolume }},
	{"Year Started", 12, func(r hierarchy.ExportRow) any { return optionalInt(r.YearStarted) }},
	{"Legal Form", 15, func(r hierarchy.ExportRow) any { return r.LegalForm }},
	{"National IDs", 30, func(r hierarchy.ExportRow) any { return r.NationalIDs }},
	{"Relationship", 12, func(r hierarchy.ExportRow) any { return r.Relationship }},
	{"Relationship Description", 25, func(r hierarchy.ExportRow) any { return r.RelationshipDescription }},
}

// Headers returns the hierarchy sheet column headers in order.
func Headers() []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.header
	}
	return out
}

// Metadata describes the export for the metadata sheet.
type Metadata struct {
	CompanyName string
	DUNS        string
	ExportedAt  time.Time
	DataSource  string
	Language    string
}

// Build lays out the hierarchy and metadata sheets. The caller owns the file
// and must Close it.
func Build(rows []hierarchy.ExportRow, meta Metadata) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := layout(f, rows, meta); err != nil {
		_ = f.Close()
		return nil, dErrors.Wrap(err, dErrors.CodeExportEncoding, "failed to build spreadsheet")
	}
	return f, nil
}

func layout(f *excelize.File, rows []hierarchy.ExportRow, meta Metadata) error {
	if err := f.SetSheetName(f.GetSheetName(0), HierarchySheet); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(HierarchySheet, name, name, c.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(HierarchySheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		values := make([]any, len(columns))
		for j, c := range columns {
			values[j] = c.value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(HierarchySheet, cell, &values); err != nil {
			return err
		}
	}

	if err := styleHeader(f); err != nil {
		return err
	}
	return writeMetadata(f, meta, len(rows))
}

func styleHeader(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(HierarchySheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(HierarchySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeMetadata(f *excelize.File, meta Metadata, total int) error {
	if _, err := f.NewSheet(MetadataSheet); err != nil {
		return err
	}
	dataSource := meta.DataSource
	if dataSource == "" {
		dataSource = "D&B API"
	}
	entries := [][]any{
		{"Property", "Value"},
		{"Company Name", meta.CompanyName},
		{"D-U-N-S Number", meta.DUNS},
		{"Export Date", meta.ExportedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{"Total Entities", total},
		{"Data Source", dataSource},
		{"Language", meta.Language},
		{"Instructions", instructions},
	}
	for i, e := range entries {
		if err := f.SetSheetRow(MetadataSheet, "A"+strconv.Itoa(i+1), &e); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(MetadataSheet, "A", "A", 20); err != nil {
		return err
	}
	return f.SetColWidth(MetadataSheet, "B", "B", 60)
}

// Write encodes the workbook to w.
func Write(w io.Writer, rows []hierarchy.ExportRow, meta Metadata) error {
	f, err := Build(rows, meta)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return dErrors.Wrap(err, dErrors.CodeExportEncoding, "failed to encode spreadsheet")
	}
	return nil
}

// Encode returns the workbook bytes.
func Encode(rows []hierarchy.ExportRow, meta Metadata) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, rows, meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9]`)

// FileName builds Corporate_Hierarchy_<name>_<duns>_<YYYY-MM-DD>.xlsx with every
// character outside [A-Za-z0-9] in the company name replaced by '_'.
func FileName(companyName, duns string, at time.Time) string {
	if companyName == "" {
		companyName = "Company"
	}
	if duns == "" {
		duns = "Unknown"
	}
	return fmt.Sprintf("Corporate_Hierarchy_%s_%s_%s.xlsx",
		unsafeFileChars.ReplaceAllString(companyName, "_"),
		duns,
		at.UTC().Format(time.DateOnly),
	)
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
