package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Format is an output encoding of a report table.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

// ParseFormat accepts a format name case-insensitively; empty means JSON.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatExcel, FormatPDF:
		return f, nil
	case "excel":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// Table is a fully rendered report: every cell is already a string so each
// format shows the same values in the same column order.
type Table struct {
	Title       string
	Subtitle    string
	Columns     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// ContentType returns the MIME type for a format
func ContentType(format Format) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// FileExtension returns the file extension for a format
func FileExtension(format Format) string {
	switch format {
	case FormatCSV:
		return ".csv"
	case FormatExcel:
		return ".xlsx"
	case FormatPDF:
		return ".pdf"
	default:
		return ".json"
	}
}

// WriteTable encodes table in one of the file formats. JSON is produced by
// the caller from typed rows and is not handled here.
func WriteTable(w io.Writer, format Format, table Table) error {
	switch format {
	case FormatCSV:
		exporter := NewCSVExporter(w, DefaultCSVOptions())
		if err := exporter.WriteTable(table); err != nil {
			return err
		}
		return exporter.Flush()
	case FormatExcel:
		exporter := NewExcelExporter(DefaultExcelOptions())
		defer exporter.Close()
		if err := exporter.WriteTable(table); err != nil {
			return err
		}
		return exporter.Render(w)
	case FormatPDF:
		options := DefaultPDFOptions()
		options.Orientation = "landscape"
		generator := NewPDFGenerator(options)
		if err := generator.GenerateReport(table); err != nil {
			return err
		}
		return generator.Render(w)
	default:
		return fmt.Errorf("format %q is not a file format", format)
	}
}
