// Package export turns report series into downloadable or printable artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

const (
	// CSVFilename is the name offered to the browser for the download.
	CSVFilename = "report.csv"
	// CSVContentType is the MIME type of the download.
	CSVContentType = "text/csv; charset=utf-8"
)

// CSVHeader is the header row of every exported series.
var CSVHeader = []string{"Name", "Value"}

// ToCSV renders the series as a two-column CSV document with a Name,Value
// header. Fields holding separators, quotes or newlines are quoted.
func ToCSV(series []models.SeriesPoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, point := range Rows(series) {
		if err := w.Write(point); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// Rows converts the series into string records without the header.
func Rows(series []models.SeriesPoint) [][]string {
	rows := make([][]string, 0, len(series))
	for _, point := range series {
		rows = append(rows, []string{point.Label, FormatValue(point.Value)})
	}
	return rows
}

// FormatValue prints whole numbers without a fractional part.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
