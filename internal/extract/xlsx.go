package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/farolabs/faro/internal/domain"
)

// Header-row detection constants.
const (
	headerScanRows   = 40  // leading rows scanned for a header candidate
	headerMinCells   = 5   // minimum non-empty cells a header row must have
	stringCellWeight = 0.2 // score bonus per string-typed cell
	pivotPenalty     = 0.2 // multiplicative discount for pivot-looking rows
)

// pivotMarkers flag rows produced by pivot-table exports.
var pivotMarkers = []string{
	"etiquetas de fila",
	"etiquetas de columna",
	"total general",
	"suma de",
}

// scoreHeaderRow rates a row's fitness as a header row: one point per
// non-empty cell plus stringCellWeight per string-typed cell, the total
// multiplied by pivotPenalty when the row carries a pivot marker. A cell is
// string-typed when its value does not parse as a number. Also returns the
// non-empty cell count so callers can enforce headerMinCells.
func scoreHeaderRow(cells []string) (float64, int) {
	nonempty := 0
	stringTyped := 0
	for _, c := range cells {
		s := strings.TrimSpace(c)
		if s == "" {
			continue
		}
		nonempty++
		if !looksNumeric(s) {
			stringTyped++
		}
	}

	score := float64(nonempty) + stringCellWeight*float64(stringTyped)
	if isPivotLike(cells) {
		score *= pivotPenalty
	}
	return score, nonempty
}

// findHeaderRow scans the first headerScanRows rows and returns the 1-based
// index of the best-scoring qualified row, or 0 when no row qualifies. Ties
// keep the earliest row.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}

	best := 0
	bestScore := 0.0
	for i := 0; i < limit; i++ {
		score, nonempty := scoreHeaderRow(rows[i])
		if nonempty < headerMinCells {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = i + 1
		}
	}
	return best
}

// isPivotLike reports whether the row's non-empty cells, joined, contain a
// pivot-table marker phrase.
func isPivotLike(cells []string) bool {
	var nonempty []string
	for _, c := range cells {
		s := strings.TrimSpace(c)
		if s != "" {
			nonempty = append(nonempty, strings.ToLower(s))
		}
	}
	joined := strings.Join(nonempty, " ")
	for _, marker := range pivotMarkers {
		if strings.Contains(joined, marker) {
			return true
		}
	}
	return false
}

// looksNumeric reports whether a formatted cell value reads as a number,
// tolerating thousands separators.
func looksNumeric(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.Contains(s, ",") {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
			return true
		}
	}
	return false
}

func hasAnyValue(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// extractXlsx converts a workbook into one record per data row. Sheets
// without a qualified header row, or whose headers still look pivot-like,
// yield nothing.
func extractXlsx(path string) ([]domain.Chunk, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var out []domain.Chunk

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		headerRow := findHeaderRow(rows)
		if headerRow == 0 {
			continue
		}

		headers := trimAll(rows[headerRow-1])
		_, nonempty := scoreHeaderRow(headers)
		if nonempty < headerMinCells {
			continue
		}
		if isPivotLike(headers) {
			continue
		}

		for i := headerRow; i < len(rows); i++ {
			values := rows[i]
			if !hasAnyValue(values) {
				continue
			}

			rowNum := i + 1
			keyMeta := pickKeyMeta(headers, values)

			out = append(out, domain.Chunk{
				Text: buildRowText(sheet, rowNum, headers, values, keyMeta),
				Meta: domain.XlsxRowMeta{
					Path:      path,
					SheetName: sheet,
					RowNum:    rowNum,
					HeaderRow: headerRow,
					Keys:      keyMeta,
				},
			})
		}
	}

	return out, nil
}
