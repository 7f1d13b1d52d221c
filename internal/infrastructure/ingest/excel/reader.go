package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

// Reader loads curated facts from spreadsheet exports (provider directories,
// rate schedules). The first row is a header; a "key" and "value" column are
// required, "category" is optional.
type Reader struct {
	source    string
	sourceURL string
}

func NewReader(source, sourceURL string) *Reader {
	return &Reader{source: source, sourceURL: sourceURL}
}

func (r *Reader) ReadFacts(path string) ([]domain.Fact, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", path)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	keyCol, valueCol, categoryCol := -1, -1, -1
	for idx, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case "key":
			keyCol = idx
		case "value":
			valueCol = idx
		case "category":
			categoryCol = idx
		}
	}
	if keyCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("sheet %s is missing key or value column", sheets[0])
	}

	now := time.Now().UTC()
	var facts []domain.Fact
	for _, row := range rows[1:] {
		key := cell(row, keyCol)
		value := cell(row, valueCol)
		if key == "" || value == "" {
			continue
		}
		category := cell(row, categoryCol)
		if category == "" {
			category = "imported_data"
		}
		facts = append(facts, domain.Fact{
			ID:          factID(r.source, key),
			Category:    category,
			Key:         key,
			Value:       value,
			Source:      r.source,
			SourceURL:   r.sourceURL,
			LastUpdated: now,
		})
	}
	return facts, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func factID(source, key string) string {
	normalize := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	}
	return fmt.Sprintf("xlsx_%s_%s", normalize(source), normalize(key))
}
