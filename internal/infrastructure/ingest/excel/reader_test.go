package excel

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	file := excelize.NewFile()
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := file.SetSheetRow("Sheet1", cellRef, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "facts.xlsx")
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestReadFacts(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"key", "value", "category"},
		{"total_eidbi_providers", "328", "providers"},
		{"hourly_rate", "85.00", "rates"},
	})

	reader := NewReader("DHS Provider Directory", "https://mn.gov/dhs")
	facts, err := reader.ReadFacts(path)
	if err != nil {
		t.Fatalf("ReadFacts() error = %v", err)
	}
	if len(facts) != 2 {
		t.Fatalf("expected 2 facts, got %d", len(facts))
	}

	first := facts[0]
	if first.ID != "xlsx_dhs_provider_directory_total_eidbi_providers" {
		t.Fatalf("unexpected id %q", first.ID)
	}
	if first.Key != "total_eidbi_providers" || first.Value != "328" || first.Category != "providers" {
		t.Fatalf("unexpected fact %+v", first)
	}
	if first.Source != "DHS Provider Directory" {
		t.Fatalf("unexpected source %q", first.Source)
	}
	if first.LastUpdated.IsZero() {
		t.Fatalf("expected LastUpdated to be set")
	}
}

func TestReadFactsDefaultsCategory(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"key", "value"},
		{"program_start_year", "2015"},
	})

	facts, err := NewReader("DHS", "").ReadFacts(path)
	if err != nil {
		t.Fatalf("ReadFacts() error = %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("expected 1 fact, got %d", len(facts))
	}
	if facts[0].Category != "imported_data" {
		t.Fatalf("expected default category, got %q", facts[0].Category)
	}
}

func TestReadFactsSkipsBlankRows(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"key", "value"},
		{"", "orphan value"},
		{"orphan_key", ""},
		{"kept", "yes"},
	})

	facts, err := NewReader("DHS", "").ReadFacts(path)
	if err != nil {
		t.Fatalf("ReadFacts() error = %v", err)
	}
	if len(facts) != 1 || facts[0].Key != "kept" {
		t.Fatalf("expected only the complete row, got %+v", facts)
	}
}

func TestReadFactsMissingColumns(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"name", "amount"},
		{"x", "1"},
	})

	if _, err := NewReader("DHS", "").ReadFacts(path); err == nil {
		t.Fatalf("expected error for missing key/value columns")
	}
}
