package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"subseg/internal/services"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeFile(t, "chunks.csv", "\ufeffid,text\n1,\"\"\"Hello there.\"\"\"\n2,  \n3,General Kenobi!\n4\n")
	got, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"Hello there.", "General Kenobi!"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %q, want %q", got, want)
	}
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "chunks.txt", "first line\n\n  \"second line\"  \n第三行\n")
	got, err := Load(path, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"first line", "second line", "第三行"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %q, want %q", got, want)
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.xlsx")
	f := excelize.NewFile()
	rows := [][]any{
		{"speaker", "Text"},
		{"A", `"Although it rained heavily,"`},
		{"B", ""},
		{"A", "we went hiking."},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	_ = f.Close()

	got, err := Load(path, Options{Column: "text"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"Although it rained heavily,", "we went hiking."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %q, want %q", got, want)
	}

	if _, err := Load(path, Options{Sheet: "Missing"}); !errors.Is(err, services.ErrInputUnavailable) {
		t.Fatalf("expected input unavailable for missing sheet, got %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		opts Options
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), Options{}},
		{"unsupported extension", writeFile(t, "chunks.json", "[]"), Options{}},
		{"missing column", writeFile(t, "cols.csv", "id,body\n1,hello\n"), Options{}},
		{"only blanks", writeFile(t, "blank.txt", "\n  \n\"\"\n"), Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path, tt.opts); !errors.Is(err, services.ErrInputUnavailable) {
				t.Fatalf("expected input unavailable, got %v", err)
			}
		})
	}
}
