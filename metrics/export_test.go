package metrics

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func exportFixture() [][]string {
	r := NewReport()
	r.AddDefault([]Block{
		{Language: "Python", FilePath: "example.py", NodeName: "example.py", NodeType: "module", StartRow: 1, StartCol: 1, EndRow: 36, EndCol: 1, ALOC: 36, CC: 2, NOM: 8, NOC: 1},
		{Language: "Python", FilePath: "example.py", NodeName: "greet", NodeType: "function_definition", StartRow: 1, StartCol: 1, EndRow: 2, EndCol: 29, ALOC: 2, CC: 1, PC: 1},
	})
	return r.Table("")
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "metrics.csv")
	if err := WriteCSV(path, exportFixture()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if !reflect.DeepEqual(rows[0], TableHeader) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][6] != "greet" || rows[2][17] != "1" {
		t.Errorf("greet row = %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := WriteJSON(path, exportFixture()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["node_type"] != "module" {
		t.Errorf("node_type = %q, want module", records[0]["node_type"])
	}
	if records[1]["node_name"] != "greet" || records[1]["pc"] != "1" {
		t.Errorf("greet record = %v", records[1])
	}
}

func TestWriteJSONEmptyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.json")
	if err := WriteJSON(path, [][]string{TableHeader}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
