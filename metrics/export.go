package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteCSV writes a header-prefixed table to a CSV file, creating parent
// directories as needed.
func WriteCSV(path string, table [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range table {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteJSON writes a header-prefixed table as an array of objects keyed by
// the header columns.
func WriteJSON(path string, table [][]string) error {
	records := make([]map[string]string, 0, len(table))
	if len(table) > 1 {
		header := table[0]
		for _, row := range table[1:] {
			record := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(row) {
					record[col] = row[i]
				}
			}
			records = append(records, record)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return nil
}
