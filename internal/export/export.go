// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes result sets as CSV tables and as JSON or YAML
// documents. Writers create the parent directory and replace any existing
// file.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/encoding/json"
	"go.yaml.in/yaml/v3"
)

// Row is a value that renders itself as one CSV row.
type Row interface {
	Row() []string
}

// WriteCSV writes header followed by one line per row.
func WriteCSV[R Row](path string, header []string, rows []R) error {
	return writeFile(path, func(w *bufio.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(r.Row()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteColumn writes a single-column CSV table.
func WriteColumn(path, header string, values []string) error {
	rows := make([]column, len(values))
	for i, v := range values {
		rows[i] = column(v)
	}
	return WriteCSV(path, []string{header}, rows)
}

type column string

func (c column) Row() []string { return []string{string(c)} }

// WriteJSON writes v as indented JSON without HTML escaping, so URLs keep
// their ampersands.
func WriteJSON(path string, v any) error {
	return writeFile(path, func(w *bufio.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	})
}

// WriteYAML writes v as YAML.
func WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeFile(path, func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeFile(path string, fill func(*bufio.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
