// Package dataset holds the reference dataset used to populate the form's
// choice lists. It is loaded once and read-only afterwards.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-laptopprice/pkg/feature"
)

// Format names a supported encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Dataset is a column oriented view over the reference rows.
type Dataset struct {
	columns []string
	values  map[string][]string
	rows    int
}

// FormatFromName infers the format from a file extension. Unknown extensions
// default to CSV.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Parse decodes data in the given format and checks that every categorical
// feature column is present.
func Parse(format Format, data []byte) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch format {
	case FormatCSV:
		ds, err = parseCSV(data)
	case FormatJSON:
		var records []map[string]any
		if err = json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("dataset: decode json: %w", err)
		}
		ds, err = fromRecords(records)
	case FormatYAML:
		var records []map[string]any
		if err = yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("dataset: decode yaml: %w", err)
		}
		ds, err = fromRecords(records)
	default:
		return nil, fmt.Errorf("dataset: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	if ds.rows == 0 {
		return nil, errors.New("dataset: no rows")
	}
	for _, column := range feature.CategoricalColumns() {
		if !ds.HasColumn(column) {
			return nil, fmt.Errorf("dataset: missing column %q", column)
		}
	}
	return ds, nil
}

// ParseNamed parses data using the format implied by name.
func ParseNamed(name string, data []byte) (*Dataset, error) {
	return Parse(FormatFromName(name), data)
}

func parseCSV(data []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset: csv has no header")
		}
		return nil, fmt.Errorf("dataset: read csv header: %w", err)
	}

	ds := &Dataset{
		columns: append([]string(nil), header...),
		values:  make(map[string][]string, len(header)),
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read csv row %d: %w", ds.rows+1, err)
		}
		for i, column := range header {
			ds.values[column] = append(ds.values[column], record[i])
		}
		ds.rows++
	}
	return ds, nil
}

func fromRecords(records []map[string]any) (*Dataset, error) {
	ds := &Dataset{values: make(map[string][]string)}
	seen := make(map[string]bool)
	for i, record := range records {
		if record == nil {
			return nil, fmt.Errorf("dataset: record %d is empty", i)
		}
		keys := make([]string, 0, len(record))
		for key := range record {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				ds.columns = append(ds.columns, key)
			}
			ds.values[key] = append(ds.values[key], stringify(record[key]))
		}
		ds.rows++
	}
	return ds, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Columns returns the column names in first-seen order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn reports whether column exists.
func (d *Dataset) HasColumn(column string) bool {
	_, ok := d.values[column]
	return ok
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.rows
}

// Distinct returns the sorted unique non-empty values of column.
func (d *Dataset) Distinct(column string) []string {
	values := d.values[column]
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
