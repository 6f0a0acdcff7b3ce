package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	Format(data any) string
}

// NewFormatter returns a Formatter for the given format string.
// Supported formats: "table" (default), "json", "yaml".
func NewFormatter(format string) Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &JSONFormatter{}
	case "yaml":
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// TableFormatter formats data as aligned text tables using tabwriter.
// Struct fields tagged `table:"-"` are omitted; wide payloads like config
// and details maps stay visible through the json/yaml formatters instead.
type TableFormatter struct{}

func (f *TableFormatter) Format(data any) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Len() == 0 {
			return "No resources found.\n"
		}
		elem := v.Index(0)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct {
			t := elem.Type()
			cols := tableColumns(t)

			headers := make([]string, 0, len(cols))
			for _, c := range cols {
				headers = append(headers, strings.ToUpper(t.Field(c).Name))
			}
			fmt.Fprintln(w, strings.Join(headers, "\t"))

			for i := 0; i < v.Len(); i++ {
				row := v.Index(i)
				if row.Kind() == reflect.Ptr {
					row = row.Elem()
				}
				vals := make([]string, 0, len(cols))
				for _, c := range cols {
					vals = append(vals, cellValue(row.Field(c)))
				}
				fmt.Fprintln(w, strings.Join(vals, "\t"))
			}
		} else {
			// Slice of non-struct (e.g., []string)
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
		}
	case reflect.Struct:
		t := v.Type()
		for _, c := range tableColumns(t) {
			fmt.Fprintf(w, "%s:\t%s\n", t.Field(c).Name, cellValue(v.Field(c)))
		}
	default:
		fmt.Fprintln(w, data)
	}

	w.Flush()
	return buf.String()
}

// tableColumns returns the indexes of fields shown in table mode.
func tableColumns(t reflect.Type) []int {
	cols := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("table") == "-" {
			continue
		}
		cols = append(cols, i)
	}
	return cols
}

// cellValue renders one field for table display: timestamps as RFC 3339,
// nil pointers and empty strings as a dash.
func cellValue(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if ts, ok := v.Interface().(time.Time); ok {
		if ts.IsZero() {
			return "-"
		}
		return ts.Format(time.RFC3339)
	}
	s := fmt.Sprintf("%v", v.Interface())
	if s == "" {
		return "-"
	}
	return s
}

// JSONFormatter formats data as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("error formatting JSON: %v\n", err)
	}
	return string(b) + "\n"
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any) string {
	b, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("error formatting YAML: %v\n", err)
	}
	return string(b)
}
