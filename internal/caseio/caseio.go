// Package caseio reads case files and writes analyzer results.
package caseio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/normalize"
	"github.com/gyeh/billcheck/internal/parquetread"
)

// LoadCase reads a case JSON file. Line items listed inline have their codes,
// modifiers and revenue codes normalized; a lineItemsParquet file (relative
// paths resolve against the case file's directory) is appended after them.
// Parquet rows that cannot be normalized are reported together as a
// *model.ValidationError.
func LoadCase(path string) (*model.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open case: %w", err)
	}
	defer f.Close()

	c, err := DecodeCase(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if c.LineItemsParquet != "" {
		pq := c.LineItemsParquet
		if !filepath.IsAbs(pq) {
			pq = filepath.Join(filepath.Dir(path), pq)
		}
		lines, rejects, err := parquetread.ReadLines(pq)
		if err != nil {
			return nil, fmt.Errorf("read line items: %w", err)
		}
		if len(rejects) > 0 {
			ve := &model.ValidationError{}
			for _, r := range rejects {
				ve.Violations = append(ve.Violations, r.Error())
			}
			return nil, ve
		}
		c.LineItems = append(c.LineItems, lines...)
	}
	return c, nil
}

// DecodeCase parses one case from r, rejecting unknown fields.
func DecodeCase(r io.Reader) (*model.Case, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var c model.Case
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}
	for i := range c.LineItems {
		l := &c.LineItems[i]
		l.Code = normalize.Code(l.Code)
		l.CodeSystem = strings.ToUpper(strings.TrimSpace(l.CodeSystem))
		l.Modifiers = normalize.Modifiers(strings.Join(l.Modifiers, ","))
		l.RevenueCode = normalize.RevenueCode(l.RevenueCode)
		l.POS = normalize.Code(l.POS)
	}
	return &c, nil
}

// WriteResult encodes res as indented JSON.
func WriteResult(w io.Writer, res *model.AnalyzerResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// WriteResultFile writes res to path, or to stdout when path is "" or "-".
func WriteResultFile(path string, res *model.AnalyzerResult) error {
	if path == "" || path == "-" {
		return WriteResult(os.Stdout, res)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := WriteResult(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
