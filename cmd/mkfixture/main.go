// mkfixture splits a case JSON into a case stub plus a Parquet line-item file,
// the layout an upstream parser produces for large bills.
// Usage: go run ./cmd/mkfixture --in testdata/case.json --out testdata/split --max-lines 200
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/billcheck/internal/caseio"
	"github.com/gyeh/billcheck/internal/model"
	"github.com/gyeh/billcheck/internal/parquetread"
)

func main() {
	in := flag.String("in", "testdata/case.json", "input case JSON")
	out := flag.String("out", "testdata/split", "output directory")
	maxLines := flag.Int("max-lines", 0, "max line items to keep per artifact (0 keeps all)")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	c, err := caseio.LoadCase(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load case: %v\n", err)
		os.Exit(1)
	}

	types := c.DocTypes()
	perArtifact := make(map[string]int)
	var selected []model.LineItem
	for _, l := range c.LineItems {
		if *maxLines > 0 && perArtifact[l.ArtifactID] >= *maxLines {
			continue
		}
		perArtifact[l.ArtifactID]++
		selected = append(selected, l)
	}

	systems := make(map[string]int)
	byDoc := make(map[model.DocType]int)
	for _, l := range selected {
		byDoc[types[l.ArtifactID]]++
		if cs, ok := model.CodeSystemByName(l.CodeSystem); ok {
			systems[cs.Name]++
		} else {
			systems["other"]++
		}
	}
	fmt.Printf("Case %s: %d of %d lines selected\n", c.CaseID, len(selected), len(c.LineItems))
	for _, dt := range []model.DocType{model.DocBill, model.DocEOB, model.DocLetter, model.DocPortal, model.DocUnknown} {
		if n := byDoc[dt]; n > 0 {
			fmt.Printf("  %-10s %d\n", dt, n)
		}
	}
	fmt.Println("Code systems:")
	for _, cs := range model.AllCodeSystems {
		if n := systems[cs.Name]; n > 0 {
			fmt.Printf("  %-10s %d\n", cs.Name, n)
		}
	}
	if n := systems["other"]; n > 0 {
		fmt.Printf("  %-10s %d\n", "other", n)
	}
	if *checkOnly {
		return
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	rows := make([]model.LineItemRow, len(selected))
	for i := range selected {
		rows[i] = parquetread.ToRow(&selected[i])
	}
	const linesFile = "lines.parquet"
	if err := parquetread.WriteRows(filepath.Join(*out, linesFile), rows); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	stub := *c
	stub.LineItems = []model.LineItem{}
	stub.LineItemsParquet = linesFile
	data, err := json.MarshalIndent(&stub, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode case: %v\n", err)
		os.Exit(1)
	}
	casePath := filepath.Join(*out, "case.json")
	if err := os.WriteFile(casePath, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write case: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rows to %s and case stub to %s\n", len(rows), filepath.Join(*out, linesFile), casePath)
}
