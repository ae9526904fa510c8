// mkfixture samples a small, diverse registry Parquet fixture from a full
// national registry extract.
// Usage: go run ./cmd/mkfixture --in testdata/registry.parquet --out testdata/registry-small.parquet --rows 200
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gyeh/pcroster/internal/model"
	"github.com/gyeh/pcroster/internal/output"
	"github.com/gyeh/pcroster/internal/residency"
	"github.com/gyeh/pcroster/internal/source"
)

type bucket struct {
	name string
	want int
	rows []model.RegistryRecord
}

func main() {
	in := flag.String("in", "testdata/registry.parquet", "input registry parquet")
	out := flag.String("out", "testdata/registry-small.parquet", "output parquet")
	region := flag.String("region", "RI", "region code for in-region sampling")
	maxRows := flag.Int("rows", 200, "max rows to output")
	checkOnly := flag.Bool("check", false, "only print stats, don't write")
	flag.Parse()

	reader, err := source.Open[model.RegistryRecord](*in, source.RegistryColumns...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	// Order is the merge priority.
	buckets := []*bucket{
		{name: "organization", want: *maxRows / 10},
		{name: "multi_taxonomy", want: *maxRows / 5},
		{name: "in_region", want: *maxRows / 2},
		{name: "out_of_region", want: *maxRows},
	}
	byName := make(map[string]*bucket, len(buckets))
	for _, b := range buckets {
		byName[b.name] = b
	}
	counts := make(map[string]int)

	buf := make([]model.RegistryRecord, 1024)
	var totalRead int
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			totalRead++
			rec := &buf[i]

			var traits []string
			switch {
			case rec.IsOrganization():
				traits = append(traits, "organization")
			case len(rec.TaxonomyCodes) > 1:
				traits = append(traits, "multi_taxonomy")
			}
			if residency.InRegionByAddress(rec, *region) {
				traits = append(traits, "in_region")
			} else {
				traits = append(traits, "out_of_region")
			}

			placed := false
			for _, name := range traits {
				counts[name]++
				b := byName[name]
				if !placed && len(b.rows) < b.want {
					b.rows = append(b.rows, rec.Clone())
					placed = true
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", readErr)
			os.Exit(1)
		}
	}
	fmt.Printf("Scanned %d rows\n", totalRead)
	for _, b := range buckets {
		fmt.Printf("  %-15s %d\n", b.name, counts[b.name])
	}

	if *checkOnly {
		return
	}

	var selected []model.RegistryRecord
	for _, b := range buckets {
		for _, row := range b.rows {
			if len(selected) >= *maxRows {
				break
			}
			selected = append(selected, row)
		}
	}

	if err := output.WriteFile(*out, selected); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(selected), *out)
	for _, b := range buckets {
		fmt.Printf("  %-15s %d\n", b.name, len(b.rows))
	}
}
