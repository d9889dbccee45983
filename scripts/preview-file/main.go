// preview-file runs an import preview against a local file and prints the
// datasets and schema suggestions as JSON.
//
// Usage: go run ./scripts/preview-file [-format csv|excel|sql] [-sheet name] [-registry schema.yaml] <file>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ingest/pkg/delimited"
	"github.com/ekaya-inc/ekaya-ingest/pkg/matcher"
	"github.com/ekaya-inc/ekaya-ingest/pkg/registry"
	"github.com/ekaya-inc/ekaya-ingest/pkg/services"
	"github.com/ekaya-inc/ekaya-ingest/pkg/spreadsheet"
)

func main() {
	format := flag.String("format", "", "Input format (csv, excel, sql); detected when empty")
	sheet := flag.String("sheet", "", "Only parse this worksheet")
	header := flag.String("header", "auto", "Header row: auto, true or false")
	registryPath := flag.String("registry", "", "YAML schema registry; the built-in registry when empty")
	maxRows := flag.Int("max-rows", 0, "Row limit for CSV and Excel; server default when 0")
	summary := flag.Bool("summary", false, "Print only the best table and mapping per dataset")
	verbose := flag.Bool("v", false, "Log at debug level")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if *verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	headerMode, err := delimited.ParseHeaderMode(*header)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -header: %v\n", err)
		os.Exit(1)
	}

	tables := registry.Default()
	if *registryPath != "" {
		tables, err = registry.LoadFile(*registryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load registry: %v\n", err)
			os.Exit(1)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
		os.Exit(1)
	}

	svc := services.NewPreviewService(
		tables,
		spreadsheet.NewExcelizeReader(),
		services.DefaultImportOptions(),
		matcher.DefaultOptions(),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := svc.Preview(ctx, data, services.PreviewOptions{
		Format:    *format,
		Filename:  path,
		SheetName: *sheet,
		HasHeader: headerMode,
		MaxRows:   *maxRows,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Preview failed: %v\n", err)
		os.Exit(1)
	}

	var out any = result
	if *summary {
		out = summarize(result)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
}

type datasetSummary struct {
	Dataset  string            `json:"dataset"`
	Rows     int               `json:"rows"`
	Warnings []string          `json:"warnings,omitempty"`
	Table    string            `json:"table,omitempty"`
	Score    float64           `json:"score,omitempty"`
	Mapping  map[string]string `json:"mapping,omitempty"`
	Required float64           `json:"requiredCoverage,omitempty"`
	Reasons  []string          `json:"reasons,omitempty"`
	Types    map[string]string `json:"types"`
}

func summarize(result *services.PreviewResult) []datasetSummary {
	out := make([]datasetSummary, 0, len(result.Datasets))
	for i, ds := range result.Datasets {
		s := datasetSummary{
			Dataset:  ds.Name,
			Rows:     ds.RowCount,
			Warnings: ds.Warnings,
			Types:    make(map[string]string, len(ds.Columns)),
		}
		for _, col := range ds.Columns {
			s.Types[col.Name] = string(col.InferredType)
		}
		if best := result.SchemaSuggestions[i].BestTable; best != nil {
			s.Table = best.Table
			s.Score = best.Score
			s.Mapping = best.SuggestedMapping
			s.Required = best.RequiredCoverage
			s.Reasons = best.Reasons
		}
		out = append(out, s)
	}
	return out
}
