// Command kharcha-export is a one-shot tool that reads a tracker database
// and writes either a JSON snapshot of the full dataset or the expense
// analysis CSV report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/export"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/tracker"
)

func main() {
	var (
		dbPath = flag.String("db", "./data/kharcha.db", "path to the SQLite database")
		outDir = flag.String("out", ".", "directory to write the export file into")
		format = flag.String("format", "json", "export format: json or csv")
		start  = flag.String("start", "", "start date for the CSV report (YYYY-MM-DD)")
		end    = flag.String("end", "", "end date for the CSV report (YYYY-MM-DD)")
	)
	flag.Parse()

	logger := log.New(log.Config{Component: "kharcha-export"})

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		logger.Error("Failed to open database", "error", err, "path", *dbPath)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	tr, err := tracker.Load(ctx, store)
	if err != nil {
		logger.Error("Failed to load tracker state", "error", err)
		os.Exit(1)
	}

	var (
		data []byte
		name string
	)
	switch *format {
	case "json":
		data, name, err = tr.ExportSnapshot()
	case "csv":
		expenses := tr.Expenses()
		if *start != "" || *end != "" {
			filter, ferr := rangeFilter(*start, *end)
			if ferr != nil {
				logger.Error("Invalid date range", "error", ferr)
				os.Exit(1)
			}
			expenses = export.Apply(expenses, filter)
		}
		data, name, err = export.AnalysisCSV(expenses, tr.Settings(), time.Now())
	default:
		logger.Error("Unknown format", "format", *format)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Export failed", "error", err, "format", *format)
		os.Exit(1)
	}

	path := filepath.Join(*outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("Failed to write export file", "error", err, "path", path)
		os.Exit(1)
	}
	logger.Info("Export written", "path", path, "bytes", len(data))
}

func rangeFilter(start, end string) (export.Filter, error) {
	if start == "" || end == "" {
		return export.Filter{}, fmt.Errorf("both -start and -end are required for a date range")
	}
	from, err := time.Parse("2006-01-02", start)
	if err != nil {
		return export.Filter{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.Parse("2006-01-02", end)
	if err != nil {
		return export.Filter{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return export.Filter{Start: core.DateOf(from), End: core.DateOf(to)}, nil
}
