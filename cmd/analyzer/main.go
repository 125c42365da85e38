package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"idacli/internal/analysis"
	"idacli/internal/config"
	"idacli/internal/dataprocessing"
	"idacli/internal/exporter"
	"idacli/internal/infrastructure"
)

func main() {
	inFile := flag.String("in", "", "input spreadsheet (.xlsx, .xlsm, .csv or .txt)")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	writeExcel := flag.Bool("excel", true, "write the Excel workbook report")
	writeWord := flag.Bool("word", false, "write the Word document report")
	writeCSV := flag.Bool("csv", false, "write per-result CSV exports")
	groupBy := flag.String("group-by", "", "comma-separated extra column keys for price-variance grouping")
	flag.Parse()

	if *inFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: analyzer -in <spreadsheet> [-out <dir>] [-excel] [-word] [-csv] [-group-by key1,key2]")
		os.Exit(1)
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *outDir == "" {
		*outDir = paths.ReportsDir
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
		cfg.Logging.FilePath = paths.GetLogPath("analyzer.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	extraKeys := cfg.Analysis.ExtraGroupKeys
	if *groupBy != "" {
		extraKeys = splitKeys(*groupBy)
	}

	logger.Info("Starting import declaration analysis",
		slog.String("input", *inFile),
		slog.String("output_dir", *outDir),
		slog.Any("group_by", extraKeys))

	fmt.Printf("Loading %s...\n", *inFile)
	start := time.Now()

	table, err := dataprocessing.LoadFile(*inFile)
	if err != nil {
		var parseErr *dataprocessing.ParseError
		if errors.As(err, &parseErr) {
			logger.Error("Input file could not be parsed",
				slog.String("source", parseErr.Source),
				slog.String("error", parseErr.Err.Error()))
		} else {
			logger.Error("Failed to load input file", slog.String("error", err.Error()))
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d rows, %d columns\n", table.Len(), len(table.Columns))

	pipeline := analysis.NewPipeline(logger, analysis.PriceVarianceOptions{ExtraKeys: extraKeys})
	report := pipeline.Run(context.Background(), table, filepath.Base(*inFile))

	fmt.Printf("Refund candidates:        %d\n", len(report.Refund.Items))
	fmt.Printf("FTA refund reviews:       %d\n", report.Refund.FTACount)
	fmt.Printf("Low-risk lines:           %d\n", len(report.LowRisk.Items))
	fmt.Printf("Tariff-inconsistent rows: %d (%d specs)\n", len(report.Tariff.Items), report.Tariff.FlaggedSpecs)
	fmt.Printf("Price groups:             %d (%d high risk)\n", len(report.Price.Groups), report.Price.HighRisk)
	for _, warning := range report.Warnings {
		fmt.Printf("Warning [%s]: %s\n", warning.Step, warning.Message)
	}

	base := strings.TrimSuffix(filepath.Base(*inFile), filepath.Ext(*inFile))

	if *writeExcel {
		path := filepath.Join(*outDir, base+"_analysis.xlsx")
		if err := exporter.NewExcelWriter(logger).WriteWorkbook(path, report); err != nil {
			logger.Error("Failed to write workbook", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if *writeWord {
		path := filepath.Join(*outDir, base+"_analysis.docx")
		if err := exporter.NewDocumentWriter(logger).WriteDocument(path, report); err != nil {
			logger.Error("Failed to write document", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if *writeCSV {
		dir := filepath.Join(*outDir, base+"_csv")
		if err := exporter.NewCSVWriter(logger).WriteResults(dir, report); err != nil {
			logger.Error("Failed to write CSV exports", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote CSV exports to %s\n", dir)
	}

	fmt.Printf("Analysis complete in %s (run %s)\n", time.Since(start).Round(time.Millisecond), report.RunID)
	infrastructure.CloseLogFile()
}

// splitKeys parses a comma-separated key list, dropping empty entries.
func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
