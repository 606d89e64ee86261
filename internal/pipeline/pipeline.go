// Package pipeline runs a complete merge from source directory to written
// report.
package pipeline

import (
	"log/slog"

	"github.com/go-git/go-billy/v5"

	"github.com/wrv/memmerge/internal/config"
	"github.com/wrv/memmerge/internal/merger"
	"github.com/wrv/memmerge/internal/scanner"
	"github.com/wrv/memmerge/internal/summary"
)

// Result is what one merge run produced.
type Result struct {
	ErrorCount      int
	UnparsableCount int
	OutputPath      string
	Summary         string
	Files           []scanner.FileReport
}

// Run executes one merge over fsys: scan the source directory, splice every
// collected record into the report template, and write the combined document
// to the configured output path. Problem files are reported and counted, not
// fatal; a run only fails when the config is invalid or the output cannot be
// produced.
func Run(fsys billy.Filesystem, cfg config.Config, log *slog.Logger) (*Result, error) {
	if err := cfg.Validate(fsys); err != nil {
		return nil, err
	}

	// Phase 1: Scan
	log.Info("scanning source directory", "dir", cfg.SourceDir)
	scan, err := scanner.New(fsys, log).Scan(cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	// Phase 2: Report
	line := summary.Format(len(scan.Records), len(scan.Unparsable))
	if len(scan.Records) > 0 || len(scan.Unparsable) > 0 {
		log.Error(line, "errors", len(scan.Records), "unparsable_files", len(scan.Unparsable))
	} else {
		log.Info(line)
	}

	// Phase 3: Merge
	doc, err := merger.Build(scan.Records)
	if err != nil {
		return nil, err
	}
	outPath := cfg.OutputPath(fsys)
	log.Info("writing merged report", "path", outPath)
	if err := merger.Write(fsys, outPath, doc); err != nil {
		return nil, err
	}

	// Phase 4: HTML summary, only when asked for
	if cfg.HTMLSummary != "" {
		data := summary.Data{Summary: line, Files: scan.Files, Unparsable: scan.Unparsable}
		if err := summary.WriteHTML(fsys, cfg.HTMLSummary, data); err != nil {
			return nil, err
		}
		log.Info("wrote html summary", "path", cfg.HTMLSummary)
	}

	return &Result{
		ErrorCount:      len(scan.Records),
		UnparsableCount: len(scan.Unparsable),
		OutputPath:      outPath,
		Summary:         line,
		Files:           scan.Files,
	}, nil
}
