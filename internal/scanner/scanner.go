// Package scanner walks a directory of memcheck reports and collects the
// error records they contain.
package scanner

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/wrv/memmerge/internal/memcheck"
)

// FileStatus classifies the outcome of scanning one report file.
type FileStatus string

const (
	StatusClean      FileStatus = "clean"
	StatusErrors     FileStatus = "errors"
	StatusEmpty      FileStatus = "empty"
	StatusUnparsable FileStatus = "unparsable"
)

// FileReport is the per-file outcome of a scan.
type FileReport struct {
	Path       string
	Status     FileStatus
	ErrorCount int
}

// Result holds everything a scan produced: the error records found across
// all parsable reports in scan order, the files that could not be parsed,
// and the outcome of every file that was considered.
type Result struct {
	Records    []memcheck.Record
	Unparsable []string
	Files      []FileReport
}

// Scanner reads memcheck reports from a filesystem.
type Scanner struct {
	fs  billy.Filesystem
	log *slog.Logger
}

func New(fs billy.Filesystem, log *slog.Logger) *Scanner {
	return &Scanner{fs: fs, log: log}
}

// Scan reads every *.xml file directly inside dir, in name order, and
// collects the error records from the ones that parse. Subdirectories are
// not descended into. Zero-length files are skipped and files that fail to
// parse are recorded as unparsable; neither stops the scan.
func (s *Scanner) Scan(dir string) (*Result, error) {
	s.log.Debug("scanning for report files", "dir", dir)

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	var files []os.FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".xml") {
			continue
		}
		files = append(files, entry)
	}
	// ReadDir order is backend-dependent; sort for a reproducible merge.
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	res := &Result{}
	for _, info := range files {
		path := s.fs.Join(dir, info.Name())
		if info.Size() == 0 {
			s.log.Debug("skipping empty report", "file", path)
			res.Files = append(res.Files, FileReport{Path: path, Status: StatusEmpty})
			continue
		}

		s.log.Debug("processing report", "file", path)
		records, err := s.scanFile(path)
		if err != nil {
			s.log.Error("could not parse report", "file", path, "error", err)
			res.Unparsable = append(res.Unparsable, path)
			res.Files = append(res.Files, FileReport{Path: path, Status: StatusUnparsable})
			continue
		}
		if len(records) > 0 {
			s.log.Error("errors found in report", "file", path, "count", len(records))
			res.Records = append(res.Records, records...)
			res.Files = append(res.Files, FileReport{Path: path, Status: StatusErrors, ErrorCount: len(records)})
			continue
		}

		s.log.Debug("report is clean", "file", path)
		res.Files = append(res.Files, FileReport{Path: path, Status: StatusClean})
	}
	return res, nil
}

// scanFile parses one report and wraps its error elements as records. The
// file handle is held only for the duration of the parse.
func (s *Scanner) scanFile(path string) ([]memcheck.Record, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	doc, err := memcheck.Parse(f)
	if err != nil {
		return nil, err
	}

	var records []memcheck.Record
	for _, el := range memcheck.Errors(doc) {
		records = append(records, memcheck.Record{Source: path, Element: el})
	}
	return records, nil
}
