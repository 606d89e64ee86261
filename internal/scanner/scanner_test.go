package scanner

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func testScanner(t *testing.T) (*Scanner, billy.Filesystem) {
	t.Helper()
	fs := memfs.New()
	if err := fs.MkdirAll("/reports", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(fs, log), fs
}

func writeReport(t *testing.T, fs billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func errRecord(unique string) string {
	return "<error><unique>" + unique + "</unique><kind>Leak_DefinitelyLost</kind></error>"
}

func reportWith(records ...string) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n<valgrindoutput>\n")
	for _, r := range records {
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("</valgrindoutput>\n")
	return b.String()
}

func TestScan_EmptyDirectory(t *testing.T) {
	s, _ := testScanner(t)

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 0 || len(res.Unparsable) != 0 || len(res.Files) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestScan_MissingDirectory(t *testing.T) {
	s, _ := testScanner(t)

	if _, err := s.Scan("/nonexistent"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestScan_CollectsErrorsInNameOrder(t *testing.T) {
	s, fs := testScanner(t)
	// Written out of name order on purpose.
	writeReport(t, fs, "/reports/b.xml", reportWith(errRecord("0x3")))
	writeReport(t, fs, "/reports/a.xml", reportWith(errRecord("0x1"), errRecord("0x2")))

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	for i, want := range []string{"0x1", "0x2", "0x3"} {
		got := res.Records[i].Element.SelectElement("unique").Text()
		if got != want {
			t.Fatalf("record %d: expected unique %s, got %s", i, want, got)
		}
	}
	if res.Records[0].Source != "/reports/a.xml" || res.Records[2].Source != "/reports/b.xml" {
		t.Fatalf("expected sources in name order, got %s and %s", res.Records[0].Source, res.Records[2].Source)
	}
}

func TestScan_SkipsZeroLengthFiles(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/empty.xml", "")
	writeReport(t, fs, "/reports/full.xml", reportWith(errRecord("0x1")))

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if len(res.Unparsable) != 0 {
		t.Fatalf("empty file must not count as unparsable, got %v", res.Unparsable)
	}
	if res.Files[0].Path != "/reports/empty.xml" || res.Files[0].Status != StatusEmpty {
		t.Fatalf("expected empty.xml marked empty, got %+v", res.Files[0])
	}
}

func TestScan_WhitespaceOnlyFileIsUnparsable(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/blank.xml", "  \n\n")

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Unparsable) != 1 || res.Unparsable[0] != "/reports/blank.xml" {
		t.Fatalf("expected blank.xml unparsable, got %v", res.Unparsable)
	}
	if len(res.Files) != 1 || res.Files[0].Status != StatusUnparsable {
		t.Fatalf("expected unparsable outcome, got %+v", res.Files)
	}
}

func TestScan_RecordsUnparsableAndContinues(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/bad.xml", "<valgrindoutput><error>")
	writeReport(t, fs, "/reports/good.xml", reportWith(errRecord("0x1")))

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Unparsable) != 1 || res.Unparsable[0] != "/reports/bad.xml" {
		t.Fatalf("expected bad.xml unparsable, got %v", res.Unparsable)
	}
	if len(res.Records) != 1 || res.Records[0].Source != "/reports/good.xml" {
		t.Fatalf("expected the scan to continue past bad.xml, got %+v", res.Records)
	}
}

func TestScan_CleanReportYieldsNoRecords(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/clean.xml", reportWith())

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 0 || len(res.Unparsable) != 0 {
		t.Fatalf("expected clean result, got %+v", res)
	}
	if len(res.Files) != 1 || res.Files[0].Status != StatusClean {
		t.Fatalf("expected one clean file outcome, got %+v", res.Files)
	}
}

func TestScan_IgnoresNonReportEntries(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/notes.txt", "not a report")
	writeReport(t, fs, "/reports/.hidden.xml", reportWith(errRecord("0x1")))
	if err := fs.MkdirAll("/reports/nested", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeReport(t, fs, "/reports/nested/inner.xml", reportWith(errRecord("0x2")))

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(res.Records) != 0 || len(res.Files) != 0 {
		t.Fatalf("expected non-reports to be ignored, got %+v", res)
	}
}

func TestScan_FileOutcomes(t *testing.T) {
	s, fs := testScanner(t)
	writeReport(t, fs, "/reports/a.xml", reportWith(errRecord("0x1"), errRecord("0x2")))
	writeReport(t, fs, "/reports/b.xml", "<broken")
	writeReport(t, fs, "/reports/c.xml", reportWith())

	res, err := s.Scan("/reports")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []FileReport{
		{Path: "/reports/a.xml", Status: StatusErrors, ErrorCount: 2},
		{Path: "/reports/b.xml", Status: StatusUnparsable},
		{Path: "/reports/c.xml", Status: StatusClean},
	}
	if len(res.Files) != len(want) {
		t.Fatalf("expected %d file outcomes, got %d", len(want), len(res.Files))
	}
	for i, w := range want {
		if res.Files[i] != w {
			t.Fatalf("file %d: expected %+v, got %+v", i, w, res.Files[i])
		}
	}
}
