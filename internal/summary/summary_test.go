package summary

import "testing"

func TestFormat_NoIssues(t *testing.T) {
	got := Format(0, 0)
	if got != "no memcheck errors or parsing issues encountered" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormat_SingularCounts(t *testing.T) {
	got := Format(1, 1)
	if got != "found 1 error, 1 unparsable file" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormat_PluralCounts(t *testing.T) {
	got := Format(2, 3)
	if got != "found 2 errors, 3 unparsable files" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormat_ErrorsOnly(t *testing.T) {
	got := Format(5, 0)
	if got != "found 5 errors" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestFormat_UnparsableOnly(t *testing.T) {
	got := Format(0, 1)
	if got != "found 1 unparsable file" {
		t.Fatalf("unexpected summary: %q", got)
	}
}
