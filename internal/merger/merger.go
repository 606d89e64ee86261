// Package merger splices collected error records into the report template
// and writes the combined document out.
package merger

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/go-git/go-billy/v5"

	"github.com/wrv/memmerge/internal/memcheck"
)

// Build parses the report template and replaces its placeholder with copies
// of the given records, preserving their order. The records are copied, not
// moved, so the documents they were extracted from stay intact.
func Build(records []memcheck.Record) (*etree.Document, error) {
	doc, err := memcheck.Parse(strings.NewReader(memcheck.Template))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	placeholders := memcheck.Errors(doc)
	if len(placeholders) != 1 {
		return nil, fmt.Errorf("report template must contain exactly one error placeholder, found %d", len(placeholders))
	}
	placeholder := placeholders[0]
	parent := placeholder.Parent()

	// Each insert lands at the placeholder's current index, pushing the
	// placeholder right, so the records keep their collection order.
	for _, rec := range records {
		parent.InsertChildAt(placeholder.Index(), rec.Element.Copy())
	}
	parent.RemoveChild(placeholder)

	return doc, nil
}

// Write serializes the merged document to path, replacing any existing file.
func Write(fs billy.Filesystem, path string, doc *etree.Document) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
