// Package memcheck reads Valgrind memcheck XML reports and extracts the
// error records they contain.
package memcheck

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
)

// Record is a single <error> element lifted out of a memcheck report. The
// element still belongs to the document it was parsed from; Source names the
// file that document came from.
type Record struct {
	Source  string
	Element *etree.Element
}

// Parse reads a memcheck report into an XML document tree. Whitespace, CDATA,
// and quote characters are preserved, so records copied out of the tree
// serialize the way they appeared in the report. Input without a root
// element, or with content outside it, is rejected.
func Parse(r io.Reader) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	// The minimal escape set; the default also rewrites ' and " to
	// character references.
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parse report xml: %w", err)
	}
	// ReadFrom stops at EOF without requiring a root element, so enforce the
	// document shape here: exactly one root, nothing but whitespace around it.
	roots := 0
	for _, tok := range doc.Child {
		switch c := tok.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(c.Data) != "" {
				return nil, errors.New("parse report xml: content outside root element")
			}
		}
	}
	switch {
	case roots == 0:
		return nil, errors.New("parse report xml: no root element")
	case roots > 1:
		return nil, errors.New("parse report xml: multiple root elements")
	}
	return doc, nil
}

// Errors returns every <error> element in the document, however deeply
// nested, in document order. Valgrind emits them as direct children of
// <valgrindoutput>, but reports that went through other tooling sometimes
// wrap them, so the whole tree is searched.
func Errors(doc *etree.Document) []*etree.Element {
	return doc.FindElements("//error")
}
