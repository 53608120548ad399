// Package segment splits the page sequence of a bundle into documents.
//
// The split is a two-state machine. With no open document, a page that
// matches a classification rule opens one and any other page is skipped.
// With an open document, a matching page closes it at the previous page and
// opens the next one, and any other page extends it. The machine does no
// I/O so it can be driven with synthetic page text.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
	"github.com/a3tai/mcp-casefile-import/internal/intelligence"
	"github.com/a3tai/mcp-casefile-import/internal/quality"
)

// State of the segmentation machine
type State int

const (
	NoOpenDocument State = iota
	OpenDocument
)

func (s State) String() string {
	switch s {
	case NoOpenDocument:
		return "no_open_document"
	case OpenDocument:
		return "open_document"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// DefaultPreviewLength is the number of runes kept from a document's
	// first page
	DefaultPreviewLength = 500
	maxTitleLength       = 100
)

var (
	subjectLineRe = regexp.MustCompile(`(?:Betreff:|AW:|RE:)\s*([^\n]+)`)
	numericDateRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`)
	longDateRe    = regexp.MustCompile(`(\d{1,2}\.\s*(?:Januar|Februar|März|April|Mai|Juni|Juli|August|September|Oktober|November|Dezember)\s*\d{4})`)
)

// Machine holds the segmentation state of one bundle. It is not safe for
// concurrent use; each import owns its own Machine.
type Machine struct {
	classifier    *intelligence.Classifier
	previewLength int

	state    State
	current  casefile.Document
	docs     []casefile.Document
	lastPage int

	skippedFirst int
	skippedLast  int
	skipped      int
}

// NewMachine creates a machine in the NoOpenDocument state. A previewLength
// of zero or less selects DefaultPreviewLength.
func NewMachine(classifier *intelligence.Classifier, previewLength int) *Machine {
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	return &Machine{
		classifier:    classifier,
		previewLength: previewLength,
		state:         NoOpenDocument,
		docs:          []casefile.Document{},
	}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// Feed processes the next page. Pages must be fed in order starting at 1.
func (m *Machine) Feed(page int, text string) error {
	if page != m.lastPage+1 {
		return fmt.Errorf("page %d fed out of order, expected page %d", page, m.lastPage+1)
	}
	m.lastPage = page

	match, ok := m.classifier.Classify(text)
	if !ok {
		switch m.state {
		case OpenDocument:
			m.current.EndPage = page
		case NoOpenDocument:
			m.skip(page)
		}
		return nil
	}

	if m.state == OpenDocument {
		m.current.EndPage = page - 1
		m.docs = append(m.docs, m.current)
	}
	m.current = m.newDocument(len(m.docs)+1, page, text, match)
	m.state = OpenDocument
	return nil
}

// Finish closes the open document, if any, at the last page of the bundle
// and returns all documents in page order.
func (m *Machine) Finish(totalPages int) []casefile.Document {
	if m.state == OpenDocument {
		m.current.EndPage = max(totalPages, m.current.EndPage)
		m.docs = append(m.docs, m.current)
		m.current = casefile.Document{}
		m.state = NoOpenDocument
	}
	return m.docs
}

// Skipped reports the pages that preceded the first detected document.
// Skipped pages are always the contiguous range first..last.
func (m *Machine) Skipped() (first, last, count int) {
	return m.skippedFirst, m.skippedLast, m.skipped
}

func (m *Machine) skip(page int) {
	if m.skipped == 0 {
		m.skippedFirst = page
	}
	m.skippedLast = page
	m.skipped++
}

func (m *Machine) newDocument(id, page int, text string, match intelligence.Match) casefile.Document {
	extra := m.classifier.CountMatches(text) - 1
	date := ExtractDate(text)
	return casefile.Document{
		ID:         id,
		Title:      ExtractTitle(text, match.Type, date),
		Category:   match.Category,
		Type:       match.Type,
		StartPage:  page,
		EndPage:    page,
		Date:       date,
		Preview:    preview(text, m.previewLength),
		Confidence: quality.DocumentConfidence(text, extra),
	}
}

// ExtractTitle derives a document title from a subject line, falling back
// to "<type> dated <date>" and then to the bare type.
func ExtractTitle(text, docType, date string) string {
	if m := subjectLineRe.FindStringSubmatch(text); m != nil {
		if title := truncateRunes(strings.TrimSpace(m[1]), maxTitleLength); title != "" {
			return title
		}
	}
	if date != "" {
		return docType + " dated " + date
	}
	return docType
}

// ExtractDate returns the first numeric date (dd.mm.yyyy) on the page, or
// failing that the first written German date ("3. März 2024").
func ExtractDate(text string) string {
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := longDateRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func preview(text string, n int) string {
	return truncateRunes(strings.TrimSpace(text), n)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
