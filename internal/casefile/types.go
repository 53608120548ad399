// Package casefile holds the value types produced by a case-file bundle
// import. Results are built once per bundle and treated as values afterwards.
package casefile

import (
	"encoding/json"
	"time"
)

// Category is the coarse bucket a segmented document belongs to
type Category string

const (
	CategoryCourtFiling      Category = "court_filing"
	CategoryPleading         Category = "pleading"
	CategoryContract         Category = "contract"
	CategoryEmployerDocument Category = "employer_document"
	CategoryCorrespondence   Category = "correspondence"
	CategoryFinance          Category = "finance"
	CategoryMiscellaneous    Category = "miscellaneous"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCourtFiling,
		CategoryPleading,
		CategoryContract,
		CategoryEmployerDocument,
		CategoryCorrespondence,
		CategoryFinance,
		CategoryMiscellaneous,
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// QualityLabel is the ordered verbal rating of a quality score
type QualityLabel string

const (
	QualityPoor       QualityLabel = "poor"
	QualityAcceptable QualityLabel = "acceptable"
	QualityGood       QualityLabel = "good"
	QualityExcellent  QualityLabel = "excellent"
)

// Rank returns the position of the label in poor < acceptable < good < excellent,
// or -1 for an unknown label.
func (l QualityLabel) Rank() int {
	switch l {
	case QualityPoor:
		return 0
	case QualityAcceptable:
		return 1
	case QualityGood:
		return 2
	case QualityExcellent:
		return 3
	default:
		return -1
	}
}

// Party roles as found on the cover sheet
const (
	RoleClient          = "client"
	RoleOpponent        = "opponent"
	RoleOpposingCounsel = "opposing_counsel"
)

// Party represents one labelled party block of the cover sheet
type Party struct {
	Role          string `json:"role"`
	Name          string `json:"name"`
	Street        string `json:"street"`
	PostalCity    string `json:"postal_city"`
	Phone         string `json:"phone"`
	Phone2        string `json:"phone_2,omitempty"`
	Fax           string `json:"fax,omitempty"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// CoverSheet represents the case metadata found on page one of a bundle.
// Every field defaults to its zero value when not found.
type CoverSheet struct {
	Caption      string  `json:"caption"`
	CaseNumber   string  `json:"case_number"`
	Subject      string  `json:"subject"`
	ClaimValue   float64 `json:"claim_value"`
	FiledOn      string  `json:"filed_on"`
	Court1       string  `json:"court_1"`
	Court1CaseNo string  `json:"court_1_case_no"`
	Court2       string  `json:"court_2,omitempty"`
	Court2CaseNo string  `json:"court_2_case_no,omitempty"`
	LegalArea    string  `json:"legal_area,omitempty"`
	Parties      []Party `json:"parties"`
}

// PartyByRole returns the first party with the given role
func (c *CoverSheet) PartyByRole(role string) (Party, bool) {
	if c == nil {
		return Party{}, false
	}
	for _, p := range c.Parties {
		if p.Role == role {
			return p, true
		}
	}
	return Party{}, false
}

// Document is one embedded document detected inside a bundle. Pages are
// 1-based and inclusive.
type Document struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Category   Category `json:"category"`
	Type       string   `json:"type"`
	StartPage  int      `json:"start_page"`
	EndPage    int      `json:"end_page"`
	Date       string   `json:"date"`
	Preview    string   `json:"preview"`
	Confidence float64  `json:"confidence"`
	FileName   string   `json:"file_name,omitempty"`
}

// PageCount returns the number of pages covered by the document
func (d Document) PageCount() int {
	return d.EndPage - d.StartPage + 1
}

// ImportResult is the outcome of importing one bundle
type ImportResult struct {
	ImportID     string       `json:"import_id"`
	ImportDate   time.Time    `json:"import_date"`
	SourceFile   string       `json:"source_file"`
	PageCount    int          `json:"page_count"`
	Success      bool         `json:"success"`
	CoverSheet   *CoverSheet  `json:"cover_sheet"`
	Documents    []Document   `json:"documents"`
	OCRUsed      bool         `json:"ocr_used"`
	QualityScore int          `json:"quality_score"`
	QualityLabel QualityLabel `json:"quality_label"`
	Errors       []string     `json:"errors"`
	Warnings     []string     `json:"warnings"`
}

// MarshalJSON renders empty lists as [] instead of null so consumers never
// have to special-case a missing array.
func (r ImportResult) MarshalJSON() ([]byte, error) {
	type plain ImportResult
	out := plain(r)
	if out.Documents == nil {
		out.Documents = []Document{}
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if out.CoverSheet != nil && out.CoverSheet.Parties == nil {
		cs := *out.CoverSheet
		cs.Parties = []Party{}
		out.CoverSheet = &cs
	}
	return json.Marshal(out)
}
