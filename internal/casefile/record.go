package casefile

import "fmt"

// CaseStatusActive is the status given to freshly imported cases
const CaseStatusActive = "active"

// CaseRecord is the projection of an import handed to the case-management
// system.
type CaseRecord struct {
	Case      CaseInfo       `json:"case"`
	Client    *Contact       `json:"client"`
	Opponent  *Contact       `json:"opponent"`
	Documents []DocumentStub `json:"documents"`
}

// CaseInfo carries the case header fields
type CaseInfo struct {
	CaseNumber  string  `json:"case_number"`
	Caption     string  `json:"caption"`
	Subject     string  `json:"subject"`
	ClaimValue  float64 `json:"claim_value"`
	Status      string  `json:"status"`
	FiledOn     string  `json:"filed_on"`
	Court       string  `json:"court"`
	CourtCaseNo string  `json:"court_case_no"`
	LegalArea   string  `json:"legal_area"`
}

// Contact is the address card of a party
type Contact struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	PostalCity string `json:"postal_city"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// DocumentStub references one document of the bundle
type DocumentStub struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Date     string   `json:"date"`
	FileName string   `json:"file_name"`
	Pages    string   `json:"pages"`
}

// ToCaseRecord projects an import result onto a case record. It returns
// false when the result carries no cover sheet.
func ToCaseRecord(r ImportResult) (CaseRecord, bool) {
	cs := r.CoverSheet
	if cs == nil {
		return CaseRecord{}, false
	}

	rec := CaseRecord{
		Case: CaseInfo{
			CaseNumber:  cs.CaseNumber,
			Caption:     cs.Caption,
			Subject:     cs.Subject,
			ClaimValue:  cs.ClaimValue,
			Status:      CaseStatusActive,
			FiledOn:     cs.FiledOn,
			Court:       cs.Court1,
			CourtCaseNo: cs.Court1CaseNo,
			LegalArea:   cs.LegalArea,
		},
		Documents: make([]DocumentStub, 0, len(r.Documents)),
	}
	if p, ok := cs.PartyByRole(RoleClient); ok {
		rec.Client = contactOf(p)
	}
	if p, ok := cs.PartyByRole(RoleOpponent); ok {
		rec.Opponent = contactOf(p)
	}
	for _, d := range r.Documents {
		rec.Documents = append(rec.Documents, DocumentStub{
			Title:    d.Title,
			Category: d.Category,
			Date:     d.Date,
			FileName: d.FileName,
			Pages:    fmt.Sprintf("%d-%d", d.StartPage, d.EndPage),
		})
	}
	return rec, true
}

func contactOf(p Party) *Contact {
	return &Contact{
		Name:       p.Name,
		Street:     p.Street,
		PostalCity: p.PostalCity,
		Phone:      p.Phone,
		Email:      p.Email,
	}
}
