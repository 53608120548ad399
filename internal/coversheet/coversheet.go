// Package coversheet reads case metadata and party records from the first
// page of a case-file bundle. Every field has its own pattern and a field
// that cannot be found keeps its zero value; nothing here returns an error.
package coversheet

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

// DefaultLegalArea is assumed when the cover sheet names none
const DefaultLegalArea = "Arbeitsrecht"

var (
	captionRe    = regexp.MustCompile(`(\p{Lu}[\p{L}&.-]*(?:[ \t]+[\p{Lu}&][\p{L}&.-]*)*)[ \t]*\./\.[ \t]*([^\n]+)`)
	caseNumberRe = regexp.MustCompile(`(?i)\b(?:Aktennummer|Aktenzeichen|Az)\.?[\s:]*(\d+[/-]\d+(?:[/-]\d+)?)`)
	subjectRe    = regexp.MustCompile(`(?i)\b(?:wegen|Streitgegenstand)\b[\s:]*([^\n]+)`)
	claimValueRe = regexp.MustCompile(`(?i)\b(?:Gegenstandswert|Streitwert)[\s:]*(\d{1,3}(?:\.\d{3})+(?:,\d{1,2})?|\d+(?:,\d{1,2})?)\b`)
	filedOnRe    = regexp.MustCompile(`(?i)\b(?:Angelegt(?:[ \t]+am)?|Erfasst(?:[ \t]+am)?|Datum)[\s:]*(\d{2}[./-]\d{2}[./-]\d{4})`)
	court1Re     = regexp.MustCompile(`(?i)(?:1\.[ \t]*Instanz[ \t]*:?[ \t]*([^\n]+)|\b(Arbeitsgericht[ \t]+[^\n]+))`)
	court2Re     = regexp.MustCompile(`(?i)(?:2\.[ \t]*Instanz[ \t]*:?[ \t]*([^\n]+)|\b(Landesarbeitsgericht[ \t]+[^\n]+))`)
	legalAreaRe  = regexp.MustCompile(`(?im)^[ \t]*Rechtsgebiet[ \t]*:?[ \t]*([^\n]+)`)

	// Register numbers of the labour courts, e.g. "12 Ca 3456/24" at first
	// instance and "4 Sa 789/24" on appeal.
	register1Re = regexp.MustCompile(`\b(\d{1,3}[ \t]+(?:Ca|Ga|BV|BVGa)[ \t]+\d+/\d{2,4})\b`)
	register2Re = regexp.MustCompile(`\b(\d{1,3}[ \t]+(?:Sa|SaGa|Ta|TaBV)[ \t]+\d+/\d{2,4})\b`)

	courtTailRe = regexp.MustCompile(`(?i)[,;]?[ \t]*\b(?:Az|Aktenzeichen)\b.*$`)
)

// Extract parses the cover sheet fields from the text of page one
func Extract(text string) casefile.CoverSheet {
	cs := casefile.CoverSheet{
		LegalArea: DefaultLegalArea,
		Parties:   []casefile.Party{},
	}
	if strings.TrimSpace(text) == "" {
		return cs
	}

	if m := captionRe.FindStringSubmatch(text); m != nil {
		cs.Caption = m[1] + " ./. " + strings.TrimSpace(m[2])
	}
	cs.CaseNumber = firstGroup(caseNumberRe, text)
	cs.Subject = firstGroup(subjectRe, text)
	if v := firstGroup(claimValueRe, text); v != "" {
		cs.ClaimValue = ParseAmount(v)
	}
	cs.FiledOn = firstGroup(filedOnRe, text)
	cs.Court1 = cleanCourt(firstGroup(court1Re, text))
	cs.Court1CaseNo = firstGroup(register1Re, text)
	cs.Court2 = cleanCourt(firstGroup(court2Re, text))
	cs.Court2CaseNo = firstGroup(register2Re, text)
	if area := firstGroup(legalAreaRe, text); area != "" {
		cs.LegalArea = area
	}
	cs.Parties = ParseParties(text)

	return cs
}

// ParseAmount converts a German formatted amount ("12.500,00") to a float.
// Dots are thousands separators and the comma is the decimal separator.
// Anything that does not parse to a finite, non-negative number yields 0.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "EUR")
	s = strings.TrimSuffix(strings.TrimSpace(s), "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != ',' {
			return 0
		}
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// firstGroup returns the first non-empty capture group of the leftmost
// match, trimmed.
func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}

// cleanCourt cuts a register number or file reference off a court line so
// that only the court name remains.
func cleanCourt(s string) string {
	if s == "" {
		return ""
	}
	if loc := register1Re.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if loc := register2Re.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	s = courtTailRe.ReplaceAllString(s, "")
	return strings.TrimRight(strings.TrimSpace(s), ",;:-– ")
}
