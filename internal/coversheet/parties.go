package coversheet

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

// minBlockLength is the shortest trimmed region that can hold a party
const minBlockLength = 5

type partyLabel struct {
	role string
	re   *regexp.Regexp
}

// Labels open a party region only at the start of a line. "Gegner\b" keeps
// the opponent label from swallowing "Gegnervertreter".
var partyLabels = []partyLabel{
	{casefile.RoleClient, regexp.MustCompile(`(?im)^[ \t]*(?:Auftraggeber(?:in)?|Mandant(?:in)?|Kläger(?:in)?)\b[ \t]*:?`)},
	{casefile.RoleOpponent, regexp.MustCompile(`(?im)^[ \t]*(?:Gegner(?:in)?|Beklagter?)\b[ \t]*:?`)},
	{casefile.RoleOpposingCounsel, regexp.MustCompile(`(?im)^[ \t]*(?:Gegnervertreter(?:in)?|Beklagtenvertreter(?:in)?|Rechtsanwalt[^\n]*Gegner\p{L}*)[ \t]*:?`)},
}

var (
	postalRe  = regexp.MustCompile(`\b(\d{5})[ \t]+(\p{L}[^\n]*)`)
	phoneRe   = regexp.MustCompile(`(?i)\b(?:Telefon|Tel|Fon)\b\.?[ \t]*:?[ \t]*(\d[\d \t/\-]*\d)`)
	phone2Re  = regexp.MustCompile(`(?i)\b(?:Mobil|Handy)\b\.?[ \t]*:?[ \t]*(\d[\d \t/\-]*\d)`)
	faxRe     = regexp.MustCompile(`(?i)\b(?:Tele)?fax\b\.?[ \t]*:?[ \t]*(\d[\d \t/\-]*\d)`)
	emailRe   = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)
	contactRe = regexp.MustCompile(`(?im)^[ \t]*(?:Ansprechpartner(?:in)?|z\.[ \t]*Hd\.?)[ \t]*:?[ \t]*([^\n]+)`)

	// Lines that carry a contact field rather than a street address
	fieldLineRe = regexp.MustCompile(`(?i)^(?:\d{5}[ \t]|(?:Telefon|Tel|Fon|Telefax|Fax|Mobil|Handy|E-?Mail|Ansprechpartner|z\.[ \t]*Hd)\b)`)
)

type region struct {
	role       string
	start, end int
}

// ParseParties locates the client, opponent and opposing counsel regions of
// the cover sheet and parses each into a Party. A region runs from its label
// to the next label of any role or the end of the text. Only the first
// region per role is used; regions without a name are dropped.
func ParseParties(text string) []casefile.Party {
	var regions []region
	for _, l := range partyLabels {
		loc := l.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		regions = append(regions, region{role: l.role, start: loc[0], end: loc[1]})
	}
	if len(regions) == 0 {
		return []casefile.Party{}
	}

	// Every label start bounds the preceding region, including labels of a
	// role that already has its region.
	var bounds []int
	for _, l := range partyLabels {
		for _, loc := range l.re.FindAllStringIndex(text, -1) {
			bounds = append(bounds, loc[0])
		}
	}
	sort.Ints(bounds)

	parties := make([]casefile.Party, 0, len(regions))
	for _, r := range regions {
		stop := len(text)
		for _, b := range bounds {
			if b > r.start {
				stop = b
				break
			}
		}
		if stop < r.end {
			continue
		}
		if p, ok := ParsePartyBlock(text[r.end:stop], r.role); ok {
			parties = append(parties, p)
		}
	}
	return parties
}

// ParsePartyBlock turns the body of one labelled region into a Party. The
// first non-empty line is the name and the second the street, unless that
// line already holds the postal code or a contact field.
func ParsePartyBlock(block, role string) (casefile.Party, bool) {
	trimmed := strings.TrimSpace(block)
	if utf8.RuneCountInString(trimmed) < minBlockLength {
		return casefile.Party{}, false
	}

	var lines []string
	for _, l := range strings.Split(trimmed, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 || fieldLineRe.MatchString(lines[0]) {
		return casefile.Party{}, false
	}

	p := casefile.Party{Role: role, Name: lines[0]}
	if len(lines) > 1 && !fieldLineRe.MatchString(lines[1]) {
		p.Street = lines[1]
	}
	if m := postalRe.FindStringSubmatch(trimmed); m != nil {
		p.PostalCity = m[1] + " " + strings.TrimSpace(m[2])
	}
	p.Phone = firstGroup(phoneRe, trimmed)
	p.Phone2 = firstGroup(phone2Re, trimmed)
	p.Fax = firstGroup(faxRe, trimmed)
	p.Email = emailRe.FindString(trimmed)
	p.ContactPerson = firstGroup(contactRe, trimmed)

	return p, true
}
