package intelligence

import "github.com/a3tai/mcp-casefile-import/internal/casefile"

// DefaultRules returns the built-in rule table for German employment-law
// bundles. The order is the priority: more specific document types come
// before generic ones because only the first matching rule counts.
func DefaultRules() []Rule {
	return []Rule{
		// Court filings
		{Name: "labour_court", Pattern: `Arbeitsgericht\s+\p{L}+.*(?:Az|Aktenzeichen)`, Type: "Labour Court Document", Category: casefile.CategoryCourtFiling},
		{Name: "regional_labour_court", Pattern: `Landesarbeitsgericht`, Type: "Regional Labour Court Document", Category: casefile.CategoryCourtFiling},
		{Name: "federal_labour_court", Pattern: `Bundesarbeitsgericht`, Type: "Federal Labour Court Document", Category: casefile.CategoryCourtFiling},
		{Name: "summons", Pattern: `(?:Güte|Kammer)termin.*(?:anberaumt|festgesetzt)`, Type: "Summons", Category: casefile.CategoryCourtFiling},
		{Name: "payment_order", Pattern: `Mahnbescheid`, Type: "Payment Order", Category: casefile.CategoryCourtFiling},
		{Name: "enforcement_order", Pattern: `Vollstreckungsbescheid`, Type: "Enforcement Order", Category: casefile.CategoryCourtFiling},
		{Name: "judgment", Pattern: `Urteil\s*(?:im Namen|des Volkes)`, Type: "Judgment", Category: casefile.CategoryCourtFiling},
		{Name: "court_order", Pattern: `Beschluss`, Type: "Court Order", Category: casefile.CategoryCourtFiling},
		{Name: "default_judgment", Pattern: `Versäumnisurteil`, Type: "Default Judgment", Category: casefile.CategoryCourtFiling},

		// Pleadings
		{Name: "dismissal_claim", Pattern: `Kündigungsschutzklage`, Type: "Unfair Dismissal Claim", Category: casefile.CategoryPleading},
		{Name: "defence", Pattern: `Klageerwiderung`, Type: "Statement of Defence", Category: casefile.CategoryPleading},
		{Name: "submission", Pattern: `Schriftsatz.*(?:Kläger|Beklagte)`, Type: "Written Submission", Category: casefile.CategoryPleading},
		{Name: "legal_aid", Pattern: `Antrag auf.*(?:PKH|Prozesskostenhilfe)`, Type: "Legal Aid Application", Category: casefile.CategoryPleading},
		{Name: "appeal_grounds", Pattern: `Berufungsbegründung`, Type: "Grounds of Appeal", Category: casefile.CategoryPleading},

		// Contracts
		{Name: "employment_contract", Pattern: `Arbeitsvertrag|Anstellungsvertrag`, Type: "Employment Contract", Category: casefile.CategoryContract},
		{Name: "termination_agreement", Pattern: `Aufhebungsvertrag`, Type: "Termination Agreement", Category: casefile.CategoryContract},
		{Name: "amendment_agreement", Pattern: `Änderungsvertrag`, Type: "Amendment Agreement", Category: casefile.CategoryContract},
		{Name: "separation_agreement", Pattern: `Abwicklungsvertrag`, Type: "Separation Agreement", Category: casefile.CategoryContract},
		{Name: "settlement", Pattern: `Vergleich.*(?:geschlossen|vereinbart)`, Type: "Settlement", Category: casefile.CategoryContract},

		// Employer documents
		{Name: "termination", Pattern: `Kündigung.*(?:hiermit|fristgerecht|fristlos)`, Type: "Termination Letter", Category: casefile.CategoryEmployerDocument},
		{Name: "warning", Pattern: `Abmahnung`, Type: "Formal Warning", Category: casefile.CategoryEmployerDocument},
		{Name: "reference", Pattern: `Zeugnis|Arbeitszeugnis`, Type: "Employment Reference", Category: casefile.CategoryEmployerDocument},
		{Name: "works_council", Pattern: `Betriebsratsanhörung|§\s*102\s*BetrVG`, Type: "Works Council Hearing", Category: casefile.CategoryEmployerDocument},
		{Name: "payslip", Pattern: `Gehaltsabrechnung|Lohnabrechnung`, Type: "Payslip", Category: casefile.CategoryEmployerDocument},

		// Correspondence
		{Name: "email", Pattern: `(?:Von|From):.*@.*\n.*(?:An|To):`, Type: "Email", Category: casefile.CategoryCorrespondence},
		{Name: "letter_salutation", Pattern: `Sehr geehrte.*(?:Herr|Frau)`, Type: "Letter", Category: casefile.CategoryCorrespondence},
		{Name: "letter_closing", Pattern: `Mit freundlichen Grüßen`, Type: "Letter", Category: casefile.CategoryCorrespondence},
		{Name: "legal_insurance", Pattern: `Rechtsschutzversicherung|\bRSV\b`, Type: "Legal Insurance Correspondence", Category: casefile.CategoryCorrespondence},
		{Name: "coverage", Pattern: `Deckungszusage`, Type: "Coverage Confirmation", Category: casefile.CategoryCorrespondence},

		// Finance and miscellaneous
		{Name: "invoice", Pattern: `Rechnung|Honorar`, Type: "Invoice", Category: casefile.CategoryFinance},
		{Name: "power_of_attorney", Pattern: `Vollmacht`, Type: "Power of Attorney", Category: casefile.CategoryMiscellaneous},
		{Name: "personnel_file", Pattern: `Personalakte`, Type: "Personnel File", Category: casefile.CategoryMiscellaneous},
	}
}
