package intelligence

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-casefile-import/internal/casefile"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	if len(rules) != 32 {
		t.Fatalf("Expected 32 default rules, got %d", len(rules))
	}

	names := make(map[string]bool)
	for _, r := range rules {
		if names[r.Name] {
			t.Errorf("Duplicate rule name %q", r.Name)
		}
		names[r.Name] = true
		if !r.Category.Valid() {
			t.Errorf("Rule %q has unknown category %q", r.Name, r.Category)
		}
	}

	// MustDefault panics if any pattern fails to compile
	c := MustDefault()
	assert.Len(t, c.Rules(), 32)
}

func TestClassify(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		name     string
		text     string
		wantType string
		wantCat  casefile.Category
	}{
		{
			name:     "dismissal claim",
			text:     "KÜNDIGUNGSSCHUTZKLAGE\ndes Herrn Max Müller",
			wantType: "Unfair Dismissal Claim",
			wantCat:  casefile.CategoryPleading,
		},
		{
			name:     "labour court with file number",
			text:     "Arbeitsgericht Berlin, Az.: 12 Ca 3456/24",
			wantType: "Labour Court Document",
			wantCat:  casefile.CategoryCourtFiling,
		},
		{
			name:     "termination letter",
			text:     "Kündigung: hiermit kündigen wir das Arbeitsverhältnis fristgerecht zum 30.06.2024",
			wantType: "Termination Letter",
			wantCat:  casefile.CategoryEmployerDocument,
		},
		{
			name:     "email header spans lines",
			text:     "Von: hr@schmidt-gmbh.de\nAn: max@mueller.de\nBetreff: Gespräch",
			wantType: "Email",
			wantCat:  casefile.CategoryCorrespondence,
		},
		{
			name:     "letter salutation",
			text:     "Sehr geehrte Frau Müller,\nwir bestätigen den Eingang.",
			wantType: "Letter",
			wantCat:  casefile.CategoryCorrespondence,
		},
		{
			name:     "invoice",
			text:     "Honorar für die Vertretung",
			wantType: "Invoice",
			wantCat:  casefile.CategoryFinance,
		},
		{
			name:     "power of attorney",
			text:     "VOLLMACHT\nerteile ich hiermit",
			wantType: "Power of Attorney",
			wantCat:  casefile.CategoryMiscellaneous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := c.Classify(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, m.Type)
			assert.Equal(t, tt.wantCat, m.Category)
		})
	}
}

func TestClassify_FirstRuleWinsRegardlessOfPosition(t *testing.T) {
	c := MustDefault()

	// The closing formula comes first in the text but the termination
	// rule comes first in the table.
	text := "Mit freundlichen Grüßen\n\nKündigung - hiermit kündigen wir fristlos"
	m, ok := c.Classify(text)
	require.True(t, ok)
	assert.Equal(t, "termination", m.Rule)
	assert.Equal(t, "Termination Letter", m.Type)

	closing, ok := c.Classify("Mit freundlichen Grüßen")
	require.True(t, ok)
	assert.Less(t, m.Index, closing.Index)
}

func TestClassify_NoMatch(t *testing.T) {
	c := MustDefault()

	_, ok := c.Classify("Lorem ipsum dolor sit amet")
	assert.False(t, ok)

	_, ok = c.Classify("")
	assert.False(t, ok)

	// A bare "Frau" without salutation must not be read as a letter.
	_, ok = c.Classify("Frau Schulz hat angerufen")
	assert.False(t, ok)
}

func TestCountMatches(t *testing.T) {
	c := MustDefault()

	assert.Equal(t, 0, c.CountMatches("nothing to see"))
	assert.Equal(t, 1, c.CountMatches("Abmahnung"))
	assert.Equal(t, 3, c.CountMatches("Abmahnung\nSehr geehrter Herr Müller\nMit freundlichen Grüßen"))
}

func TestNewClassifier_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty table", nil},
		{"bad pattern", []Rule{{Name: "x", Pattern: "(", Type: "X", Category: casefile.CategoryFinance}}},
		{"unknown category", []Rule{{Name: "x", Pattern: "x", Type: "X", Category: "Gericht"}}},
		{"missing type", []Rule{{Name: "x", Pattern: "x", Category: casefile.CategoryFinance}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.rules)
			assert.Error(t, err)
		})
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	content := `{
  "version": "2024-06",
  "rules": [
    {"name": "receipt", "pattern": "Quittung", "type": "Receipt", "category": "finance"},
    {"name": "any_letter", "pattern": "Sehr geehrte", "type": "Letter", "category": "correspondence"}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-06", c.GetVersion())

	m, ok := c.Classify("Sehr geehrte Damen und Herren, anbei die Quittung")
	require.True(t, ok)
	assert.Equal(t, "Receipt", m.Type)

	_, err = LoadRules(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadRules(path)
	assert.Error(t, err)
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	c := MustDefault()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m, ok := c.Classify("Aufhebungsvertrag")
				if !ok || m.Type != "Termination Agreement" {
					t.Errorf("unexpected classification %+v", m)
					return
				}
			}
		}()
	}
	wg.Wait()
}
