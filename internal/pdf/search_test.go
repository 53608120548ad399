package pdf

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeSearchFixtures(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	testFiles := map[string][]byte{
		"2024-03_mueller_gegen_acme.pdf": make([]byte, 1024),
		"schmidt_kuendigung.pdf":         make([]byte, 2048),
		"Scan_0001.PDF":                  make([]byte, 512),
		"report.txt":                     []byte("not a pdf"),
		"empty.pdf":                      {},
		"large.pdf":                      make([]byte, 2*1024*1024),
		"nested/archiv_mueller.pdf":      make([]byte, 256),
		".trash/mueller_old.pdf":         make([]byte, 256),
	}

	for filename, content := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", filename, err)
		}
		if err := os.WriteFile(filePath, content, 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}
	return tempDir
}

func TestSearch_SearchDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := writeSearchFixtures(t)

	tests := []struct {
		name          string
		req           SearchDirectoryRequest
		expectedNames []string
		expectedError bool
	}{
		{
			name: "all bundles",
			req:  SearchDirectoryRequest{Directory: tempDir},
			expectedNames: []string{
				"2024-03_mueller_gegen_acme.pdf",
				"Scan_0001.PDF",
				"archiv_mueller.pdf",
				"schmidt_kuendigung.pdf",
			},
		},
		{
			name:          "query by client name",
			req:           SearchDirectoryRequest{Directory: tempDir, Query: "mueller"},
			expectedNames: []string{"2024-03_mueller_gegen_acme.pdf", "archiv_mueller.pdf"},
		},
		{
			name:          "multi word query",
			req:           SearchDirectoryRequest{Directory: tempDir, Query: "acme mueller"},
			expectedNames: []string{"2024-03_mueller_gegen_acme.pdf"},
		},
		{
			name:          "case insensitive",
			req:           SearchDirectoryRequest{Directory: tempDir, Query: "SCAN"},
			expectedNames: []string{"Scan_0001.PDF"},
		},
		{
			name:          "limit",
			req:           SearchDirectoryRequest{Directory: tempDir, Limit: 1},
			expectedNames: []string{"2024-03_mueller_gegen_acme.pdf"},
		},
		{
			name:          "no match",
			req:           SearchDirectoryRequest{Directory: tempDir, Query: "nonexistent"},
			expectedNames: []string{},
		},
		{
			name:          "empty directory",
			req:           SearchDirectoryRequest{Directory: ""},
			expectedError: true,
		},
		{
			name:          "missing directory",
			req:           SearchDirectoryRequest{Directory: filepath.Join(tempDir, "missing")},
			expectedError: true,
		},
		{
			name:          "file instead of directory",
			req:           SearchDirectoryRequest{Directory: filepath.Join(tempDir, "report.txt")},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchDirectory(tt.req)
			if tt.expectedError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			names := []string{}
			for _, f := range result.Files {
				names = append(names, f.Name)
			}
			if !reflect.DeepEqual(names, tt.expectedNames) {
				t.Errorf("files = %v, want %v", names, tt.expectedNames)
			}
			if result.TotalCount != len(tt.expectedNames) {
				t.Errorf("TotalCount = %d, want %d", result.TotalCount, len(tt.expectedNames))
			}
			if result.Directory != tempDir {
				t.Errorf("Directory = %s, want %s", result.Directory, tempDir)
			}
		})
	}
}

func TestSearch_FindBundles(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := writeSearchFixtures(t)

	paths, err := search.FindBundles(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 bundles, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			t.Errorf("expected absolute path, got %s", p)
		}
	}
}

func TestSearch_SkipsExcludedDirectory(t *testing.T) {
	tempDir := writeSearchFixtures(t)
	output := filepath.Join(tempDir, "import-output")
	split := filepath.Join(output, "mueller", "001_contract_Letter.pdf")
	if err := os.MkdirAll(filepath.Dir(split), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(split, make([]byte, 256), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, err := NewSearch(1024*1024, output).FindBundles(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 bundles, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if filepath.Dir(filepath.Dir(p)) == output {
			t.Errorf("output file %s listed as a bundle", p)
		}
	}

	// Relative exclusions resolve against the working directory
	t.Chdir(tempDir)
	paths, err = NewSearch(1024*1024, "import-output").FindBundles(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 4 {
		t.Errorf("expected 4 bundles with a relative exclusion, got %d: %v", len(paths), paths)
	}

	// Without the exclusion the split file is found
	paths, err = NewSearch(1024 * 1024).FindBundles(tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 5 {
		t.Errorf("expected 5 bundles without exclusion, got %d: %v", len(paths), paths)
	}
}

func TestSearch_SkipsSymlinkOutsideRoot(t *testing.T) {
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.pdf")
	if err := os.WriteFile(target, make([]byte, 128), 0o644); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	if err := os.Symlink(target, filepath.Join(root, "link.pdf")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	result, err := NewSearch(0).SearchDirectory(SearchDirectoryRequest{Directory: root})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 0 {
		t.Errorf("expected symlinked file outside root to be skipped, got %v", result.Files)
	}
}

func TestSearch_isPDFFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"bundle.pdf", true},
		{"BUNDLE.PDF", true},
		{"bundle.Pdf", true},
		{"bundle.txt", false},
		{"bundle.pdf.bak", false},
		{"pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := isPDFFile(tt.filename); got != tt.expected {
				t.Errorf("isPDFFile(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestSearch_matchesQuery(t *testing.T) {
	tests := []struct {
		filename string
		query    string
		expected bool
	}{
		{"mueller_gegen_acme.pdf", "", true},
		{"mueller_gegen_acme.pdf", "mueller", true},
		{"mueller_gegen_acme.pdf", "gegen acme", true},
		{"mueller_gegen_acme.pdf", "acme schmidt", false},
		{"mueller-kuendigung.pdf", "kuend", true},
		{"mueller_gegen_acme.pdf", "pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename+"/"+tt.query, func(t *testing.T) {
			if got := matchesQuery(tt.filename, tt.query); got != tt.expected {
				t.Errorf("matchesQuery(%q, %q) = %v, want %v", tt.filename, tt.query, got, tt.expected)
			}
		})
	}
}

func TestSearch_splitIntoWords(t *testing.T) {
	got := splitIntoWords("2024-03_mueller (gegen) acme.v2")
	want := []string{"2024", "03", "mueller", "gegen", "acme", "v2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitIntoWords() = %v, want %v", got, want)
	}
}

func BenchmarkSearch_matchesQuery(b *testing.B) {
	for i := 0; i < b.N; i++ {
		matchesQuery("2024-03_mueller_gegen_acme_kuendigungsschutzklage.pdf", "acme klage")
	}
}
