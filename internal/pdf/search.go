package pdf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/a3tai/mcp-casefile-import/internal/pdf/security"
)

// Search lists the bundles waiting in a directory
type Search struct {
	validator *Validator
	excluded  []string
}

// NewSearch creates a new bundle search with the specified size limit.
// Directories in exclude, typically the import output directory, are never
// descended into.
func NewSearch(maxFileSize int64, exclude ...string) *Search {
	s := &Search{
		validator: NewValidator(maxFileSize, 0),
	}
	for _, dir := range exclude {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		s.excluded = append(s.excluded, filepath.Clean(abs))
		if real, err := filepath.EvalSymlinks(abs); err == nil && real != abs {
			s.excluded = append(s.excluded, real)
		}
	}
	return s
}

// isExcluded reports whether dir is one of the excluded directories
func (s *Search) isExcluded(dir string) bool {
	if len(s.excluded) == 0 {
		return false
	}
	candidates := []string{filepath.Clean(dir)}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		candidates = append(candidates, real)
	}
	for _, c := range candidates {
		for _, ex := range s.excluded {
			if c == ex {
				return true
			}
		}
	}
	return false
}

// SearchDirectory walks the directory recursively and returns every PDF that
// passes the quick file checks and matches the optional query. Hidden and
// excluded directories are skipped and results are sorted by path.
func (s *Search) SearchDirectory(req SearchDirectoryRequest) (*SearchDirectoryResult, error) {
	if req.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	info, err := os.Stat(req.Directory)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", req.Directory)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", req.Directory)
	}

	confine, err := security.NewPathValidator(req.Directory)
	if err != nil {
		return nil, err
	}
	absDirectory := confine.Root()
	query := strings.ToLower(strings.TrimSpace(req.Query))

	files := []FileInfo{}
	err = filepath.WalkDir(absDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Continue walking even if we encounter an error with a specific file
			return nil
		}

		// Skip anything a symlink leads out of the directory
		if within, err := confine.Within(path); err != nil || !within {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == absDirectory {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || s.isExcluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !isPDFFile(d.Name()) || !matchesQuery(d.Name(), query) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			// Skip invalid files but continue processing
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	if req.Limit > 0 && len(files) > req.Limit {
		files = files[:req.Limit]
	}

	return &SearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: req.Query,
	}, nil
}

// FindBundles returns the paths of all bundles in a directory
func (s *Search) FindBundles(directory string) ([]string, error) {
	result, err := s.SearchDirectory(SearchDirectoryRequest{Directory: directory})
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}

// isPDFFile checks if a file has a PDF extension
func isPDFFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// matchesQuery reports whether every word of the query occurs in one of
// the words of the file name. query must already be lower case.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.TrimSuffix(strings.ToLower(filename), ".pdf")
	if strings.Contains(name, query) {
		return true
	}

	words := splitIntoWords(name)
	for _, q := range splitIntoWords(query) {
		found := false
		for _, w := range words {
			if strings.Contains(w, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords splits a string on the separators common in file names
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
