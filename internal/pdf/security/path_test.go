package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewPathValidator(t *testing.T) {
	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: t.TempDir()},
		{name: "empty directory", dir: "", wantError: true},
		{name: "blank directory", dir: "   ", wantError: true},
		{name: "not yet created", dir: "/non/existent/inbox"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewPathValidator(tt.dir)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !filepath.IsAbs(v.Root()) {
				t.Errorf("Root() = %q, want absolute path", v.Root())
			}
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	inbox := t.TempDir()
	outside := t.TempDir()

	bundle := filepath.Join(inbox, "mueller.pdf")
	if err := os.WriteFile(bundle, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("Failed to create bundle: %v", err)
	}

	v, err := NewPathValidator(inbox)
	if err != nil {
		t.Fatalf("NewPathValidator() error = %v", err)
	}

	tests := []struct {
		name      string
		path      string
		want      string
		wantError bool
	}{
		{name: "absolute inside", path: bundle, want: bundle},
		{name: "relative to inbox", path: "mueller.pdf", want: bundle},
		{name: "not yet existing file", path: "new/out.pdf", want: filepath.Join(inbox, "new", "out.pdf")},
		{name: "null byte stripped", path: "mueller.pdf\x00", want: bundle},
		{name: "traversal", path: "../escape.pdf", wantError: true},
		{name: "absolute outside", path: filepath.Join(outside, "x.pdf"), wantError: true},
		{name: "empty", path: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Resolve(tt.path)
			if tt.wantError {
				if err == nil {
					t.Errorf("Resolve(%q) expected error, got %q", tt.path, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) unexpected error: %v", tt.path, err)
			}
			wantReal, _ := filepath.Abs(tt.want)
			if got != wantReal {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, wantReal)
			}
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	inbox := t.TempDir()
	outside := t.TempDir()

	target := filepath.Join(outside, "secret.pdf")
	if err := os.WriteFile(target, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("Failed to create target: %v", err)
	}
	link := filepath.Join(inbox, "link.pdf")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	v, _ := NewPathValidator(inbox)
	within, err := v.Within(link)
	if err != nil {
		t.Fatalf("Within() error = %v", err)
	}
	if within {
		t.Error("Expected symlink pointing outside the inbox to be rejected")
	}
	if _, err := v.Resolve("link.pdf"); err == nil {
		t.Error("Expected Resolve to reject symlink escape")
	}
}

func TestPathValidator_WithinRootItself(t *testing.T) {
	inbox := t.TempDir()
	v, _ := NewPathValidator(inbox)

	within, err := v.Within(inbox)
	if err != nil || !within {
		t.Errorf("Within(root) = %v, %v; want true, nil", within, err)
	}

	sibling := inbox + "-other"
	within, err = v.Within(sibling)
	if err != nil || within {
		t.Errorf("Within(%q) = %v, %v; want false, nil", sibling, within, err)
	}
}
