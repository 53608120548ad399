// Package ocr recognises the text of scanned bundle pages. Pages are
// rasterised with pdftoppm and read with tesseract.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	pdferrors "github.com/a3tai/mcp-casefile-import/internal/pdf/errors"
)

// Engine recognises the text of a single page of a PDF on disk. A nil
// Engine means OCR is unavailable.
type Engine interface {
	RecognizePage(ctx context.Context, pdfPath string, page int) (string, error)
}

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // default "deu"
	DPI         int    // default 300
	TessdataDir string
}

// Tesseract is the Engine backed by the poppler and tesseract binaries
type Tesseract struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "deu"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Tesseract{cfg: cfg, runner: commandRunner{}, logger: logger}
}

// Available reports whether both binaries can be found
func (t *Tesseract) Available() error {
	for _, bin := range []string{t.cfg.Pdftoppm, t.cfg.Tesseract} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	return nil
}

// RecognizePage renders one page to PNG and runs tesseract on it
func (t *Tesseract) RecognizePage(ctx context.Context, pdfPath string, page int) (string, error) {
	start := time.Now()
	fail := func(msg string, err error) error {
		return pdferrors.WrapError(pdferrors.ErrorTypeOCRFailed, msg, err).WithFile(pdfPath).WithPage(page)
	}

	tmpDir, err := os.MkdirTemp("", "casefile-ocr-*")
	if err != nil {
		return "", fail("cannot create temp dir", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	// pdftoppm -r 300 -f N -l N -png <in.pdf> <tmp/page>
	prefix := filepath.Join(tmpDir, "page")
	p := strconv.Itoa(page)
	_, errb, err := t.runner.Run(ctx, t.cfg.Pdftoppm,
		"-r", strconv.Itoa(t.cfg.DPI), "-f", p, "-l", p, "-png", pdfPath, prefix)
	if err != nil {
		return "", fail("pdftoppm: "+strings.TrimSpace(string(errb)), err)
	}

	// output is prefix-N.png, zero padded to the page count width
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return "", fail("pdftoppm produced no image", fmt.Errorf("no pages rendered"))
	}

	args := []string{matches[0], "stdout", "-l", t.cfg.Language}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, args...)
	if err != nil {
		return "", fail("tesseract: "+strings.TrimSpace(string(errb)), err)
	}

	text := pdf.NormalizeText(string(out))
	t.logger.Debug("page recognised",
		"file", filepath.Base(pdfPath),
		"page", page,
		"chars", len(text),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
