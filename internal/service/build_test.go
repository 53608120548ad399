package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-casefile-import/internal/config"
)

func TestFromConfig_CustomRulesWithoutOCR(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(`{
  "version": "kanzlei-7",
  "rules": [{"name": "receipt", "pattern": "Quittung", "type": "Receipt", "category": "finance"}]
}`), 0o644))

	cfg := config.DefaultConfig()
	cfg.InboxDirectory = dir
	cfg.OutputDirectory = filepath.Join(dir, "out")
	cfg.RulesFile = rules
	cfg.OCREnabled = false

	svc, err := FromConfig(cfg, nil)
	require.NoError(t, err)

	info := svc.ServerInfo(cfg.ServerName, cfg.Version)
	assert.Equal(t, "kanzlei-7", info.RuleVersion)
	assert.Equal(t, 1, info.RuleCount)
	assert.False(t, info.OCRAvailable)
}

func TestNewPipeline_MissingRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RulesFile = filepath.Join(t.TempDir(), "missing.json")
	cfg.OCREnabled = false

	_, err := NewPipeline(cfg, nil)
	assert.ErrorContains(t, err, "failed to load rules")
}

func TestNewPipeline_MissingOCRBinaries(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.OCREnabled = true

	p, err := NewPipeline(cfg, nil)
	require.NoError(t, err)
	assert.False(t, p.OCRAvailable)
	assert.NotNil(t, p.Importer)
}
