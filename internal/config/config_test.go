package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resolverd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: "0.0.0.0:5353"
max_referrals: 5
enable_cookies: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5353", cfg.Listen)
	assert.Equal(t, 5, cfg.MaxReferrals)
	assert.True(t, cfg.EnableCookies)
	// Fields the file didn't mention keep their defaults.
	assert.Equal(t, Default().MaxCNAMEDepth, cfg.MaxCNAMEDepth)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
