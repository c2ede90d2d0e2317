package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Load_missingFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func Test_Load_parsesLibraryPathsAndFragments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scadkernel.toml")
	content := `
library_paths = ["/opt/scad/lib", "./vendor"]

[fragment_defaults]
fa = 6
fs = 1
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"/opt/scad/lib", "./vendor"}, cfg.LibraryPaths)
	assert.Equal(t, 6.0, cfg.FragmentDefaults.Fa)
	assert.Equal(t, 1.0, cfg.FragmentDefaults.Fs)
}

func Test_Fragments_FillDefaults_onlyFillsZeroFields(t *testing.T) {
	f := Fragments{Fa: 20}.FillDefaults()
	assert.Equal(t, 20.0, f.Fa)
	assert.Equal(t, 2.0, f.Fs)
	assert.Equal(t, 0.0, f.Fn)
}

func Test_Config_Merge_explicitOverrideWinsOverConfig(t *testing.T) {
	cfg := Config{FragmentDefaults: Fragments{Fa: 6}}
	merged := cfg.Merge([]string{"/explicit"}, Fragments{Fa: 30})
	assert.Equal(t, 30.0, merged.FragmentDefaults.Fa)
	assert.Equal(t, []string{"/explicit"}, merged.LibraryPaths)
}

func Test_Config_Merge_configValueKeptWhenNoOverride(t *testing.T) {
	cfg := Config{FragmentDefaults: Fragments{Fs: 4}}
	merged := cfg.Merge(nil, Fragments{})
	assert.Equal(t, 4.0, merged.FragmentDefaults.Fs)
}
