package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_Resolve_findsFileInBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shape.scad", "cube(1);")

	r := NewResolver(dir)
	tree, diags := r.Resolve("use", "shape.scad", 1)
	assert.Empty(t, diags)
	assert.NotNil(t, tree)
	assert.Len(t, tree.Nodes, 1)
}

func Test_Resolve_findsFileInLibSubdir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "lib"), 0o755))
	writeFile(t, dir, "lib/helper.scad", "sphere(2);")

	r := NewResolver(dir)
	tree, diags := r.Resolve("import", "helper.scad", 1)
	assert.Empty(t, diags)
	assert.NotNil(t, tree)
}

func Test_Resolve_missingFileReportsImportError(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir)
	tree, diags := r.Resolve("use", "nope.scad", 3)
	assert.Nil(t, tree)
	assert.True(t, diags.HasErrors())
}

func Test_Resolve_cycleIsDetected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.scad", "use <b.scad>;")
	writeFile(t, dir, "b.scad", "use <a.scad>;")

	r := NewResolver(dir)
	_, diags := r.Resolve("use", "a.scad", 1)
	assert.Empty(t, diags)

	r.visiting.Add(normalize(filepath.Join(dir, "a.scad")))
	_, diags = r.Resolve("use", "a.scad", 1)
	assert.True(t, diags.HasErrors())
}

func Test_Resolve_findsFileInExplicitLibraryPath(t *testing.T) {
	base := t.TempDir()
	extra := t.TempDir()
	writeFile(t, extra, "widget.scad", "cylinder(1,1,1);")

	r := NewResolver(base)
	r.LibraryPaths = []string{extra}
	tree, diags := r.Resolve("import", "widget.scad", 1)
	assert.Empty(t, diags)
	assert.NotNil(t, tree)
}
