package locate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klanec/pic2pin/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, roots []string, recursive bool) []Entry {
	t.Helper()
	ch, err := Files(context.Background(), roots, recursive)
	require.NoError(t, err)

	var entries []Entry
	for e := range ch {
		entries = append(entries, e)
	}
	return entries
}

func paths(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		if e.Err == nil {
			out = append(out, e.Path)
		}
	}
	return out
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFilesRequiresRoots(t *testing.T) {
	_, err := Files(context.Background(), nil, false)
	require.Error(t, err)
	var usageErr *common.UsageError
	assert.ErrorAs(t, err, &usageErr)
}

func TestFilesDirectFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	writeFile(t, file)

	// A file root is yielded as-is; extension plays no part.
	got := collect(t, []string{file}, false)
	require.Len(t, got, 1)
	assert.Equal(t, file, got[0].Path)
	assert.NoError(t, got[0].Err)
}

func TestFilesNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jpg"))
	writeFile(t, filepath.Join(dir, "a.jpg"))
	writeFile(t, filepath.Join(dir, "sub", "nested.jpg"))

	got := paths(collect(t, []string{dir}, false))
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpg"),
	}, got)
}

func TestFilesRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.jpg"))
	writeFile(t, filepath.Join(dir, "a", "deep", "c.jpg"))
	writeFile(t, filepath.Join(dir, "a", "d.jpg"))

	got := paths(collect(t, []string{dir}, true))
	assert.Equal(t, []string{
		filepath.Join(dir, "a", "deep", "c.jpg"),
		filepath.Join(dir, "a", "d.jpg"),
		filepath.Join(dir, "b.jpg"),
	}, got)
}

func TestFilesRootOrderPreserved(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "z.jpg")
	second := filepath.Join(dir, "a.jpg")
	writeFile(t, first)
	writeFile(t, second)

	// Roots are processed in the order given, not sorted.
	got := paths(collect(t, []string{first, second}, false))
	assert.Equal(t, []string{first, second}, got)
}

func TestFilesMissingRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"))
	missing := filepath.Join(dir, "nope")

	got := collect(t, []string{missing, dir}, false)
	require.Len(t, got, 2)
	assert.Equal(t, missing, got[0].Path)
	assert.Error(t, got[0].Err)
	assert.True(t, os.IsNotExist(got[0].Err))
	assert.NoError(t, got[1].Err)
}

func TestFilesSymlinkedDirNotFollowed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "real", "a.jpg"))
	link := filepath.Join(dir, "real", "loop")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	// Must terminate and must not duplicate files through the link.
	got := paths(collect(t, []string{dir}, true))
	assert.Equal(t, []string{filepath.Join(dir, "real", "a.jpg")}, got)
}

func TestFilesCancellation(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		writeFile(t, filepath.Join(dir, name+".jpg"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := Files(ctx, []string{dir}, false)
	require.NoError(t, err)

	<-ch
	cancel()

	// The sequence must terminate shortly after cancellation.
	count := 0
	for range ch {
		count++
	}
	assert.Less(t, count, 5)
}
