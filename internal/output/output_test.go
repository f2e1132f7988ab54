package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/blogsmith/internal/content"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Smart Vending ROI", "smart-vending-roi"},
		{"  `smart-vending-roi` ", "smart-vending-roi"},
		{"What's New in 2026?", "what-s-new-in-2026"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestResolveSlug(t *testing.T) {
	withSlug := content.Parse("**URL Slug:** `smart-vending-roi-guide`\n")
	assert.Equal(t, "smart-vending-roi-guide", ResolveSlug(withSlug, "ignored"))

	noSlug := content.Parse("no metadata")
	assert.Equal(t, "office-coffee-service", ResolveSlug(noSlug, "Office Coffee Service"))
	assert.Equal(t, "untitled-draft", ResolveSlug(noSlug, "  "))
}

func TestSaveAndLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drafts")
	path, err := Save(dir, "vending-roi", "# Draft")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vending-roi.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Draft", string(data))

	assert.Equal(t, filepath.Join(dir, "images", "vending-roi"), ImagesDir(dir, "vending-roi"))
	assert.Equal(t, "vending-roi", SlugFromPath(path))
}

func TestFindImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"image-2.png", "image-1.jpg", "prompts.txt", "cover.webp", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "image-9.png"), 0o755))

	images, err := FindImages(dir)
	require.NoError(t, err)
	require.Len(t, images, 3)

	// Sorted by name: cover.webp, image-1.jpg, image-2.png
	assert.Equal(t, LocalImage{Position: 1, Path: filepath.Join(dir, "cover.webp")}, images[0])
	assert.Equal(t, 1, images[1].Position)
	assert.Equal(t, 2, images[2].Position)
}

func TestFindImagesMissingDir(t *testing.T) {
	images, err := FindImages(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, images)
}
