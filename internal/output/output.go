// Package output owns the on-disk layout of drafts:
//
//	<dir>/<slug>.md
//	<dir>/images/<slug>/image-<n>.<ext>
//	<dir>/images/<slug>/prompts.txt
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/imagegen"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters to one hyphen.
func Slugify(s string) string {
	return strings.Trim(nonSlugRe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// ResolveSlug prefers the draft's own URL slug and falls back to the keyword.
func ResolveSlug(doc *content.Document, keyword string) string {
	if slug := doc.Field(content.FieldSlug); slug != "" {
		if s := Slugify(slug); s != "" {
			return s
		}
	}
	if s := Slugify(keyword); s != "" {
		return s
	}
	return "untitled-draft"
}

// MarkdownPath returns the path of the saved draft for slug.
func MarkdownPath(dir, slug string) string {
	return filepath.Join(dir, slug+".md")
}

// ImagesDir returns the images directory for slug.
func ImagesDir(dir, slug string) string {
	return filepath.Join(dir, "images", slug)
}

// Save writes the draft markdown and returns its path.
func Save(dir, slug, markdown string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := MarkdownPath(dir, slug)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("saving draft: %w", err)
	}
	return path, nil
}

// SlugFromPath returns the slug of a saved draft path.
func SlugFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// LocalImage is an image file found in a slug's images directory.
type LocalImage struct {
	Position int
	Path     string
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// FindImages lists image files in dir sorted by name. Positions come from
// image-<n> names; other files take their 1-based index in the listing.
// A missing directory yields no images and no error.
func FindImages(dir string) ([]LocalImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading images directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	images := make([]LocalImage, 0, len(names))
	for i, name := range names {
		pos, ok := imagegen.PositionFromPath(name)
		if !ok {
			pos = i + 1
		}
		images = append(images, LocalImage{Position: pos, Path: filepath.Join(dir, name)})
	}
	return images, nil
}
