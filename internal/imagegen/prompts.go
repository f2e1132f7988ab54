package imagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WritePromptsFile writes the human-readable prompts file used when no
// provider generated anything. It returns the file path.
func WritePromptsFile(dir, slug string, specs []Spec) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating images directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Image prompts for: %s\n", slug)
	b.WriteString("Generate each image with any tool and save it in this folder as image-<N>.png.\n")
	fmt.Fprintf(&b, "If the draft is already on WordPress, run: blogsmith upload-images %s\n", slug)

	for _, s := range specs {
		fmt.Fprintf(&b, "\n## Image %d: %s\n", s.Position, s.Title)
		fmt.Fprintf(&b, "File: %s\n\n", FileName(s.Position, ".png"))
		b.WriteString(s.Prompt)
		b.WriteString("\n")
	}

	path := filepath.Join(dir, PromptsFileName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing prompts file: %w", err)
	}
	return path, nil
}
