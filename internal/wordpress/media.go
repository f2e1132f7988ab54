package wordpress

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Media is an uploaded attachment.
type Media struct {
	ID  int
	URL string
	Alt string
}

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MimeType returns the upload content type for a file name, defaulting to JPEG.
func MimeType(name string) string {
	if m, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return m
	}
	return "image/jpeg"
}

// UploadMedia uploads an image file, then tags it with alt text and a
// "<slug>-image-<n>" title. Tagging is best-effort.
func (c *Client) UploadMedia(ctx context.Context, path, slug string, position int, alt string) (Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Media{}, fmt.Errorf("reading image: %w", err)
	}

	name := filepath.Base(path)
	header := http.Header{
		"Content-Disposition": {fmt.Sprintf(`attachment; filename="%s"`, name)},
		"Content-Type":        {MimeType(name)},
	}
	resp, err := c.do(ctx, mediaTimeout, http.MethodPost, apiPrefix+"/media", nil, bytes.NewReader(data), header)
	if err != nil {
		return Media{}, err
	}
	if !resp.ok() {
		return Media{}, resp.err("image upload failed (%d)", resp.status)
	}

	var uploaded struct {
		ID        int    `json:"id"`
		SourceURL string `json:"source_url"`
	}
	if err := resp.decode(&uploaded); err != nil {
		return Media{}, err
	}

	title := fmt.Sprintf("%s-image-%d", slug, position)
	if err := c.UpdateMedia(ctx, uploaded.ID, alt, title); err != nil {
		c.log.Warn("could not tag uploaded image", "media_id", uploaded.ID, "error", err)
	}

	return Media{ID: uploaded.ID, URL: uploaded.SourceURL, Alt: alt}, nil
}

// UpdateMedia sets the alt text and title of an attachment.
func (c *Client) UpdateMedia(ctx context.Context, mediaID int, alt, title string) error {
	resp, err := c.doJSON(ctx, readTimeout, http.MethodPost, fmt.Sprintf("%s/media/%d", apiPrefix, mediaID), map[string]any{
		"alt_text": alt,
		"title":    title,
	})
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.err("failed to update media %d (%d)", mediaID, resp.status)
	}
	return nil
}
