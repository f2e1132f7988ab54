package wordpress

import (
	"context"
	"net/http"
)

// SEOMeta holds the Rank Math fields for a post.
type SEOMeta struct {
	Title        string
	Description  string
	FocusKeyword string
}

func (m SEOMeta) fields() map[string]string {
	return map[string]string{
		"rank_math_title":         m.Title,
		"rank_math_description":   m.Description,
		"rank_math_focus_keyword": m.FocusKeyword,
	}
}

// SetRankMathMeta tries the Rank Math endpoint, then plain post meta. It
// reports whether either write was accepted.
func (c *Client) SetRankMathMeta(ctx context.Context, postID int, meta SEOMeta) bool {
	resp, err := c.doJSON(ctx, readTimeout, http.MethodPost, "/wp-json/rankmath/v1/updateMeta", map[string]any{
		"objectID":   postID,
		"objectType": "post",
		"meta":       meta.fields(),
	})
	if err == nil && resp.ok() {
		return true
	}
	c.log.Debug("rank math endpoint rejected meta", "post_id", postID, "error", err)

	resp, err = c.doJSON(ctx, readTimeout, http.MethodPost, postPath(postID), map[string]any{
		"meta": meta.fields(),
	})
	if err == nil && resp.ok() {
		return true
	}
	c.log.Debug("post meta update rejected", "post_id", postID, "error", err)
	return false
}
