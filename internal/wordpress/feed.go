package wordpress

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/blogsmith/internal/errs"
)

// FeedPosts reads up to count recent posts from the public RSS feed at
// <site>/feed. It needs no credentials and fills Title, Link, and Slug only.
func (c *Client) FeedPosts(ctx context.Context, count int) ([]Post, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = c.http
	feed, err := parser.ParseURLWithContext(c.baseURL+"/feed", ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Remote, err, "reading site feed")
	}

	var posts []Post
	for _, item := range feed.Items {
		if len(posts) >= count {
			break
		}
		if p, ok := feedPost(item); ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func feedPost(item *gofeed.Item) (Post, bool) {
	link := item.Link
	if link == "" {
		link = item.GUID
	}
	title := PlainText(item.Title)
	if link == "" || title == "" {
		return Post{}, false
	}
	return Post{Title: title, Link: link, Slug: slugFromLink(link)}, true
}

// slugFromLink takes the last path segment of a permalink. Links of the
// form "?p=123" have no slug.
func slugFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	seg := path.Base(strings.TrimRight(u.Path, "/"))
	if seg == "." || seg == "/" {
		return ""
	}
	return seg
}
