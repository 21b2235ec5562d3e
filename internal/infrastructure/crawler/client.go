package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/wato-stats/internal/domain/wager"
	"github.com/riskibarqy/wato-stats/internal/platform/logging"
)

const DefaultBaseURL = "https://ygosu.com"

// PageFetcher downloads one page body.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type ClientConfig struct {
	BaseURL  string
	Location *time.Location
	Fetcher  PageFetcher
	Logger   *logging.Logger
}

// Client reads board list pages and post pages of the forum.
type Client struct {
	baseURL  string
	location *time.Location
	fetcher  PageFetcher
	logger   *logging.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Fetcher == nil {
		return nil, crerr.New("crawler client requires a fetcher")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse crawl base url %q", baseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, crerr.Newf("crawl base url must be http(s), got %q", baseURL)
	}
	if parsed.Host == "" {
		return nil, crerr.Newf("crawl base url has no host: %q", baseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	return &Client{
		baseURL:  baseURL,
		location: loc,
		fetcher:  cfg.Fetcher,
		logger:   logger,
	}, nil
}

func (c *Client) ListURL(slug string, page int) string {
	return fmt.Sprintf("%s/board/%s/?s_wato=Y&page=%d", c.baseURL, url.PathEscape(slug), page)
}

func (c *Client) PostURL(slug string, postID int64) string {
	return c.baseURL + "/board/" + url.PathEscape(slug) + "/" + strconv.FormatInt(postID, 10)
}

// ListClosedPostIDs returns the closed betting post ids on one list page.
func (c *Client) ListClosedPostIDs(ctx context.Context, slug string, page int) ([]int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("board slug is required")
	}
	if page <= 0 {
		return nil, fmt.Errorf("page must be greater than zero")
	}

	body, err := c.fetcher.Fetch(ctx, c.ListURL(slug, page))
	if err != nil {
		return nil, fmt.Errorf("fetch list page slug=%s page=%d: %w", slug, page, err)
	}
	ids, err := ParseListPage(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("slug=%s page=%d: %w", slug, page, err)
	}

	c.logger.DebugContext(ctx, "list page parsed", "slug", slug, "page", page, "closed_posts", len(ids))
	return ids, nil
}

// FetchPost downloads and parses one post. The deadline is read in the
// client's source location.
func (c *Client) FetchPost(ctx context.Context, slug string, postID int64) (wager.ParsedPost, error) {
	body, err := c.fetcher.Fetch(ctx, c.PostURL(slug, postID))
	if err != nil {
		return wager.ParsedPost{}, fmt.Errorf("fetch post slug=%s post_id=%d: %w", slug, postID, err)
	}

	parsed, err := ParsePostPage(bytes.NewReader(body), c.location)
	if err != nil {
		return wager.ParsedPost{}, fmt.Errorf("slug=%s post_id=%d: %w", slug, postID, err)
	}
	parsed.BoardSlug = slug
	parsed.PostID = postID
	if parsed.SkippedRows > 0 {
		c.logger.WarnContext(ctx, "post rows skipped", "slug", slug, "post_id", postID, "skipped_rows", parsed.SkippedRows)
	}
	return parsed, nil
}
