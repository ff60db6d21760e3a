package ogmeta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/vadim/meta-bridge/internal/domain/links/entity"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 2 << 20 // HTML beyond 2MB is cut off before parsing
	userAgent      = "meta-bridge/1.0 (+link preview)"
)

// Resolver fetches a page and extracts Open Graph metadata from it
type Resolver struct {
	httpClient *http.Client
}

// Option configures the Resolver
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = c
	}
}

// WithTimeout sets the fetch timeout
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.httpClient.Timeout = d
	}
}

// New creates a new Open Graph resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches the URL and scrapes og: tags, falling back to <title> and
// the meta description when they are absent
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*entity.LinkPreview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, entity.ErrUnsupportedURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	preview := &entity.LinkPreview{
		URL:         rawURL,
		Title:       metaProperty(doc, "og:title"),
		Description: metaProperty(doc, "og:description"),
		Image:       metaProperty(doc, "og:image"),
		SiteName:    metaProperty(doc, "og:site_name"),
		FetchedAt:   time.Now(),
	}

	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		preview.Description = metaName(doc, "description")
	}
	if preview.SiteName == "" {
		preview.SiteName = u.Hostname()
	}

	// Relative og:image values are resolved against the page URL
	if preview.Image != "" {
		if img, err := u.Parse(preview.Image); err == nil {
			preview.Image = img.String()
		}
	}

	return preview, nil
}

func metaProperty(doc *goquery.Document, property string) string {
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func metaName(doc *goquery.Document, name string) string {
	content, _ := doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
	return strings.TrimSpace(content)
}
