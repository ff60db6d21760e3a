package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/vadim/meta-bridge/internal/domain/links/dao"
	"github.com/vadim/meta-bridge/internal/domain/links/entity"
)

// urlPattern matches http(s) URLs with an optional www prefix, a domain and
// an optional path/query part
var urlPattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)

// Resolver defines the interface for fetching link metadata. Defined here
// (consumer), implemented by the Open Graph upstream.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*entity.LinkPreview, error)
}

// Service handles URL extraction and metadata resolution with a cache
type Service struct {
	resolver Resolver
	cache    dao.PreviewRepository
	cacheTTL time.Duration
	logger   *slog.Logger
}

// New creates a new links service. The cache repository may be nil, in which
// case every detection resolves over the network.
func New(resolver Resolver, cache dao.PreviewRepository, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ExtractURLs returns the URLs present in the text, in order of first
// appearance, deduplicated
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:!?)")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}

// DetectLinks extracts URLs from the text and resolves metadata for each,
// skipping dismissed URLs. URLs within one text resolve in parallel; a URL
// whose metadata fetch fails is silently omitted.
func (s *Service) DetectLinks(ctx context.Context, text string, dismissed map[string]bool) []entity.LinkPreview {
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return nil
	}

	results := make([]*entity.LinkPreview, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		if dismissed[u] {
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			preview, err := s.resolve(ctx, u)
			if err != nil {
				s.logger.Debug("link metadata fetch failed", "url", u, "error", err)
				return
			}
			results[i] = preview
		}(i, u)
	}
	wg.Wait()

	var previews []entity.LinkPreview
	for _, p := range results {
		if p != nil {
			previews = append(previews, *p)
		}
	}
	return previews
}

// resolve consults the cache before going to the network
func (s *Service) resolve(ctx context.Context, url string) (*entity.LinkPreview, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, url)
		if err != nil {
			s.logger.Warn("link preview cache read failed", "url", url, "error", err)
		} else if cached != nil && time.Since(cached.FetchedAt) < s.cacheTTL {
			return cached, nil
		}
	}

	preview, err := s.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, preview); err != nil {
			s.logger.Warn("link preview cache write failed", "url", url, "error", err)
		}
	}

	return preview, nil
}

// PruneCache removes previews older than the cache TTL
func (s *Service) PruneCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	n, err := s.cache.DeleteOlderThan(ctx, time.Now().Add(-s.cacheTTL))
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("pruned link preview cache", "removed", n)
	}
	return nil
}
