package ogmeta

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vadim/meta-bridge/internal/domain/links/entity"
)

func serve(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve(t *testing.T) {
	t.Run("og tags", func(t *testing.T) {
		srv := serve(t, `<html><head>
			<meta property="og:title" content="Leather Bag">
			<meta property="og:description" content="Hand-stitched leather bag.">
			<meta property="og:image" content="https://cdn.example.com/bag.jpg">
			<meta property="og:site_name" content="Acme Store">
			<title>fallback title</title>
		</head><body></body></html>`)

		r := New(WithHTTPClient(srv.Client()))
		got, err := r.Resolve(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if got.Title != "Leather Bag" {
			t.Errorf("Expected og:title, got %q", got.Title)
		}
		if got.Description != "Hand-stitched leather bag." {
			t.Errorf("Expected og:description, got %q", got.Description)
		}
		if got.Image != "https://cdn.example.com/bag.jpg" {
			t.Errorf("Expected og:image, got %q", got.Image)
		}
		if got.SiteName != "Acme Store" {
			t.Errorf("Expected og:site_name, got %q", got.SiteName)
		}
		if got.FetchedAt.IsZero() {
			t.Error("Expected FetchedAt to be set")
		}
	})

	t.Run("fallback to title and meta description", func(t *testing.T) {
		srv := serve(t, `<html><head>
			<title>  Plain Page  </title>
			<meta name="description" content="A page without og tags.">
		</head><body></body></html>`)

		r := New(WithHTTPClient(srv.Client()))
		got, err := r.Resolve(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		if got.Title != "Plain Page" {
			t.Errorf("Expected trimmed <title> fallback, got %q", got.Title)
		}
		if got.Description != "A page without og tags." {
			t.Errorf("Expected meta description fallback, got %q", got.Description)
		}
		if got.SiteName == "" {
			t.Error("Expected hostname as site name fallback")
		}
	})

	t.Run("relative og:image resolves against the page", func(t *testing.T) {
		srv := serve(t, `<html><head>
			<meta property="og:image" content="/images/bag.jpg">
		</head><body></body></html>`)

		r := New(WithHTTPClient(srv.Client()))
		got, err := r.Resolve(context.Background(), srv.URL+"/products/bag")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got.Image != srv.URL+"/images/bag.jpg" {
			t.Errorf("Expected absolute image URL, got %q", got.Image)
		}
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		r := New(WithHTTPClient(srv.Client()))
		if _, err := r.Resolve(context.Background(), srv.URL); err == nil {
			t.Error("Expected an error for a 404 page")
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		r := New()
		if _, err := r.Resolve(context.Background(), "ftp://example.com/file"); !errors.Is(err, entity.ErrUnsupportedURL) {
			t.Errorf("Expected ErrUnsupportedURL, got %v", err)
		}
	})
}
