package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := New(
		WithBaseURL(srv.URL),
		WithAPIVersion("v21.0"),
		WithHTTPClient(srv.Client()),
	)
	return client, srv
}

func TestGetUserPages(t *testing.T) {
	var gotPath, gotToken string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"page-1","name":"My Page","category":"Retail","access_token":"page-token","followers_count":120},
			{"id":"page-2","name":"Other Page"}
		]}`))
	}))
	defer srv.Close()

	pages, err := client.GetUserPages(context.Background(), "user-token")
	if err != nil {
		t.Fatalf("GetUserPages failed: %v", err)
	}

	if gotPath != "/v21.0/me/accounts" {
		t.Errorf("Expected path /v21.0/me/accounts, got %s", gotPath)
	}
	if gotToken != "user-token" {
		t.Errorf("Expected access token in query, got %q", gotToken)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if pages[0].AccessToken != "page-token" || pages[0].FollowerCount != 120 {
		t.Errorf("Unexpected first page: %+v", pages[0])
	}
}

func TestGetPageInstagramAccount(t *testing.T) {
	t.Run("linked account", func(t *testing.T) {
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"page-1","instagram_business_account":{"id":"ig-1","username":"myshop","followers_count":500}}`))
		}))
		defer srv.Close()

		ig, err := client.GetPageInstagramAccount(context.Background(), "page-1", "token")
		if err != nil {
			t.Fatalf("GetPageInstagramAccount failed: %v", err)
		}
		if ig == nil || ig.Username != "myshop" {
			t.Errorf("Expected @myshop, got %+v", ig)
		}
	})

	t.Run("no linked account", func(t *testing.T) {
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id":"page-1"}`))
		}))
		defer srv.Close()

		ig, err := client.GetPageInstagramAccount(context.Background(), "page-1", "token")
		if err != nil {
			t.Fatalf("GetPageInstagramAccount failed: %v", err)
		}
		if ig != nil {
			t.Errorf("Expected nil for an unlinked page, got %+v", ig)
		}
	})
}

func TestAPIError(t *testing.T) {
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190,"fbtrace_id":"abc"}}`))
	}))
	defer srv.Close()

	_, err := client.GetUserInfo(context.Background(), "bad-token")
	if err == nil {
		t.Fatal("Expected an error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != 190 {
		t.Errorf("Expected code 190, got %d", apiErr.Code)
	}
	if apiErr.Type != "OAuthException" {
		t.Errorf("Expected OAuthException, got %s", apiErr.Type)
	}
}

func TestPublishPageFeed(t *testing.T) {
	var gotMessage, gotLink string
	client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		gotMessage = r.URL.Query().Get("message")
		gotLink = r.URL.Query().Get("link")
		w.Write([]byte(`{"id":"page-1_98765"}`))
	}))
	defer srv.Close()

	out, err := client.PublishPageFeed(context.Background(), PublishPageFeedInput{
		PageID:      "page-1",
		AccessToken: "token",
		Message:     "hello",
		Link:        "https://example.com",
	})
	if err != nil {
		t.Fatalf("PublishPageFeed failed: %v", err)
	}
	if out.ID != "page-1_98765" {
		t.Errorf("Expected post id, got %q", out.ID)
	}
	if gotMessage != "hello" || gotLink != "https://example.com" {
		t.Errorf("Expected message and link forwarded, got message=%q link=%q", gotMessage, gotLink)
	}
}
