package graph

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestPublishTargetPage(t *testing.T) {
	t.Run("text post with first comment", func(t *testing.T) {
		var paths []string
		var commentMessage string
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			switch {
			case strings.HasSuffix(r.URL.Path, "/feed"):
				w.Write([]byte(`{"id":"page-1_111"}`))
			case strings.HasSuffix(r.URL.Path, "/comments"):
				commentMessage = r.URL.Query().Get("message")
				w.Write([]byte(`{"id":"comment-1"}`))
			default:
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:      TargetInput{Kind: "page", TargetID: "page-1", AccessToken: "token"},
			Message:     "hello",
			CommentLink: "https://shop.example.com",
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "page-1_111" {
			t.Errorf("Expected post id page-1_111, got %q", out.PostID)
		}
		if out.CommentID != "comment-1" {
			t.Errorf("Expected comment id, got %q", out.CommentID)
		}
		if commentMessage != "https://shop.example.com" {
			t.Errorf("Expected comment link as comment body, got %q", commentMessage)
		}
	})

	t.Run("photo post", func(t *testing.T) {
		var photoURL string
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/photos") {
				t.Errorf("Expected /photos, got %s", r.URL.Path)
			}
			photoURL = r.URL.Query().Get("url")
			w.Write([]byte(`{"id":"photo-1","post_id":"page-1_222"}`))
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "page", TargetID: "page-1", AccessToken: "token"},
			Message: "look",
			Media:   []MediaRef{{URL: "https://cdn.example.com/p.jpg"}},
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "page-1_222" {
			t.Errorf("Expected the post_id over the object id, got %q", out.PostID)
		}
		if photoURL != "https://cdn.example.com/p.jpg" {
			t.Errorf("Expected photo URL forwarded, got %q", photoURL)
		}
	})

	t.Run("video post", func(t *testing.T) {
		var fileURL string
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/videos") {
				t.Errorf("Expected /videos, got %s", r.URL.Path)
			}
			fileURL = r.URL.Query().Get("file_url")
			w.Write([]byte(`{"id":"video-1"}`))
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "page", TargetID: "page-1", AccessToken: "token"},
			Message: "watch",
			Media:   []MediaRef{{URL: "https://cdn.example.com/v.mp4", IsVideo: true}},
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "video-1" {
			t.Errorf("Expected video id, got %q", out.PostID)
		}
		if fileURL != "https://cdn.example.com/v.mp4" {
			t.Errorf("Expected video URL forwarded, got %q", fileURL)
		}
	})

	t.Run("failed comment does not fail the post", func(t *testing.T) {
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/feed"):
				w.Write([]byte(`{"id":"page-1_333"}`))
			case strings.HasSuffix(r.URL.Path, "/comments"):
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"message":"not allowed","code":200}}`))
			}
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:      TargetInput{Kind: "page", TargetID: "page-1", AccessToken: "token"},
			Message:     "hello",
			CommentLink: "https://shop.example.com",
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "page-1_333" {
			t.Errorf("Expected post id, got %q", out.PostID)
		}
		if out.CommentID != "" {
			t.Errorf("Expected no comment id, got %q", out.CommentID)
		}
	})
}

func TestPublishTargetGroup(t *testing.T) {
	t.Run("media falls back to a link attachment", func(t *testing.T) {
		var gotLink string
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/feed") {
				t.Errorf("Expected /feed, got %s", r.URL.Path)
			}
			gotLink = r.URL.Query().Get("link")
			w.Write([]byte(`{"id":"group-post-1"}`))
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "group", TargetID: "group-1", AccessToken: "token"},
			Message: "hello group",
			Media:   []MediaRef{{URL: "https://cdn.example.com/p.jpg"}},
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "group-post-1" {
			t.Errorf("Expected group post id, got %q", out.PostID)
		}
		if gotLink != "https://cdn.example.com/p.jpg" {
			t.Errorf("Expected media URL as link, got %q", gotLink)
		}
	})
}

func TestPublishTargetInstagram(t *testing.T) {
	t.Run("container workflow", func(t *testing.T) {
		var steps []string
		var creationID string
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/media"):
				steps = append(steps, "create")
				if got := r.URL.Query().Get("image_url"); got != "https://cdn.example.com/p.jpg" {
					t.Errorf("Expected image_url, got %q", got)
				}
				w.Write([]byte(`{"id":"container-1"}`))
			case strings.HasSuffix(r.URL.Path, "/media_publish"):
				steps = append(steps, "publish")
				creationID = r.URL.Query().Get("creation_id")
				w.Write([]byte(`{"id":"ig-post-1"}`))
			default:
				steps = append(steps, "status")
				w.Write([]byte(`{"id":"container-1","status_code":"FINISHED"}`))
			}
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		out, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "instagram", TargetID: "ig-1", AccessToken: "token"},
			Message: "caption",
			Media:   []MediaRef{{URL: "https://cdn.example.com/p.jpg"}},
		})
		if err != nil {
			t.Fatalf("PublishTarget failed: %v", err)
		}
		if out.PostID != "ig-post-1" {
			t.Errorf("Expected ig post id, got %q", out.PostID)
		}
		if creationID != "container-1" {
			t.Errorf("Expected creation_id container-1, got %q", creationID)
		}

		want := []string{"create", "status", "publish"}
		if len(steps) != 3 || steps[0] != want[0] || steps[1] != want[1] || steps[2] != want[2] {
			t.Errorf("Expected steps %v, got %v", want, steps)
		}
	})

	t.Run("no media", func(t *testing.T) {
		pub := NewPublisher(New())
		_, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "instagram", TargetID: "ig-1", AccessToken: "token"},
			Message: "caption",
		})
		if err == nil {
			t.Fatal("Expected an error for instagram without media")
		}
	})

	t.Run("container error state", func(t *testing.T) {
		client, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case strings.HasSuffix(r.URL.Path, "/media"):
				w.Write([]byte(`{"id":"container-1"}`))
			default:
				w.Write([]byte(`{"id":"container-1","status_code":"ERROR","error_message":"media unreachable"}`))
			}
		}))
		defer srv.Close()

		pub := NewPublisher(client)
		_, err := pub.PublishTarget(context.Background(), PublishTargetInput{
			Target:  TargetInput{Kind: "instagram", TargetID: "ig-1", AccessToken: "token"},
			Message: "caption",
			Media:   []MediaRef{{URL: "https://cdn.example.com/p.jpg"}},
		})
		if err == nil || !strings.Contains(err.Error(), "media unreachable") {
			t.Errorf("Expected the container error to surface, got %v", err)
		}
	})
}

func TestPublishTargetUnknownKind(t *testing.T) {
	pub := NewPublisher(New())
	_, err := pub.PublishTarget(context.Background(), PublishTargetInput{
		Target: TargetInput{Kind: "story", TargetID: "x"},
	})
	if err == nil {
		t.Fatal("Expected an error for an unsupported kind")
	}
}
