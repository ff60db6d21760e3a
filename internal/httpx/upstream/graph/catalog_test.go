package graph

import (
	"context"
	"net/http"
	"testing"

	"github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// catalogHandler fakes the Graph endpoints the loader walks
func catalogHandler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v21.0/me/accounts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"pp-1","name":"Personal Page","access_token":"pp-token"}]}`))
	})
	mux.HandleFunc("/v21.0/me/groups", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"pg-1","name":"Personal Group","privacy":"CLOSED","member_count":42}]}`))
	})
	mux.HandleFunc("/v21.0/me/businesses", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"bm-1","name":"Acme Media","verification_status":"verified"}]}`))
	})
	mux.HandleFunc("/v21.0/bm-1/owned_pages", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"bp-1","name":"Acme Page","access_token":"bp-token"}]}`))
	})
	mux.HandleFunc("/v21.0/bp-1/groups", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"bg-1","name":"Acme Group"}]}`))
	})
	mux.HandleFunc("/v21.0/bp-1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"bp-1","instagram_business_account":{"id":"big-1","username":"acme","followers_count":900}}`))
	})
	return mux
}

func TestLoadCatalog(t *testing.T) {
	client, srv := newTestClient(catalogHandler(t))
	defer srv.Close()

	loader := NewCatalogLoader(client)
	cat, err := loader.LoadCatalog(context.Background(), "user-1", "user-token")
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}

	if cat.UserID != "user-1" {
		t.Errorf("Expected user id stamped, got %q", cat.UserID)
	}

	if len(cat.PersonalPages) != 1 || cat.PersonalPages[0].Origin != entity.TargetOriginPersonal {
		t.Errorf("Unexpected personal pages: %+v", cat.PersonalPages)
	}
	if cat.PersonalPages[0].AccessToken != "pp-token" {
		t.Errorf("Expected page token carried, got %q", cat.PersonalPages[0].AccessToken)
	}
	if len(cat.PersonalGroups) != 1 || cat.PersonalGroups[0].MemberCount != 42 {
		t.Errorf("Unexpected personal groups: %+v", cat.PersonalGroups)
	}

	if len(cat.BusinessManagers) != 1 {
		t.Fatalf("Expected 1 business manager, got %d", len(cat.BusinessManagers))
	}
	mgr := cat.BusinessManagers[0]
	if mgr.Name != "Acme Media" || mgr.VerificationStatus != "verified" {
		t.Errorf("Unexpected manager: %+v", mgr)
	}
	if len(mgr.Pages) != 1 || mgr.Pages[0].Origin != entity.TargetOriginBusiness {
		t.Errorf("Unexpected business pages: %+v", mgr.Pages)
	}
	if len(mgr.Groups) != 1 || mgr.Groups[0].ID != "bg-1" {
		t.Errorf("Unexpected business groups: %+v", mgr.Groups)
	}
	if len(mgr.InstagramAccounts) != 1 {
		t.Fatalf("Expected the linked instagram account, got %+v", mgr.InstagramAccounts)
	}
	ig := mgr.InstagramAccounts[0]
	if ig.Kind != entity.TargetKindInstagram || !ig.RequiresMedia {
		t.Errorf("Expected media-requiring instagram target, got %+v", ig)
	}
	if ig.AccessToken != "bp-token" {
		t.Errorf("Expected the page token on the instagram target, got %q", ig.AccessToken)
	}
}

func TestRelatedPlatforms(t *testing.T) {
	client, srv := newTestClient(catalogHandler(t))
	defer srv.Close()

	loader := NewCatalogLoader(client)
	suggestions, err := loader.RelatedPlatforms(context.Background(), "bp-1", "bp-token")
	if err != nil {
		t.Fatalf("RelatedPlatforms failed: %v", err)
	}

	if len(suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Target.Kind != entity.TargetKindInstagram || !suggestions[0].Selected {
		t.Errorf("Expected pre-selected instagram suggestion first, got %+v", suggestions[0])
	}
	if suggestions[1].Target.Kind != entity.TargetKindGroup || suggestions[1].Selected {
		t.Errorf("Expected unselected group suggestion, got %+v", suggestions[1])
	}
}
