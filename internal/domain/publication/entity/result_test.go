package entity

import (
	"testing"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

func pageRef(id, name string) TargetRef {
	return TargetRef{ID: id, DisplayName: name, Kind: catalog.TargetKindPage, Origin: catalog.TargetOriginPersonal}
}

func TestPublicationResultGrouping(t *testing.T) {
	var r PublicationResult

	r.SetMain(TargetOutcome{
		Target: pageRef("main-page", "Main Page"),
		Status: OutcomeSuccess,
		PostID: "fb-post-1",
	})
	r.AddAdditional(TargetOutcome{
		Target: TargetRef{ID: "group-1", Kind: catalog.TargetKindGroup},
		Status: OutcomeSuccess,
		PostID: "fb-post-2",
	})
	r.AddAdditional(TargetOutcome{
		Target:       TargetRef{ID: "ig-1", Kind: catalog.TargetKindInstagram},
		Status:       OutcomeFailure,
		ErrorMessage: "media not accessible",
	})

	if r.MainTarget == nil || r.MainTarget.Target.ID != "main-page" {
		t.Fatalf("Expected main target 'main-page', got %+v", r.MainTarget)
	}
	if len(r.Groups) != 1 || r.Groups[0].Target.ID != "group-1" {
		t.Errorf("Expected group outcome under Groups, got %+v", r.Groups)
	}
	if len(r.InstagramAccounts) != 1 {
		t.Fatalf("Expected instagram outcome under InstagramAccounts, got %+v", r.InstagramAccounts)
	}
	if r.InstagramAccounts[0].ErrorMessage != "media not accessible" {
		t.Errorf("Expected error message on the failed outcome, got %q", r.InstagramAccounts[0].ErrorMessage)
	}
	if len(r.AdditionalPages) != 0 {
		t.Errorf("Expected no additional pages, got %+v", r.AdditionalPages)
	}

	if r.Summary.TotalPublished != 2 {
		t.Errorf("Expected 2 published, got %d", r.Summary.TotalPublished)
	}
	if r.Summary.TotalFailed != 1 {
		t.Errorf("Expected 1 failed, got %d", r.Summary.TotalFailed)
	}

	all := r.AllOutcomes()
	if len(all) != 3 || all[0].Target.ID != "main-page" {
		t.Errorf("Expected 3 outcomes with main first, got %+v", all)
	}
}

func TestPublicationResultPendingNotCounted(t *testing.T) {
	var r PublicationResult
	r.SetMain(TargetOutcome{Target: pageRef("p1", "P1"), Status: OutcomePending})
	r.AddAdditional(TargetOutcome{Target: TargetRef{ID: "g1", Kind: catalog.TargetKindGroup}, Status: OutcomePending})

	if r.Summary.TotalPublished != 0 || r.Summary.TotalFailed != 0 {
		t.Errorf("Expected empty summary for a pending plan, got %+v", r.Summary)
	}
}

func TestIsSingleTarget(t *testing.T) {
	var r PublicationResult
	r.SetMain(TargetOutcome{Target: pageRef("p1", "P1"), Status: OutcomeSuccess})

	if !r.IsSingleTarget() {
		t.Error("Expected single-target result")
	}

	r.AddAdditional(TargetOutcome{Target: TargetRef{ID: "g1", Kind: catalog.TargetKindGroup}, Status: OutcomeSuccess})
	if r.IsSingleTarget() {
		t.Error("Expected multi-target result after adding an outcome")
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name      string
		published int
		failed    int
		want      PostStatus
	}{
		{"all succeeded", 3, 0, PostStatusPublished},
		{"partial failure", 2, 1, PostStatusPartial},
		{"all failed", 0, 3, PostStatusFailed},
		{"nothing dispatched", 0, 0, PostStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PublicationResult{Summary: Summary{TotalPublished: tt.published, TotalFailed: tt.failed}}
			if got := r.DeriveStatus(); got != tt.want {
				t.Errorf("DeriveStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsDeletable(t *testing.T) {
	tests := []struct {
		status PostStatus
		want   bool
	}{
		{PostStatusPending, true},
		{PostStatusScheduled, true},
		{PostStatusFailed, true},
		{PostStatusPublished, false},
		{PostStatusPartial, false},
	}

	for _, tt := range tests {
		p := &Post{Status: tt.status}
		if got := p.IsDeletable(); got != tt.want {
			t.Errorf("IsDeletable() for status %s = %v, want %v", tt.status, got, tt.want)
		}
	}
}
