package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
	links "github.com/vadim/meta-bridge/internal/domain/links/entity"
)

// Composition limits
const (
	MaxTextLength    = 2000
	MaxMediaFiles    = 4
	MaxMediaFileSize = 100 << 20
	MinScheduleLead  = 5 * time.Minute
)

// DraftStatus is the lifecycle state of a draft's submission
type DraftStatus string

const (
	DraftStatusDrafting   DraftStatus = "drafting"
	DraftStatusSubmitting DraftStatus = "submitting"
)

// MediaFile is one media attachment of a draft
type MediaFile struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	IsVideo     bool      `json:"is_video"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Draft is one composition session: the post being built, its derived link
// previews and the chosen publication targets
type Draft struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Status      DraftStatus `json:"status"`
	Text        string      `json:"text"`
	MediaFiles  []MediaFile `json:"media_files"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty"`
	CommentLink string      `json:"comment_link,omitempty"`

	// Derived, never authored
	DetectedLinks []links.LinkPreview `json:"detected_links"`

	// Per-draft removed set: a dismissed URL never resurfaces for the
	// lifetime of this draft
	DismissedURLs map[string]bool `json:"-"`

	// Target selection
	Primary      *catalog.PlatformTarget  `json:"primary,omitempty"`
	CrossTargets []catalog.PlatformTarget `json:"cross_targets"`
	SmartMode    bool                     `json:"smart_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDraft creates an empty draft for a user
func NewDraft(id, userID string, now time.Time) *Draft {
	return &Draft{
		ID:            id,
		UserID:        userID,
		Status:        DraftStatusDrafting,
		DismissedURLs: make(map[string]bool),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// HasContent reports whether the draft satisfies the minimum-content rule:
// non-empty text or at least one media file
func (d *Draft) HasContent() bool {
	return strings.TrimSpace(d.Text) != "" || len(d.MediaFiles) > 0
}

// SelectedTargets returns every selected target, primary first
func (d *Draft) SelectedTargets() []catalog.PlatformTarget {
	var out []catalog.PlatformTarget
	if d.Primary != nil {
		out = append(out, *d.Primary)
	}
	out = append(out, d.CrossTargets...)
	return out
}

// ToggleTarget adds the target to the cross-post set if absent and removes
// it if present; toggling twice is a net no-op. Identity is the target id.
// The primary target is pinned while smart mode is on.
func (d *Draft) ToggleTarget(t catalog.PlatformTarget) error {
	if d.SmartMode && d.Primary != nil && d.Primary.ID == t.ID {
		return ErrPrimaryNotRemovable
	}

	for i, sel := range d.CrossTargets {
		if sel.ID == t.ID {
			d.CrossTargets = append(d.CrossTargets[:i], d.CrossTargets[i+1:]...)
			return nil
		}
	}
	d.CrossTargets = append(d.CrossTargets, t)
	return nil
}

// ClearCrossTargets removes every non-primary selection
func (d *Draft) ClearCrossTargets() {
	d.CrossTargets = nil
}

// PruneBusinessTargets removes every business-origin selection whose id is
// absent from the given manager's lists, leaving personal-origin selections
// untouched. A nil manager removes all business-origin selections.
func (d *Draft) PruneBusinessTargets(mgr *catalog.BusinessManager) []catalog.PlatformTarget {
	var removed []catalog.PlatformTarget
	kept := d.CrossTargets[:0]
	for _, t := range d.CrossTargets {
		if t.Origin == catalog.TargetOriginBusiness && (mgr == nil || !mgr.Contains(t.ID)) {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	d.CrossTargets = kept

	if d.Primary != nil && d.Primary.Origin == catalog.TargetOriginBusiness && (mgr == nil || !mgr.Contains(d.Primary.ID)) {
		removed = append(removed, *d.Primary)
		d.Primary = nil
	}

	return removed
}

// DismissLink records a URL as dismissed for this draft and drops its
// preview
func (d *Draft) DismissLink(url string) {
	d.DismissedURLs[url] = true
	kept := d.DetectedLinks[:0]
	for _, l := range d.DetectedLinks {
		if l.URL != url {
			kept = append(kept, l)
		}
	}
	d.DetectedLinks = kept
}

// Reset returns the draft to a pristine drafting state after a successful
// submission: text, media, schedule, comment link, link state and target
// selection are all cleared
func (d *Draft) Reset(now time.Time) {
	d.Status = DraftStatusDrafting
	d.Text = ""
	d.MediaFiles = nil
	d.ScheduledAt = nil
	d.CommentLink = ""
	d.DetectedLinks = nil
	d.DismissedURLs = make(map[string]bool)
	d.Primary = nil
	d.CrossTargets = nil
	d.SmartMode = false
	d.UpdatedAt = now
}

// Validate checks the pre-dispatch invariants of a submission
func (d *Draft) Validate() error {
	if !d.HasContent() {
		return ErrNoContent
	}
	if utf8.RuneCountInString(d.Text) > MaxTextLength {
		return ErrTextTooLong
	}
	if len(d.MediaFiles) > MaxMediaFiles {
		return ErrTooManyMediaFiles
	}
	if d.Primary == nil && len(d.CrossTargets) == 0 {
		return ErrNoTarget
	}
	if d.ScheduledAt != nil && time.Until(*d.ScheduledAt) < MinScheduleLead {
		return ErrScheduleTooSoon
	}
	return nil
}
