package entity

import (
	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// OutcomeStatus is the per-target verdict of a submission
type OutcomeStatus string

const (
	// Pending: the target is planned for a scheduled post, not yet dispatched
	OutcomePending OutcomeStatus = "pending"
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "failure"
)

// TargetOutcome is the result of publishing to one target
type TargetOutcome struct {
	Target       TargetRef     `json:"target"`
	Status       OutcomeStatus `json:"status"`
	PostID       string        `json:"post_id,omitempty"`
	CommentID    string        `json:"comment_id,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// Succeeded reports whether the outcome is a success
func (o TargetOutcome) Succeeded() bool {
	return o.Status == OutcomeSuccess
}

// Summary carries the aggregate counts of one submission
type Summary struct {
	TotalPublished int `json:"total_published"`
	TotalFailed    int `json:"total_failed"`
}

// PublicationResult is the immutable report of one submission: the main
// target's outcome kept distinct from the additional ones, grouped by
// category. Partial failure is a valid state of this value, not a transport
// error.
type PublicationResult struct {
	MainTarget        *TargetOutcome  `json:"main_target,omitempty"`
	AdditionalPages   []TargetOutcome `json:"additional_pages"`
	Groups            []TargetOutcome `json:"groups"`
	InstagramAccounts []TargetOutcome `json:"instagram_accounts"`
	Summary           Summary         `json:"summary"`
}

// SetMain records the main target's outcome
func (r *PublicationResult) SetMain(o TargetOutcome) {
	r.MainTarget = &o
	r.count(o)
}

// AddAdditional records a non-main outcome under its kind's category
func (r *PublicationResult) AddAdditional(o TargetOutcome) {
	switch o.Target.Kind {
	case catalog.TargetKindGroup:
		r.Groups = append(r.Groups, o)
	case catalog.TargetKindInstagram:
		r.InstagramAccounts = append(r.InstagramAccounts, o)
	default:
		r.AdditionalPages = append(r.AdditionalPages, o)
	}
	r.count(o)
}

func (r *PublicationResult) count(o TargetOutcome) {
	switch o.Status {
	case OutcomeSuccess:
		r.Summary.TotalPublished++
	case OutcomeFailure:
		r.Summary.TotalFailed++
	}
}

// IsSingleTarget reports whether the submission addressed the main target
// only; a valid, clearly distinct state, not an error
func (r *PublicationResult) IsSingleTarget() bool {
	return len(r.AdditionalPages) == 0 && len(r.Groups) == 0 && len(r.InstagramAccounts) == 0
}

// AllOutcomes returns every outcome, the main target first
func (r *PublicationResult) AllOutcomes() []TargetOutcome {
	var out []TargetOutcome
	if r.MainTarget != nil {
		out = append(out, *r.MainTarget)
	}
	out = append(out, r.AdditionalPages...)
	out = append(out, r.Groups...)
	out = append(out, r.InstagramAccounts...)
	return out
}

// DeriveStatus maps a result to the stored post status
func (r *PublicationResult) DeriveStatus() PostStatus {
	switch {
	case r.Summary.TotalPublished == 0:
		return PostStatusFailed
	case r.Summary.TotalFailed > 0:
		return PostStatusPartial
	default:
		return PostStatusPublished
	}
}
