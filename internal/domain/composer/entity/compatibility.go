package entity

import (
	catalog "github.com/vadim/meta-bridge/internal/domain/catalog/entity"
)

// IsCompatible reports whether a prospective post satisfies a target's
// structural requirements. A media-requiring target (Instagram) needs at
// least one media file or one detected link, since a link preview carrying
// an image counts as visual content. All other targets are always
// compatible. Pure: callers decide whether to block, warn or exclude.
func IsCompatible(target catalog.PlatformTarget, draft *Draft) bool {
	if !target.RequiresMedia {
		return true
	}
	return len(draft.MediaFiles) > 0 || len(draft.DetectedLinks) > 0
}

// TargetCompatibility pairs a selected target with its current
// compatibility verdict
type TargetCompatibility struct {
	Target     catalog.PlatformTarget `json:"target"`
	Compatible bool                   `json:"compatible"`
}

// Compatibility re-evaluates every selected target against the draft.
// Incompatible targets are surfaced, never removed.
func (d *Draft) Compatibility() []TargetCompatibility {
	targets := d.SelectedTargets()
	out := make([]TargetCompatibility, len(targets))
	for i, t := range targets {
		out[i] = TargetCompatibility{Target: t, Compatible: IsCompatible(t, d)}
	}
	return out
}

// IncompatibleTargets returns the selected targets that the draft cannot
// currently satisfy
func (d *Draft) IncompatibleTargets() []catalog.PlatformTarget {
	var out []catalog.PlatformTarget
	for _, tc := range d.Compatibility() {
		if !tc.Compatible {
			out = append(out, tc.Target)
		}
	}
	return out
}
