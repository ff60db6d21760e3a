package entity

// TargetKind represents the kind of a publishing destination
type TargetKind string

const (
	TargetKindPage      TargetKind = "page"
	TargetKindGroup     TargetKind = "group"
	TargetKindInstagram TargetKind = "instagram"
)

// TargetOrigin represents which side of the account the target came from
type TargetOrigin string

const (
	TargetOriginPersonal TargetOrigin = "personal"
	TargetOriginBusiness TargetOrigin = "business"
)

// PlatformTarget is a single addressable publishing destination. Values are
// immutable: selecting a target from an ambiguous personal/business list
// constructs a new value with the origin stamped, catalog entries are never
// mutated in place.
type PlatformTarget struct {
	ID            string       `json:"id"`
	DisplayName   string       `json:"display_name"`
	Kind          TargetKind   `json:"kind"`
	Origin        TargetOrigin `json:"origin"`
	RequiresMedia bool         `json:"requires_media"`
	MemberCount   int          `json:"member_count,omitempty"`
	FollowerCount int          `json:"follower_count,omitempty"`
	Category      string       `json:"category,omitempty"`
	Privacy       string       `json:"privacy,omitempty"`
	AccessToken   string       `json:"-"`
}

// NewTarget builds a PlatformTarget with the requires_media flag derived from
// the kind: Instagram mandates visual content, pages and groups do not.
func NewTarget(id, displayName string, kind TargetKind, origin TargetOrigin) PlatformTarget {
	return PlatformTarget{
		ID:            id,
		DisplayName:   displayName,
		Kind:          kind,
		Origin:        origin,
		RequiresMedia: kind == TargetKindInstagram,
	}
}

// WithOrigin returns a copy of the target stamped with the given origin
func (t PlatformTarget) WithOrigin(origin TargetOrigin) PlatformTarget {
	t.Origin = origin
	return t
}

// Key identifies a target within a catalog snapshot: (id, origin) is unique
// per session
func (t PlatformTarget) Key() TargetKey {
	return TargetKey{ID: t.ID, Origin: t.Origin}
}

// IsFacebook reports whether the target is a Facebook-side destination
// (page or group); the comment link applies to these only
func (t PlatformTarget) IsFacebook() bool {
	return t.Kind == TargetKindPage || t.Kind == TargetKindGroup
}

// TargetKey is the identity of a target within one catalog snapshot
type TargetKey struct {
	ID     string
	Origin TargetOrigin
}

// IsValidTargetKind checks if a target kind is valid
func IsValidTargetKind(k TargetKind) bool {
	switch k {
	case TargetKindPage, TargetKindGroup, TargetKindInstagram:
		return true
	}
	return false
}

// ParseTargetKind parses a string into a TargetKind
func ParseTargetKind(s string) (TargetKind, error) {
	switch s {
	case "page":
		return TargetKindPage, nil
	case "group":
		return TargetKindGroup, nil
	case "instagram":
		return TargetKindInstagram, nil
	default:
		return "", ErrInvalidTargetKind
	}
}

// ParseTargetOrigin parses a string into a TargetOrigin
func ParseTargetOrigin(s string) (TargetOrigin, error) {
	switch s {
	case "personal":
		return TargetOriginPersonal, nil
	case "business":
		return TargetOriginBusiness, nil
	default:
		return "", ErrInvalidTargetOrigin
	}
}
