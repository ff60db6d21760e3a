package entity

// Suggestion is a smart-mode cross-posting candidate derived from a primary
// page's known relations. Selected marks suggestions the backend pre-selects.
type Suggestion struct {
	Target   PlatformTarget `json:"target"`
	Selected bool           `json:"selected"`
	Reason   string         `json:"reason,omitempty"`
}
