package entity

// BusinessManager groups pages, groups and Instagram accounts under one
// business entity
type BusinessManager struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Pages              []PlatformTarget `json:"pages"`
	Groups             []PlatformTarget `json:"groups"`
	InstagramAccounts  []PlatformTarget `json:"instagram_accounts"`
	VerificationStatus string           `json:"verification_status,omitempty"`
}

// Contains reports whether the manager owns a target with the given id
func (m *BusinessManager) Contains(id string) bool {
	for _, t := range m.Pages {
		if t.ID == id {
			return true
		}
	}
	for _, t := range m.Groups {
		if t.ID == id {
			return true
		}
	}
	for _, t := range m.InstagramAccounts {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Catalog is one immutable snapshot of a user's publishing destinations.
// It is replaced wholesale on refresh, never patched.
type Catalog struct {
	UserID           string            `json:"user_id"`
	PersonalPages    []PlatformTarget  `json:"personal_pages"`
	PersonalGroups   []PlatformTarget  `json:"personal_groups"`
	BusinessManagers []BusinessManager `json:"business_managers"`
	Version          int64             `json:"version"`
}

// Manager returns the business manager with the given id, or nil
func (c *Catalog) Manager(id string) *BusinessManager {
	for i := range c.BusinessManagers {
		if c.BusinessManagers[i].ID == id {
			return &c.BusinessManagers[i]
		}
	}
	return nil
}

// Buckets is the catalog view exposed to clients: business buckets are
// narrowed to the selected manager and empty when none is selected
type Buckets struct {
	PersonalPages     []PlatformTarget `json:"personal_pages"`
	PersonalGroups    []PlatformTarget `json:"personal_groups"`
	BusinessPages     []PlatformTarget `json:"business_pages"`
	BusinessGroups    []PlatformTarget `json:"business_groups"`
	BusinessInstagram []PlatformTarget `json:"business_instagram"`
}
