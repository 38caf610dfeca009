package domain

import "time"

// UserProfile represents a registered member who can lend and borrow tools
type UserProfile struct {
	UserID        string    `json:"userId"` // UUID, immutable
	Username      string    `json:"username"`
	ContactInfo   string    `json:"contactInfo"`
	ToolsOwned    []string  `json:"toolsOwned"`    // tool IDs listed by this user
	ToolsBorrowed []string  `json:"toolsBorrowed"` // tool IDs currently held
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OwnsTool reports whether the given tool ID is in ToolsOwned
func (u *UserProfile) OwnsTool(toolID string) bool {
	for _, id := range u.ToolsOwned {
		if id == toolID {
			return true
		}
	}
	return false
}
