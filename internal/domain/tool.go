package domain

import "time"

// ToolListing represents a physical tool registered for lending
type ToolListing struct {
	ToolID       string    `json:"toolId"`  // UUID, immutable
	OwnerID      string    `json:"ownerId"` // user ID, immutable after creation
	ToolName     string    `json:"toolName"`
	Description  string    `json:"description"`
	Condition    string    `json:"condition"`
	Availability bool      `json:"availability"` // false while exactly one pending transaction exists
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
