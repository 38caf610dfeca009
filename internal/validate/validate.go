// Package validate holds the pure field checks shared by every create and
// update path of the lending core.
package validate

import (
	"fmt"

	"github.com/yourorg/toolshare/internal/domain"
)

// Field length limits
const (
	MaxUsernameLen    = 50
	MaxContactInfoLen = 200
	MaxToolNameLen    = 100
	MaxDescriptionLen = 500
	MaxConditionLen   = 100
)

func required(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s is required: %w", field, domain.ErrInvalidInput)
	}
	if len(value) > max {
		return fmt.Errorf("%s exceeds %d characters: %w", field, max, domain.ErrInvalidInput)
	}
	return nil
}

// Username checks a username field
func Username(username string) error {
	return required("username", username, MaxUsernameLen)
}

// ContactInfo checks a contact info field
func ContactInfo(contactInfo string) error {
	return required("contactInfo", contactInfo, MaxContactInfoLen)
}

// ToolName checks a tool name field
func ToolName(name string) error {
	return required("toolName", name, MaxToolNameLen)
}

// Description checks a tool description field
func Description(description string) error {
	return required("description", description, MaxDescriptionLen)
}

// Condition checks a tool condition field
func Condition(condition string) error {
	return required("condition", condition, MaxConditionLen)
}

// ToolFields checks all mutable tool fields for creation
func ToolFields(name, description, condition string) error {
	if err := ToolName(name); err != nil {
		return err
	}
	if err := Description(description); err != nil {
		return err
	}
	return Condition(condition)
}
