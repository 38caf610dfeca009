package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/yourorg/toolshare/internal/domain"
)

func TestRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		check func(string) error
		max   int
	}{
		{"username", Username, MaxUsernameLen},
		{"contactInfo", ContactInfo, MaxContactInfoLen},
		{"toolName", ToolName, MaxToolNameLen},
		{"description", Description, MaxDescriptionLen},
		{"condition", Condition, MaxConditionLen},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.check(""); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input for empty value, got %v", err)
			}
			if err := tc.check(strings.Repeat("x", tc.max)); err != nil {
				t.Fatalf("expected value at limit to pass, got %v", err)
			}
			if err := tc.check(strings.Repeat("x", tc.max+1)); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input over limit, got %v", err)
			}
		})
	}
}

func TestToolFields(t *testing.T) {
	if err := ToolFields("drill", "a drill", "good"); err != nil {
		t.Fatalf("expected valid tool fields to pass, got %v", err)
	}
	if err := ToolFields("", "a drill", "good"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty name, got %v", err)
	}
	if err := ToolFields("drill", "", "good"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty description, got %v", err)
	}
	if err := ToolFields("drill", "a drill", ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty condition, got %v", err)
	}
}
