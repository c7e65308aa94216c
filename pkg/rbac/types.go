package rbac

import "strings"

// Decision is the result of checking a Requirement
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionMissingRole
	DecisionMissingPermission
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionMissingRole:
		return "missing_role"
	case DecisionMissingPermission:
		return "missing_permission"
	default:
		return "unknown"
	}
}

// Allowed reports whether the decision grants access
func (d Decision) Allowed() bool {
	return d == DecisionAllow
}

// Requirement is the authorization annotation attached to a route.
// An empty field means that check is skipped.
type Requirement struct {
	Role       string `json:"role,omitempty" yaml:"role,omitempty"`
	Permission string `json:"permission,omitempty" yaml:"permission,omitempty"`
}

// IsZero reports whether the requirement has neither a role nor a permission
func (r Requirement) IsZero() bool {
	return r.Role == "" && r.Permission == ""
}

// String returns a compact representation, e.g. "role=Admin,permission=add_user"
func (r Requirement) String() string {
	var parts []string
	if r.Role != "" {
		parts = append(parts, "role="+r.Role)
	}
	if r.Permission != "" {
		parts = append(parts, "permission="+r.Permission)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}
