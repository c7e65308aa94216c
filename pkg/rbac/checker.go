package rbac

import "github.com/platinummonkey/warden/pkg/auth"

// HasRole reports whether user holds a role named exactly roleName
func HasRole(user *auth.User, roleName string) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		if role.Name == roleName {
			return true
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles grants codename
func HasPermission(user *auth.User, codename string) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		if roleHasPermission(role, codename) {
			return true
		}
	}
	return false
}

// MatchingRoles returns the names of the user's roles that grant codename
func MatchingRoles(user *auth.User, codename string) []string {
	if user == nil {
		return nil
	}
	var matched []string
	for _, role := range user.Roles {
		if roleHasPermission(role, codename) {
			matched = append(matched, role.Name)
		}
	}
	return matched
}

// EffectivePermissions returns every permission granted through the user's roles,
// de-duplicated by codename in first-seen order.
func EffectivePermissions(user *auth.User) []auth.Permission {
	if user == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var perms []auth.Permission
	for _, role := range user.Roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p.Codename]; ok {
				continue
			}
			seen[p.Codename] = struct{}{}
			perms = append(perms, p)
		}
	}
	return perms
}

// Check evaluates the requirement against user, role first
func (r Requirement) Check(user *auth.User) Decision {
	if r.Role != "" && !HasRole(user, r.Role) {
		return DecisionMissingRole
	}
	if r.Permission != "" && !HasPermission(user, r.Permission) {
		return DecisionMissingPermission
	}
	return DecisionAllow
}

// roleHasPermission checks if a role has a specific permission
func roleHasPermission(role auth.Role, codename string) bool {
	for _, p := range role.Permissions {
		if p.Codename == codename {
			return true
		}
	}
	return false
}
