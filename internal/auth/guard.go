// Copyright (c) 2025 Chainledger
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

// Decision is the outcome of an access check.
type Decision int

const (
	// Pending means the session is still loading; neither allow nor deny yet.
	Pending Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "pending"
	}
}

// CanAccess decides whether st may reach something that needs requiredRole.
// An empty requiredRole only requires a session.
func CanAccess(st State, requiredRole string) Decision {
	if st.Loading {
		return Pending
	}
	if !st.Authenticated() {
		return Deny
	}
	if requiredRole != "" && st.Claims.Role() != requiredRole {
		return Deny
	}
	return Allow
}
