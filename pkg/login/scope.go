package login

import "strings"

// ===== Scopes =====

// Scope identifies a single permission a login attempt may request.
// Scopes are partitioned into a general tier, granted to any application,
// and a privileged tier that requires platform approval and always flows
// through the authorization code grant.
type Scope int

const (
	// ScopeProfile grants access to the rider's basic profile.
	ScopeProfile Scope = iota
	// ScopeHistory grants access to full trip history.
	ScopeHistory
	// ScopeHistoryLite grants access to summarized trip history.
	ScopeHistoryLite
	// ScopePlaces grants access to the rider's saved places.
	ScopePlaces
	// ScopeRideWidgets grants access to embeddable ride widgets.
	ScopeRideWidgets

	// ScopeRequest allows requesting rides on the rider's behalf. Privileged.
	ScopeRequest
	// ScopeRequestReceipt allows reading receipts for requested rides. Privileged.
	ScopeRequestReceipt
	// ScopeAllTrips grants visibility into all ongoing trips. Privileged.
	ScopeAllTrips
)

// String returns the wire name of the scope as it appears in authorize URLs.
func (s Scope) String() string {
	switch s {
	case ScopeProfile:
		return "profile"
	case ScopeHistory:
		return "history"
	case ScopeHistoryLite:
		return "history_lite"
	case ScopePlaces:
		return "places"
	case ScopeRideWidgets:
		return "ride_widgets"
	case ScopeRequest:
		return "request"
	case ScopeRequestReceipt:
		return "request_receipt"
	case ScopeAllTrips:
		return "all_trips"
	default:
		return "unknown"
	}
}

// IsPrivileged reports whether the scope belongs to the privileged tier.
func (s Scope) IsPrivileged() bool {
	switch s {
	case ScopeRequest, ScopeRequestReceipt, ScopeAllTrips:
		return true
	default:
		return false
	}
}

// ContainsPrivilegedScope reports whether any scope in the requested set is
// privileged. The set is an ordered sequence and may contain duplicates.
func ContainsPrivilegedScope(scopes []Scope) bool {
	for _, s := range scopes {
		if s.IsPrivileged() {
			return true
		}
	}
	return false
}

// ScopeString renders scopes in their space-separated wire form, preserving
// order and duplicates.
func ScopeString(scopes []Scope) string {
	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, s.String())
	}
	return strings.Join(names, " ")
}

// ParseScopes parses a space-separated scope string back into scopes.
// Unrecognized names are skipped.
func ParseScopes(raw string) []Scope {
	var scopes []Scope
	for _, name := range strings.Fields(raw) {
		switch name {
		case "profile":
			scopes = append(scopes, ScopeProfile)
		case "history":
			scopes = append(scopes, ScopeHistory)
		case "history_lite":
			scopes = append(scopes, ScopeHistoryLite)
		case "places":
			scopes = append(scopes, ScopePlaces)
		case "ride_widgets":
			scopes = append(scopes, ScopeRideWidgets)
		case "request":
			scopes = append(scopes, ScopeRequest)
		case "request_receipt":
			scopes = append(scopes, ScopeRequestReceipt)
		case "all_trips":
			scopes = append(scopes, ScopeAllTrips)
		}
	}
	return scopes
}
