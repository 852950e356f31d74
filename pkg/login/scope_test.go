package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeTierPartition(t *testing.T) {
	general := []Scope{ScopeProfile, ScopeHistory, ScopeHistoryLite, ScopePlaces, ScopeRideWidgets}
	privileged := []Scope{ScopeRequest, ScopeRequestReceipt, ScopeAllTrips}

	for _, s := range general {
		assert.False(t, s.IsPrivileged(), "%s should be general", s)
	}
	for _, s := range privileged {
		assert.True(t, s.IsPrivileged(), "%s should be privileged", s)
	}
}

func TestContainsPrivilegedScope(t *testing.T) {
	assert.False(t, ContainsPrivilegedScope(nil))
	assert.False(t, ContainsPrivilegedScope([]Scope{ScopeProfile, ScopePlaces}))
	assert.True(t, ContainsPrivilegedScope([]Scope{ScopeProfile, ScopeRequest}))
	assert.True(t, ContainsPrivilegedScope([]Scope{ScopeAllTrips}))
}

func TestScopeStringPreservesOrderAndDuplicates(t *testing.T) {
	scopes := []Scope{ScopeHistory, ScopeProfile, ScopeHistory}
	assert.Equal(t, "history profile history", ScopeString(scopes))
}

func TestParseScopes(t *testing.T) {
	scopes := ParseScopes("profile request_receipt all_trips")
	assert.Equal(t, []Scope{ScopeProfile, ScopeRequestReceipt, ScopeAllTrips}, scopes)
}

func TestParseScopesSkipsUnknownNames(t *testing.T) {
	scopes := ParseScopes("profile teleport places")
	assert.Equal(t, []Scope{ScopeProfile, ScopePlaces}, scopes)
}

func TestParseScopesEmpty(t *testing.T) {
	assert.Empty(t, ParseScopes(""))
	assert.Empty(t, ParseScopes("   "))
}
