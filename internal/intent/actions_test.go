package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assist/internal/domain"
)

func TestResolveAction_Navigation(t *testing.T) {
	r := NewDefault()

	m := r.RouteAction(TokenShowMap, domain.RoleVisitor)
	require.Equal(t, "action:show_map", m.Intent)
	require.Equal(t, domain.KindMapRef, m.Payload.Kind)
	require.Equal(t, "", m.Payload.Data.Map.SearchQuery)

	search := r.ResolveAction(" show_search ", domain.RoleVisitor)
	require.Equal(t, domain.KindSearchRef, search.Kind)
	require.Contains(t, search.DisplayText, "Use the search below")
}

func TestResolveAction_ReentersRouter(t *testing.T) {
	r := NewDefault()

	for _, token := range []string{TokenShowContact, TokenShowDepartments, "Show CSE Department"} {
		want := r.Classify(token, domain.RoleStudent)
		got := r.ResolveAction(token, domain.RoleStudent)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("token %q (-classify +action):\n%s", token, diff)
		}
	}

	require.Equal(t, IntentContact, r.RouteAction(TokenShowContact, domain.RoleOther).Intent)
	require.Equal(t, IntentDepartments, r.RouteAction(TokenShowDepartments, domain.RoleOther).Intent)
}

func TestResolveAction_UnknownTokenFallsBack(t *testing.T) {
	r := NewDefault()

	for _, token := range []string{TokenContinue, "", "unknown_token"} {
		m := r.RouteAction(token, domain.RoleAdmin)
		require.True(t, m.Fallback, "token %q", token)
		require.Equal(t, fallbackTokens, m.Payload.Tokens())
	}
}

func TestMenus_EmitResolvableTokens(t *testing.T) {
	r := NewDefault()

	greeting := r.Classify("hello", domain.RoleVisitor)
	require.Equal(t, []string{TokenShowMap, TokenShowSearch, TokenShowDepartments, TokenShowContact}, greeting.Tokens())

	for _, token := range greeting.Tokens() {
		require.False(t, r.RouteAction(token, domain.RoleVisitor).Fallback, "token %q", token)
	}
}
