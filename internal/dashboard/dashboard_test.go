package dashboard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assist/internal/domain"
	"github.com/ashureev/campus-assist/internal/intent"
)

func TestBuild_EveryRoleHasAPage(t *testing.T) {
	titles := map[domain.Role]string{
		domain.RoleStudent: "Student Portal",
		domain.RoleVisitor: "Visitor Center",
		domain.RoleAdmin:   "Admin Control Panel",
		domain.RoleOther:   "General Information",
	}
	for role, title := range titles {
		d, err := Build(role, Stats{})
		require.NoError(t, err)
		require.Equal(t, role, d.Role)
		require.Equal(t, title, d.Title)
		require.NotEmpty(t, d.QuickActions)
		require.NotEmpty(t, d.Sections)
	}
}

func TestBuild_UnknownRoleGetsGeneralPage(t *testing.T) {
	d, err := Build("guest", Stats{})
	require.NoError(t, err)
	require.Equal(t, domain.RoleOther, d.Role)
	require.Equal(t, "General Information", d.Title)
}

func TestBuild_EventsFollowAudience(t *testing.T) {
	d, err := Build(domain.RoleStudent, Stats{})
	require.NoError(t, err)

	names := make([]string, len(d.Events))
	for i, e := range d.Events {
		names[i] = e.Name
	}
	require.Equal(t, []string{"Tech Fair", "Career Guidance Workshop"}, names)
	require.Nil(t, d.Metrics)
}

func TestBuild_TileTokensResolve(t *testing.T) {
	r := intent.NewDefault()
	for _, role := range domain.Roles {
		d, err := Build(role, Stats{})
		require.NoError(t, err)
		for _, tile := range d.QuickActions {
			if tile.Token == "" {
				continue
			}
			require.False(t, r.RouteAction(tile.Token, role).Fallback, "role %s token %q", role, tile.Token)
		}
	}
}

func TestBuild_ReturnsCopies(t *testing.T) {
	d, err := Build(domain.RoleVisitor, Stats{})
	require.NoError(t, err)
	d.Sections[0].Items[0].Value = "changed"
	d.QuickActions[0].Label = "changed"

	again, err := Build(domain.RoleVisitor, Stats{})
	require.NoError(t, err)
	require.Equal(t, "Admissions & Administration", again.Sections[0].Items[0].Value)
	require.Equal(t, "Campus Map", again.QuickActions[0].Label)
}

func TestBuild_AdminMetrics(t *testing.T) {
	stats := Stats{
		ActiveSessions: 3,
		Intents: []domain.IntentStat{
			{Intent: "library", Outcome: domain.OutcomeResolved, Hits: 6},
			{Intent: "fallback", Outcome: domain.OutcomeFallback, Hits: 2},
			{Intent: "contact", Outcome: domain.OutcomeResolved, Hits: 1},
			{Intent: "fees", Outcome: domain.OutcomeResolved, Hits: 1},
		},
	}

	d, err := Build(domain.RoleAdmin, stats)
	require.NoError(t, err)
	require.Empty(t, d.Events)
	require.NotNil(t, d.Metrics)

	want := ChatMetrics{
		TotalInteractions: 10,
		Resolved:          8,
		Fallbacks:         2,
		ResolutionRate:    0.8,
		ActiveSessions:    3,
		TopIntents: []IntentCount{
			{Intent: "library", Hits: 6},
			{Intent: "contact", Hits: 1},
			{Intent: "fees", Hits: 1},
		},
	}
	if diff := cmp.Diff(want, *d.Metrics); diff != "" {
		t.Fatalf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestMetrics_EmptyAndTruncated(t *testing.T) {
	empty := Metrics(Stats{})
	require.Zero(t, empty.TotalInteractions)
	require.Zero(t, empty.ResolutionRate)
	require.NotNil(t, empty.TopIntents)

	var intents []domain.IntentStat
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		intents = append(intents, domain.IntentStat{Intent: name, Outcome: domain.OutcomeResolved, Hits: int64(10 - i)})
	}
	m := Metrics(Stats{Intents: intents})
	require.Len(t, m.TopIntents, TopIntentLimit)
	require.Equal(t, "a", m.TopIntents[0].Intent)
	require.Equal(t, 1.0, m.ResolutionRate)
}

func TestParsePages_RequiresEveryRole(t *testing.T) {
	_, err := parsePages([]byte("student: {title: x}"))
	require.ErrorContains(t, err, "missing page")
}
