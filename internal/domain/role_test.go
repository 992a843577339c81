package domain

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"student":   RoleStudent,
		" Visitor ": RoleVisitor,
		"ADMIN":     RoleAdmin,
		"other":     RoleOther,
		"":          RoleOther,
		"professor": RoleOther,
	}
	for in, want := range cases {
		if got := ParseRole(in); got != want {
			t.Errorf("ParseRole(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Role("Student").Valid() {
		t.Error("roles are case-sensitive once parsed")
	}
}

func TestVisitor_IdleFor(t *testing.T) {
	now := time.Now()
	v := &Visitor{LastSeenAt: now.Add(-time.Minute)}
	if got := v.IdleFor(now); got != time.Minute {
		t.Errorf("IdleFor = %v, want 1m", got)
	}

	v.LastSeenAt = now.Add(time.Hour)
	if got := v.IdleFor(now); got != 0 {
		t.Errorf("IdleFor in future = %v, want 0", got)
	}
}

func TestPayload_TokensAndItems(t *testing.T) {
	p := ResponsePayload{
		Kind: KindActionMenu,
		Data: ContentData{Actions: []Action{{Label: "Map", Token: "show_map"}, {Label: "Search", Token: "show_search"}}},
	}
	got := p.Tokens()
	if len(got) != 2 || got[0] != "show_map" || got[1] != "show_search" {
		t.Errorf("Tokens = %v", got)
	}
	if _, ok := p.Item("anything"); ok {
		t.Error("action menu has no list items")
	}
	if PlainPayload("hi").Kind != KindPlain {
		t.Error("PlainPayload kind mismatch")
	}
}
