package overlay

import "testing"

func TestIdentityOf(t *testing.T) {
	// WHAT: The identity is the v parameter, or the whole location without one.
	// WHY: Timestamps and playlists must not count as navigation; shorts have no v.
	cases := []struct {
		loc  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123", "abc123"},
		{"https://www.youtube.com/watch?list=PL1&v=abc123&t=10s", "abc123"},
		{"https://www.youtube.com/shorts/xyz", "https://www.youtube.com/shorts/xyz"},
		{"https://www.youtube.com/watch?v=", "https://www.youtube.com/watch?v="},
		{"https://www.youtube.com/", "https://www.youtube.com/"},
		{"::not a url", "::not a url"},
	}
	for _, c := range cases {
		if got := IdentityOf(c.loc, "v"); got != c.want {
			t.Errorf("IdentityOf(%q) = %q, want %q", c.loc, got, c.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	// WHAT: Every location with an id maps to one watch URL on the canonical base.
	// WHY: The consumer matches a fixed prefix and ignores extra parameters.
	const base = "https://www.youtube.com/watch"
	cases := []struct {
		loc  string
		want string
	}{
		{"https://www.youtube.com/watch?v=abc123&t=42s", "https://www.youtube.com/watch?v=abc123"},
		{"https://m.youtube.com/watch?feature=share&v=abc123", "https://www.youtube.com/watch?v=abc123"},
		{"https://www.youtube.com/watch?v=a%26b", "https://www.youtube.com/watch?v=a%26b"},
		{"https://www.youtube.com/shorts/xyz?feature=share", "https://www.youtube.com/shorts/xyz?feature=share"},
	}
	for _, c := range cases {
		if got := CanonicalURL(c.loc, "v", base); got != c.want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", c.loc, got, c.want)
		}
	}
}

func TestFormatPayload(t *testing.T) {
	got := FormatPayload("https://example.com/watch?v=abc123", DefaultTriggerToken)
	if got != "https://example.com/watch?v=abc123 start_download" {
		t.Errorf("FormatPayload = %q", got)
	}
}

func TestState_Advance(t *testing.T) {
	// WHAT: Advance reports changes and resets dismissal on a new identity.
	// WHY: Navigation scope forgets a dismissal as soon as the video changes.
	s := NewState(ScopeNavigation)
	if !s.Advance("") {
		t.Fatal("first observation must count as a change, even for an empty identity")
	}
	if s.Advance("") {
		t.Fatal("same identity reported as a change")
	}

	s.Advance("V1")
	s.Dismiss()
	if !s.Current().Dismissed {
		t.Fatal("Dismiss did not stick")
	}
	if s.Advance("V1") {
		t.Fatal("same identity reported as a change")
	}
	if !s.Current().Dismissed {
		t.Fatal("dismissal lost without identity change")
	}
	if !s.Advance("V2") || s.Current().Dismissed {
		t.Fatalf("V2 context = %+v", s.Current())
	}
	s.Advance("V1")
	if s.Current().Dismissed {
		t.Fatal("navigation scope remembered V1")
	}
}

func TestState_IdentityScope(t *testing.T) {
	// WHAT: Identity scope remembers every dismissed identity.
	s := NewState(ScopeIdentity)
	s.Advance("V1")
	s.Dismiss()
	s.Advance("V2")
	if s.Current().Dismissed {
		t.Fatal("dismissal leaked from V1 to V2")
	}
	s.Advance("V1")
	if !s.Current().Dismissed {
		t.Fatal("identity scope forgot V1")
	}
}

func TestParseDismissalScope(t *testing.T) {
	for in, want := range map[string]DismissalScope{"": ScopeNavigation, "navigation": ScopeNavigation, "identity": ScopeIdentity} {
		got, err := ParseDismissalScope(in)
		if err != nil || got != want {
			t.Errorf("ParseDismissalScope(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDismissalScope("forever"); err == nil {
		t.Error("expected error for unknown scope")
	}
}
