package company

import "testing"

func TestSeededSelector_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewSeededSelector(7)
	b := NewSeededSelector(7)

	for i := 0; i < 20; i++ {
		x, y := a.Pick(3), b.Pick(3)
		if x != y {
			t.Fatalf("expected identical sequences, diverged at %d: %d != %d", i, x, y)
		}
		if x < 0 || x >= 3 {
			t.Fatalf("pick out of range: %d", x)
		}
	}
}

func TestRandomSelector_InRange(t *testing.T) {
	t.Parallel()

	s := NewRandomSelector()
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		idx := s.Pick(len(DefaultSites))
		if idx < 0 || idx >= len(DefaultSites) {
			t.Fatalf("pick out of range: %d", idx)
		}
		seen[idx] = true
	}

	if len(seen) < 2 {
		t.Fatalf("expected picks to vary, got %v", seen)
	}
}

func TestParseSitePolicy(t *testing.T) {
	t.Parallel()

	cases := map[string]SitePolicy{
		"":         SitePolicyReassign,
		"reassign": SitePolicyReassign,
		"sticky":   SitePolicySticky,
	}
	for raw, want := range cases {
		got, err := ParseSitePolicy(raw)
		if err != nil {
			t.Fatalf("ParseSitePolicy(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseSitePolicy(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseSitePolicy("round-robin"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestService_SitesReturnsCopy(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeRepo(), nil, nil, Sharding{})
	sites := svc.Sites()
	sites[0] = "Mutated"

	if svc.Sites()[0] != "Bravo" {
		t.Fatalf("expected internal site list to be unaffected, got %v", svc.Sites())
	}
}
