package twoq

import "testing"

// A1's tail is always evicted before Am's: inserting 1,2,3 (all land
// in A1), then accessing 2 promotes it to Am, leaves 1 as the next
// victim even though Am now holds a proven key.
func TestTwoQ_PrefersA1TailOverAmEvenAfterPromotion(t *testing.T) {
	t.Parallel()

	p := New[int]().New()
	p.OnInsert(1)
	p.OnInsert(2)
	p.OnInsert(3)
	if !p.OnAccess(2) {
		t.Fatal("OnAccess(2) must report present")
	}

	victim, ok := p.SelectForEviction()
	if !ok || victim != 1 {
		t.Fatalf("want evict 1, got %v ok=%v", victim, ok)
	}
}

func TestTwoQ_PromotedKeySurvivesA1Draining(t *testing.T) {
	t.Parallel()

	p := New[int]().New()
	p.OnInsert(1)
	p.OnInsert(2)
	p.OnAccess(2) // promote 2 to Am

	v1, ok := p.SelectForEviction()
	if !ok || v1 != 1 {
		t.Fatalf("want evict 1 from A1 first, got %v ok=%v", v1, ok)
	}
	p.OnRemove(1)

	v2, ok := p.SelectForEviction()
	if !ok || v2 != 2 {
		t.Fatalf("want evict 2 from Am once A1 is empty, got %v ok=%v", v2, ok)
	}
}

func TestTwoQ_OnAccessUnknownKeyReportsAbsent(t *testing.T) {
	t.Parallel()

	p := New[string]().New()
	if p.OnAccess("missing") {
		t.Fatal("OnAccess on untracked key must report absent")
	}
}

func TestTwoQ_OnClear(t *testing.T) {
	t.Parallel()

	p := New[int]().New()
	p.OnInsert(1)
	p.OnAccess(1)
	p.OnClear()

	if _, ok := p.SelectForEviction(); ok {
		t.Fatal("SelectForEviction after OnClear must report absent")
	}
}

func TestTwoQ_ReserveRejectsNonPositive(t *testing.T) {
	t.Parallel()

	p := New[int]().New()
	if err := p.Reserve(0); err == nil {
		t.Fatal("Reserve(0) must fail")
	}
	if err := p.Reserve(-1); err == nil {
		t.Fatal("Reserve(-1) must fail")
	}
}
