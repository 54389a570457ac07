package station

import "testing"

func TestFetchGuard(t *testing.T) {
	g := NewFetchGuard()

	first := g.Next()
	if !g.Current(first) {
		t.Fatal("freshly issued token should be current")
	}

	second := g.Next()
	if g.Current(first) {
		t.Fatal("superseded token should not be current")
	}
	if !g.Current(second) {
		t.Fatal("latest token should be current")
	}

	if second <= first {
		t.Fatalf("tokens must increase: first=%d second=%d", first, second)
	}
}
