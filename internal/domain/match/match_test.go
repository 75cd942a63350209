package match

import (
	"testing"
	"time"
)

func ids(ms []Match) []string {
	out := make([]string, len(ms))
	for i := range ms {
		out[i] = ms[i].ID()
	}
	return out
}

func TestRank_FiltersSortsTruncates(t *testing.T) {
	now := time.Now()
	in := []Match{
		New("low", "", "", 0.2, now),
		New("mid", "", "", 0.6, now),
		New("top", "", "", 0.9, now),
		New("edge", "", "", 0.5, now),
	}

	got := ids(Rank(in, 0.5, 10))
	want := []string{"top", "mid", "edge"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRank_LimitOne(t *testing.T) {
	now := time.Now()
	in := []Match{New("a", "", "", 0.7, now), New("b", "", "", 0.8, now)}

	got := Rank(in, 0, 1)
	if len(got) != 1 || got[0].ID() != "b" {
		t.Errorf("got %v, want [b]", ids(got))
	}
}

func TestRank_TiesByID(t *testing.T) {
	now := time.Now()
	in := []Match{New("c", "", "", 0.5, now), New("a", "", "", 0.5, now), New("b", "", "", 0.5, now)}

	got := ids(Rank(in, 0, 10))
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("tie order = %v, want [a b c]", got)
	}
}

func TestRank_ThresholdOneKeepsExactOnly(t *testing.T) {
	now := time.Now()
	in := []Match{New("exact", "", "", 1.0, now), New("near", "", "", 0.9999, now)}

	got := Rank(in, 1.0, 10)
	if len(got) != 1 || got[0].ID() != "exact" {
		t.Errorf("got %v, want [exact]", ids(got))
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, 0.5, 10); len(got) != 0 {
		t.Errorf("expected empty, got %v", ids(got))
	}
}
