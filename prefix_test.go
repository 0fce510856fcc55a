package vlist

import (
	"math/rand"
	"testing"
)

func naiveSumTo(sizes []float32, index int) float32 {
	var sum float32
	for i := 0; i < index && i < len(sizes); i++ {
		sum += sizes[i]
	}
	return sum
}

func TestPrefixTreeMatchesNaiveSums(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sizes := make([]float32, 257)
	for i := range sizes {
		sizes[i] = 1 + rng.Float32()*99
	}

	tree := newPrefixTree(len(sizes), func(i int) float32 { return sizes[i] })

	for i := 0; i <= len(sizes); i++ {
		got := tree.SumTo(i)
		want := naiveSumTo(sizes, i)
		if diff := got - want; diff > 0.01 || diff < -0.01 {
			t.Fatalf("SumTo(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestPrefixTreeAdd(t *testing.T) {
	sizes := []float32{10, 20, 30, 40}
	tree := newPrefixTree(len(sizes), func(i int) float32 { return sizes[i] })

	tree.Add(1, 5) // 20 -> 25

	if got := tree.SumTo(2); got != 35 {
		t.Errorf("SumTo(2) after Add = %v, want 35", got)
	}
	if got := tree.Total(); got != 105 {
		t.Errorf("Total after Add = %v, want 105", got)
	}

	// Out-of-range and zero deltas are no-ops.
	tree.Add(-1, 10)
	tree.Add(4, 10)
	tree.Add(0, 0)
	if got := tree.Total(); got != 105 {
		t.Errorf("Total after no-op Adds = %v, want 105", got)
	}
}

func TestPrefixTreeFindFirst(t *testing.T) {
	// Items of size 50: item i spans [50i, 50i+50).
	tree := newPrefixTree(4, func(int) float32 { return 50 })

	tests := []struct {
		target float32
		want   int
	}{
		{-10, 0},
		{0, 0},
		{49, 0},
		{50, 1}, // exactly at a boundary: item 0 is no longer visible
		{51, 1},
		{149, 2},
		{199, 3},
		{200, 3}, // at/past the total extent clamps to the last item
		{9999, 3},
	}
	for _, tt := range tests {
		if got := tree.FindFirst(tt.target); got != tt.want {
			t.Errorf("FindFirst(%v) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestPrefixTreeEmpty(t *testing.T) {
	tree := newPrefixTree(0, nil)
	if got := tree.Total(); got != 0 {
		t.Errorf("empty Total = %v, want 0", got)
	}
	if got := tree.FindFirst(10); got != 0 {
		t.Errorf("empty FindFirst = %d, want 0", got)
	}
}
