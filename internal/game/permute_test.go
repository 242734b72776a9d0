package game

import (
	"sort"
	"testing"
)

func TestPermutationsDeduplicated(t *testing.T) {
	got := Permutations("112")
	sort.Strings(got)
	want := []string{"112", "121", "211"}
	if len(got) != len(want) {
		t.Fatalf("Permutations(112) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Permutations(112) = %v, want %v", got, want)
		}
	}
}

func TestPermutationsDistinct(t *testing.T) {
	got := Permutations("123")
	if len(got) != 6 {
		t.Fatalf("Permutations(123): %d perms, want 6", len(got))
	}
	seen := map[string]bool{}
	for _, p := range got {
		if seen[p] {
			t.Fatalf("duplicate permutation %q", p)
		}
		seen[p] = true
	}
	// 全重复数字只有1个排列
	if got := Permutations("1111"); len(got) != 1 || got[0] != "1111" {
		t.Fatalf("Permutations(1111) = %v", got)
	}
}

func TestCombinations(t *testing.T) {
	cases := []struct{ n, k, want int }{
		{3, 2, 3},
		{1, 2, 0},
		{2, 2, 1},
		{6, 6, 1},
		{5, 2, 10},
		{0, 0, 1},
		{4, -1, 0},
	}
	for _, c := range cases {
		if got := Combinations(c.n, c.k); got != c.want {
			t.Fatalf("Combinations(%d, %d) = %d, want %d", c.n, c.k, got, c.want)
		}
	}
}
