package rocketmq

import (
	"testing"
)

func TestSplitTopics(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"bet_placed,draw_published", []string{"bet_placed", "draw_published"}},
		{"bet_placed;draw_published", []string{"bet_placed", "draw_published"}},
		{" bet_placed ; draw_published , draw_settled ", []string{"bet_placed", "draw_published", "draw_settled"}},
		{"bet.placed", []string{"bet_placed"}},
		{"single", []string{"single"}},
		{"", nil},
		{" ,; ", nil},
	}
	for _, c := range cases {
		got := SplitTopics(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("SplitTopics(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("SplitTopics(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}
