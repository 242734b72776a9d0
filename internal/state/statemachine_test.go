package state

import (
	"errors"
	"testing"
)

func TestNextStateLegalPath(t *testing.T) {
	s, err := NextState(StatePending, EvtPublish)
	if err != nil {
		t.Fatalf("publish on pending: %v", err)
	}
	if s != StatePublished {
		t.Fatalf("want published, got %s", s)
	}

	s, err = NextState(s, EvtSettle)
	if err != nil {
		t.Fatalf("settle on published: %v", err)
	}
	if s != StateSettled {
		t.Fatalf("want settled, got %s", s)
	}
}

func TestNextStateSettleIdempotent(t *testing.T) {
	s, err := NextState(StateSettled, EvtSettle)
	if err != nil {
		t.Fatalf("settle on settled should be idempotent: %v", err)
	}
	if s != StateSettled {
		t.Fatalf("want settled, got %s", s)
	}
}

func TestNextStateRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		cur DrawState
		evt Event
	}{
		{StatePending, EvtSettle},
		{StatePublished, EvtPublish},
		{StateSettled, EvtPublish},
	}
	for _, c := range cases {
		got, err := NextState(c.cur, c.evt)
		if err == nil {
			t.Fatalf("%s on %s should fail", c.evt, c.cur)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s on %s: want ErrInvalidTransition, got %v", c.evt, c.cur, err)
		}
		if got != c.cur {
			t.Fatalf("%s on %s: state must not move, got %s", c.evt, c.cur, got)
		}
	}
}
