package carousel

import (
	"testing"
)

const width = 390.0

func TestOnScrollRoundsToNearest(t *testing.T) {
	n := Navigator{}
	s := n.OnScroll(NewState(4), width*1.4, width)
	if s.Index != 1 {
		t.Errorf("OnScroll(1.4w) index = %d, want 1", s.Index)
	}
	s = n.OnScroll(s, width*1.5, width)
	if s.Index != 2 {
		t.Errorf("OnScroll(1.5w) index = %d, want 2", s.Index)
	}
}

func TestOnScrollClamps(t *testing.T) {
	n := Navigator{}
	s := n.OnScroll(NewState(4), width*10, width)
	if s.Index != 3 {
		t.Errorf("OnScroll(10w) index = %d, want 3", s.Index)
	}
	s = n.OnScroll(s, -width*2, width)
	if s.Index != 0 {
		t.Errorf("OnScroll(-2w) index = %d, want 0", s.Index)
	}

	if got := n.OnScroll(NewState(4), 1e20, 1).Index; got != 3 {
		t.Errorf("OnScroll(1e20) index = %d, want 3", got)
	}
	if got := n.OnScroll(NewState(4), -1e20, 1).Index; got != 0 {
		t.Errorf("OnScroll(-1e20) index = %d, want 0", got)
	}
	if got := n.OnScroll(NewState(4), 1, 1e-300).Index; got != 3 {
		t.Errorf("OnScroll with tiny width index = %d, want 3", got)
	}
}

func TestOnScrollIgnoresZeroWidth(t *testing.T) {
	n := Navigator{}
	s := n.OnScroll(NewState(4), width, width)
	got := n.OnScroll(s, 500, 0)
	if got != s {
		t.Errorf("OnScroll with zero width changed state to %+v", got)
	}
}

func TestGoToThenScrollDoesNotOscillate(t *testing.T) {
	n := Navigator{}
	s := n.OnScroll(NewState(4), 0, width)

	s, target := n.GoTo(s, 1)
	if s.Index != 1 {
		t.Fatalf("GoTo(1) index = %d, want 1", s.Index)
	}
	if target != width {
		t.Errorf("GoTo(1) target = %v, want %v", target, width)
	}

	s = n.OnScroll(s, target, width)
	if s.Index != 1 {
		t.Errorf("index after echo scroll = %d, want 1", s.Index)
	}
}

func TestGoToClamps(t *testing.T) {
	n := Navigator{}
	s := n.OnScroll(NewState(4), 0, width)
	s, target := n.GoTo(s, 9)
	if s.Index != 3 || target != 3*width {
		t.Errorf("GoTo(9) = %d/%v, want 3/%v", s.Index, target, 3*width)
	}
	s, _ = n.GoTo(s, -1)
	if s.Index != 0 {
		t.Errorf("GoTo(-1) index = %d, want 0", s.Index)
	}
}

func TestTouchGestureSwipeLeftAdvances(t *testing.T) {
	n := Navigator{SwipeThreshold: 75}
	s := NewState(4)
	s, _, changed := n.OnTouchGesture(s, 300, 200)
	if !changed || s.Index != 1 {
		t.Errorf("swipe left: index=%d changed=%v, want 1/true", s.Index, changed)
	}
}

func TestTouchGestureSwipeRightRetreats(t *testing.T) {
	n := Navigator{SwipeThreshold: 75}
	s, _ := n.GoTo(NewState(4), 2)
	s, _, changed := n.OnTouchGesture(s, 100, 200)
	if !changed || s.Index != 1 {
		t.Errorf("swipe right: index=%d changed=%v, want 1/true", s.Index, changed)
	}
}

func TestTouchGestureBelowThresholdIsNoop(t *testing.T) {
	n := Navigator{SwipeThreshold: 75}
	s := NewState(4)
	for _, end := range []float64{225, 300, 375} {
		got, _, changed := n.OnTouchGesture(s, 300, end)
		if changed || got.Index != 0 {
			t.Errorf("gesture 300→%v: index=%d changed=%v, want no-op", end, got.Index, changed)
		}
	}
}

func TestTouchGestureAtEdges(t *testing.T) {
	n := Navigator{}
	first := NewState(4)
	if _, _, changed := n.OnTouchGesture(first, 100, 300); changed {
		t.Error("swipe right on first page changed the page")
	}

	last, _ := n.GoTo(first, 3)
	if got, _, changed := n.OnTouchGesture(last, 300, 100); changed || got.Index != 3 {
		t.Errorf("swipe left on last page: index=%d changed=%v, want 3/false", got.Index, changed)
	}
}

func TestNextPrev(t *testing.T) {
	n := Navigator{}
	s := NewState(4)
	s, _ = n.Prev(s)
	if s.Index != 0 {
		t.Errorf("Prev() on first page = %d, want 0", s.Index)
	}
	s, _ = n.Next(s)
	s, _ = n.Next(s)
	if s.Index != 2 {
		t.Errorf("Next() twice = %d, want 2", s.Index)
	}
}

func TestNewStateDefaultPageCount(t *testing.T) {
	if got := NewState(0).PageCount; got != 4 {
		t.Errorf("NewState(0).PageCount = %d, want 4", got)
	}
}
