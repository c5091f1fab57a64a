// Package carousel derives the active dashboard panel from scroll, touch and
// programmatic navigation.
package carousel

import (
	"math"

	"github.com/bwiize/dashboard/internal/domain"
)

// DefaultSwipeThreshold is the horizontal travel needed for a swipe to change page.
const DefaultSwipeThreshold = 75.0

// Navigator holds the carousel geometry. Its methods are pure functions over CarouselState.
type Navigator struct {
	SwipeThreshold float64
}

// NewState returns a carousel on the first of pageCount pages.
func NewState(pageCount int) domain.CarouselState {
	if pageCount <= 0 {
		pageCount = domain.DefaultCarouselPages
	}
	return domain.CarouselState{PageCount: pageCount}
}

// OnScroll sets the index to the page nearest to offset. A non-positive viewport width
// carries no position information and leaves the state unchanged.
func (Navigator) OnScroll(s domain.CarouselState, offset, viewportWidth float64) domain.CarouselState {
	if viewportWidth <= 0 || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return s
	}
	s.ViewportWidth = viewportWidth
	// Clamp before converting: an out-of-range float has no defined int value.
	idx := math.Max(0, math.Min(math.Round(offset/viewportWidth), float64(lastIndex(s))))
	s.Index = int(idx)
	return s
}

// GoTo moves to index (clamped) and returns the scroll offset the view should animate to.
// The scroll event produced by that animation maps back to the same index.
func (Navigator) GoTo(s domain.CarouselState, index int) (domain.CarouselState, float64) {
	s.Index = clampIndex(s, index)
	return s, float64(s.Index) * s.ViewportWidth
}

// Next advances one page unless already on the last one.
func (n Navigator) Next(s domain.CarouselState) (domain.CarouselState, float64) {
	return n.GoTo(s, s.Index+1)
}

// Prev retreats one page unless already on the first one.
func (n Navigator) Prev(s domain.CarouselState) (domain.CarouselState, float64) {
	return n.GoTo(s, s.Index-1)
}

// OnTouchGesture interprets a horizontal swipe from startX to endX. Travel must exceed
// the threshold; otherwise changed is false and the state is returned as is.
func (n Navigator) OnTouchGesture(s domain.CarouselState, startX, endX float64) (domain.CarouselState, float64, bool) {
	threshold := n.SwipeThreshold
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}

	switch {
	case startX-endX > threshold && s.Index < lastIndex(s):
		next, target := n.Next(s)
		return next, target, true
	case endX-startX > threshold && s.Index > 0:
		prev, target := n.Prev(s)
		return prev, target, true
	default:
		return s, float64(s.Index) * s.ViewportWidth, false
	}
}

func lastIndex(s domain.CarouselState) int {
	if s.PageCount <= 0 {
		return domain.DefaultCarouselPages - 1
	}
	return s.PageCount - 1
}

func clampIndex(s domain.CarouselState, i int) int {
	return min(max(i, 0), lastIndex(s))
}
