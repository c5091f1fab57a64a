package engine

import (
	"github.com/bwiize/dashboard/internal/domain"
)

// Scroll maps a scroll offset to the nearest page.
func (e *Engine) Scroll(offset, viewportWidth float64) domain.CarouselState {
	return e.navigate(func(c domain.CarouselState) domain.CarouselState {
		return e.nav.OnScroll(c, offset, viewportWidth)
	})
}

// GoTo selects a page and returns the scroll offset the view should animate to.
func (e *Engine) GoTo(index int) (domain.CarouselState, float64) {
	var target float64
	c := e.navigate(func(c domain.CarouselState) domain.CarouselState {
		next, t := e.nav.GoTo(c, index)
		target = t
		return next
	})
	return c, target
}

// Next moves to the following page.
func (e *Engine) Next() (domain.CarouselState, float64) {
	return e.step(e.nav.Next)
}

// Prev moves to the preceding page.
func (e *Engine) Prev() (domain.CarouselState, float64) {
	return e.step(e.nav.Prev)
}

func (e *Engine) step(move func(domain.CarouselState) (domain.CarouselState, float64)) (domain.CarouselState, float64) {
	var target float64
	c := e.navigate(func(c domain.CarouselState) domain.CarouselState {
		next, t := move(c)
		target = t
		return next
	})
	return c, target
}

// Touch interprets a horizontal swipe. changed reports whether the page moved.
func (e *Engine) Touch(startX, endX float64) (state domain.CarouselState, target float64, changed bool) {
	state = e.navigate(func(c domain.CarouselState) domain.CarouselState {
		next, t, ok := e.nav.OnTouchGesture(c, startX, endX)
		target, changed = t, ok
		return next
	})
	return state, target, changed
}

func (e *Engine) navigate(fn func(domain.CarouselState) domain.CarouselState) domain.CarouselState {
	snap, _ := e.apply(func(s *domain.Snapshot, fx *effects) error {
		next := fn(s.Carousel)
		if next == s.Carousel {
			fx.unchanged = true
			return nil
		}
		s.Carousel = next
		return nil
	})
	return snap.Carousel
}
