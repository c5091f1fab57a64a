package api

import (
	"net/http"

	"github.com/bwiize/dashboard/internal/domain"
)

type carouselResponse struct {
	Carousel     domain.CarouselState `json:"carousel"`
	Panel        string               `json:"panel"`
	TargetOffset *float64             `json:"targetOffset,omitempty"`
	Changed      *bool                `json:"changed,omitempty"`
}

func newCarouselResponse(c domain.CarouselState) carouselResponse {
	return carouselResponse{Carousel: c, Panel: c.Panel()}
}

func (r carouselResponse) withTarget(target float64) carouselResponse {
	r.TargetOffset = &target
	return r
}

type scrollRequest struct {
	Offset        float64 `json:"offset"`
	ViewportWidth float64 `json:"viewportWidth"`
}

// Scroll handles POST /api/v1/carousel/scroll.
func (h *Handler) Scroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, newCarouselResponse(h.dash.Scroll(req.Offset, req.ViewportWidth)))
}

type goToRequest struct {
	Index int `json:"index"`
}

// GoTo handles POST /api/v1/carousel/goto.
func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request) {
	var req goToRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, target := h.dash.GoTo(req.Index)
	writeJSON(w, http.StatusOK, newCarouselResponse(c).withTarget(target))
}

// Next handles POST /api/v1/carousel/next.
func (h *Handler) Next(w http.ResponseWriter, _ *http.Request) {
	c, target := h.dash.Next()
	writeJSON(w, http.StatusOK, newCarouselResponse(c).withTarget(target))
}

// Prev handles POST /api/v1/carousel/prev.
func (h *Handler) Prev(w http.ResponseWriter, _ *http.Request) {
	c, target := h.dash.Prev()
	writeJSON(w, http.StatusOK, newCarouselResponse(c).withTarget(target))
}

type touchRequest struct {
	StartX float64 `json:"startX"`
	EndX   float64 `json:"endX"`
}

// Touch handles POST /api/v1/carousel/touch.
func (h *Handler) Touch(w http.ResponseWriter, r *http.Request) {
	var req touchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, target, changed := h.dash.Touch(req.StartX, req.EndX)
	resp := newCarouselResponse(c).withTarget(target)
	resp.Changed = &changed
	writeJSON(w, http.StatusOK, resp)
}
