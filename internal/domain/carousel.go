package domain

// DefaultCarouselPages is the number of dashboard panels in the carousel.
const DefaultCarouselPages = 4

// Dashboard panels in carousel order.
var CarouselPanels = []string{"expenses", "savings", "wallet", "payments"}

// CarouselState is the active panel of the swipeable dashboard.
// Index always lies within [0, PageCount-1].
type CarouselState struct {
	Index         int     `json:"index"`
	PageCount     int     `json:"pageCount"`
	ViewportWidth float64 `json:"viewportWidth"`
}

// Panel returns the panel name for the active index, or "" when unnamed.
func (c CarouselState) Panel() string {
	if c.Index < 0 || c.Index >= len(CarouselPanels) {
		return ""
	}
	return CarouselPanels[c.Index]
}
