package domain

import "slices"

// ChallengeProgress is the externally owned completion counter fed into the escrow.
// CountedIDs records which challenge identifiers have already been counted.
type ChallengeProgress struct {
	Completed  int      `json:"completed"`
	Required   int      `json:"required"`
	CountedIDs []string `json:"countedIds,omitempty"`
}

// Counted reports whether the challenge ID has already contributed to the counter.
func (p ChallengeProgress) Counted(id string) bool {
	return slices.Contains(p.CountedIDs, id)
}

// DailyChallenge is a gamified task listed on the challenges panel.
type DailyChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	XP          int    `json:"xp"`
	Completed   bool   `json:"completed"`
}
