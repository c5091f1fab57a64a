// Package challenge keeps the challenge-completion counter that gates escrow release.
package challenge

import (
	"slices"
	"strings"

	"github.com/bwiize/dashboard/internal/domain"
)

// Result describes the effect of one completion event.
type Result struct {
	Progress domain.ChallengeProgress
	// Counted is false when the event was a duplicate or the counter was already full.
	Counted bool
	// ReachedThreshold is true only for the event that first fills the counter.
	ReachedThreshold bool
}

// Counter applies completion events to a ChallengeProgress.
type Counter struct {
	// Dedup ignores challenge IDs that have already been counted.
	Dedup bool
}

// NewProgress returns an empty counter with the given threshold.
func NewProgress(required int) domain.ChallengeProgress {
	if required <= 0 {
		required = domain.DefaultChallengesRequired
	}
	return domain.ChallengeProgress{Required: required}
}

// Complete counts one completion of challengeID. The counter grows by one and is
// capped at the threshold; it never decreases.
func (c Counter) Complete(p domain.ChallengeProgress, challengeID string) Result {
	id := strings.TrimSpace(challengeID)
	if c.Dedup && id != "" && p.Counted(id) {
		return Result{Progress: p}
	}

	prev := p.Completed
	next := min(prev+1, p.Required)

	p.CountedIDs = slices.Clone(p.CountedIDs)
	if id != "" && !p.Counted(id) {
		p.CountedIDs = append(p.CountedIDs, id)
	}
	p.Completed = next

	return Result{
		Progress:         p,
		Counted:          next > prev,
		ReachedThreshold: prev < p.Required && next >= p.Required,
	}
}

// MarkCompleted flags the matching daily challenge as completed and returns a new slice.
// Unknown IDs leave the list unchanged.
func MarkCompleted(list []domain.DailyChallenge, challengeID string) []domain.DailyChallenge {
	idx := slices.IndexFunc(list, func(d domain.DailyChallenge) bool { return d.ID == challengeID })
	if idx < 0 || list[idx].Completed {
		return list
	}
	next := slices.Clone(list)
	next[idx].Completed = true
	return next
}
