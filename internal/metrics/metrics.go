// Package metrics derives the dashboard headline numbers from the current
// project and RFI collections.
package metrics

import (
	"math"
	"slices"

	"github.com/zulandar/demodash/internal/models"
)

// Metrics holds the derived dashboard figures. It is never stored.
type Metrics struct {
	ActiveValue    float64 `json:"activeValue"`
	PendingRFIs    int     `json:"pendingRFIs"`
	CurrentBids    int     `json:"currentBids"`
	CompletionRate int     `json:"completionRate"`
}

// Compute returns the metrics for the given collections. It has no side
// effects and returns the same result for any ordering of its inputs.
func Compute(projects []models.Project, rfis []models.RFI) Metrics {
	var (
		active    []float64
		bids      int
		completed int
	)
	for _, p := range projects {
		switch p.Status {
		case models.StatusActive:
			active = append(active, p.Value)
		case models.StatusBidding:
			bids++
		case models.StatusCompleted:
			completed++
		}
	}

	// Summing in sorted order makes the float result permutation-invariant.
	slices.Sort(active)
	var activeValue float64
	for _, v := range active {
		activeValue += v
	}

	rate := 0
	if len(projects) > 0 {
		rate = int(math.Round(100 * float64(completed) / float64(len(projects))))
	}

	return Metrics{
		ActiveValue:    activeValue,
		PendingRFIs:    len(rfis),
		CurrentBids:    bids,
		CompletionRate: rate,
	}
}
