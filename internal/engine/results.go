// internal/engine/results.go
package engine

import (
	"sort"

	"github.com/google/uuid"
)

// PlayerStanding is one player's terminal game state, the input to ranking.
// EliminatedAt is a monotonic timestamp (unix milliseconds or a turn index,
// anything ordered) and ignored while Active.
type PlayerStanding struct {
	UserID       uuid.UUID
	Active       bool
	EliminatedAt int64
}

// FromGameStates ranks players: active beats eliminated, and among the
// eliminated a later elimination ranks higher (survived longer). Ties among
// still-active players are not broken; their input order is preserved.
func FromGameStates(standings []PlayerStanding) []PlayerResult {
	ordered := make([]PlayerStanding, len(standings))
	copy(ordered, standings)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Active != b.Active {
			return a.Active
		}
		if a.Active {
			return false // preserve input order among active players
		}
		return a.EliminatedAt > b.EliminatedAt
	})

	results := make([]PlayerResult, len(ordered))
	for i, s := range ordered {
		results[i] = PlayerResult{UserID: s.UserID, Rank: i + 1}
	}
	return results
}

// AssignPrizes splits a prize pool over ranked results: winner-take-all for a
// single ranked player, 70/30 for two, 50/30/20 for three or more. Integer
// remainder goes to rank 1. Results must be ordered by rank.
func AssignPrizes(results []PlayerResult, pool int64) []PlayerResult {
	if len(results) == 0 || pool <= 0 {
		return results
	}

	var shares []int64
	switch {
	case len(results) == 1:
		shares = []int64{100}
	case len(results) == 2:
		shares = []int64{70, 30}
	default:
		shares = []int64{50, 30, 20}
	}

	var paid int64
	for i := range results {
		if i >= len(shares) {
			break
		}
		results[i].Prize = pool * shares[i] / 100
		paid += results[i].Prize
	}
	results[0].Prize += pool - paid
	return results
}
