// Package elo implements the pairwise rating update applied after each vote.
package elo

import "math"

// K is the rating sensitivity constant.
const K = 32

// ExpectedScore returns the winner's expected outcome given both current
// ratings, on the standard logistic curve with a 400-point scale.
func ExpectedScore(winnerScore, loserScore int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(loserScore-winnerScore)/400.0))
}

// Delta returns the number of points transferred from loser to winner.
// The result is clamped to a minimum of 1, so a heavily favored winner still
// gains a point and the update never degenerates to a no-op.
func Delta(winnerScore, loserScore int) int {
	delta := int(math.Round(K * (1 - ExpectedScore(winnerScore, loserScore))))
	if delta < 1 {
		return 1
	}
	return delta
}

// Apply computes the zero-sum score update for a match outcome. It returns
// the applied delta and both new scores.
func Apply(winnerScore, loserScore int) (delta, newWinnerScore, newLoserScore int) {
	delta = Delta(winnerScore, loserScore)
	return delta, winnerScore + delta, loserScore - delta
}
