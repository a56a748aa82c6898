package services

import (
	"math"
	"math/rand"

	"promptops/internal/models"
)

// ClampScore bounds a rubric score to [0,100].
func ClampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Overall is the weighted average of the three dimension scores, rounded
// half away from zero and clamped to [0,100]. A zero total weight yields 0.
func Overall(clarity, specificity, safety int, weights models.Weights) int {
	weightedSum := float64(clarity)*weights.Clarity +
		float64(specificity)*weights.Specificity +
		float64(safety)*weights.Safety
	totalWeight := weights.Clarity + weights.Specificity + weights.Safety

	avg := 0.0
	if totalWeight > 0 {
		avg = weightedSum / totalWeight
	}

	return ClampScore(int(math.Round(avg)))
}

// Score clamps each dimension independently and computes the overall score
// from the raw (pre-clamp) inputs. The Model field is left for the caller.
func Score(clarity, specificity, safety int, weights models.Weights) models.ModelResult {
	return models.ModelResult{
		Clarity:     ClampScore(clarity),
		Specificity: ClampScore(specificity),
		Safety:      ClampScore(safety),
		Overall:     Overall(clarity, specificity, safety, weights),
	}
}

// MockSubScores draws each dimension uniformly from [60,100] inclusive.
// Randomness is injected so the engine itself stays deterministic.
func MockSubScores(rng *rand.Rand) (clarity, specificity, safety int) {
	clarity = rng.Intn(41) + 60
	specificity = rng.Intn(41) + 60
	safety = rng.Intn(41) + 60
	return clarity, specificity, safety
}
