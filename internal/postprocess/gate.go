package postprocess

import (
	"os"

	"av1janitor/internal/services"
)

// Verdict reports the size gate decision for one finished encode.
type Verdict struct {
	Passed        bool
	OriginalBytes int64
	NewBytes      int64
	Ratio         float64
	Threshold     float64
}

// SavingsRatio is the fraction of the original size the encode removed.
func (v Verdict) SavingsRatio() float64 {
	return 1 - v.Ratio
}

// CheckSizeGate stats both files and passes the candidate when its size
// is at most factor times the original. Equality passes; the gate is
// inclusive.
func CheckSizeGate(originalPath, candidatePath string, factor float64) (Verdict, error) {
	originalInfo, err := os.Stat(originalPath)
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrReplacement, "postprocess", "stat original", originalPath, err)
	}
	candidateInfo, err := os.Stat(candidatePath)
	if err != nil {
		return Verdict{}, services.Wrap(services.ErrReplacement, "postprocess", "stat candidate", candidatePath, err)
	}

	if originalInfo.Size() <= 0 {
		return Verdict{}, services.Wrap(services.ErrReplacement, "postprocess", "size gate", originalPath+" is empty", nil)
	}

	verdict := Verdict{
		OriginalBytes: originalInfo.Size(),
		NewBytes:      candidateInfo.Size(),
		Threshold:     factor,
	}
	verdict.Ratio = float64(verdict.NewBytes) / float64(verdict.OriginalBytes)
	verdict.Passed = verdict.Ratio <= factor
	return verdict, nil
}
