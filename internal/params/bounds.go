package params

import "fmt"

// #region bounds
// Bounds holds per-slot parameter limits. The coordinator clamps the
// optimizer's vector once per evaluation before broadcast; out-of-bounds
// excursions additionally feed a quadratic punishment into the objective so
// the optimizer is steered back rather than crashed.
type Bounds struct {
	Lo []float64
	Hi []float64

	// PenaltyScale weights the squared overshoot. Zero selects the default.
	PenaltyScale float64
}

const defaultPenaltyScale = 1e5

// NewBounds allocates unlimited bounds for a layout. Callers narrow
// individual slots afterwards.
func NewBounds(layout Layout) *Bounds {
	n := layout.Size()
	b := &Bounds{
		Lo: make([]float64, n),
		Hi: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		b.Lo[i] = -1e30
		b.Hi[i] = 1e30
	}
	return b
}

// Validate checks that the bounds cover exactly the given vector length.
func (b *Bounds) Validate(size int) error {
	if len(b.Lo) != size || len(b.Hi) != size {
		return fmt.Errorf("bounds: have %d/%d limits, vector has %d slots", len(b.Lo), len(b.Hi), size)
	}
	return nil
}

// #endregion bounds

// #region clamp
// Clamp forces every slot of vec into its bounds, in place. Returns the
// number of slots that were clamped.
func (b *Bounds) Clamp(vec []float64) int {
	clamped := 0
	for i, v := range vec {
		if v < b.Lo[i] {
			vec[i] = b.Lo[i]
			clamped++
		} else if v > b.Hi[i] {
			vec[i] = b.Hi[i]
			clamped++
		}
	}
	return clamped
}

// #endregion clamp

// #region penalty
// Penalty returns the additive out-of-bounds punishment for vec. It is
// evaluated on the raw (pre-clamp) vector so persistent violations keep a
// gradient pointing back into the feasible region.
func (b *Bounds) Penalty(vec []float64) float64 {
	scale := b.PenaltyScale
	if scale == 0 {
		scale = defaultPenaltyScale
	}
	sum := 0.0
	for i, v := range vec {
		if v < b.Lo[i] {
			d := b.Lo[i] - v
			sum += scale * d * d
		} else if v > b.Hi[i] {
			d := v - b.Hi[i]
			sum += scale * d * d
		}
	}
	return sum
}

// #endregion penalty
