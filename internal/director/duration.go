package director

import (
	"fmt"
	"math"
	"math/rand"
)

// maxStep bounds the relative change between neighbouring slide durations.
const maxStep = 0.15

// FitDurations spreads a program of length total over count slides joined
// by transitions of length fade. Each slide deviates from its predecessor
// by at most 15%, no slide is shorter than 1.1 x fade, and the durations
// are snapped to the frame grid so that sum - (count-1) x fade matches
// total to within one frame.
func FitDurations(count int, total, fade float64, fps int, r *rand.Rand) ([]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("no slides to fit")
	}
	if total <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid program length %.3fs at %d fps", total, fps)
	}

	clipsTotal := total + float64(count-1)*fade
	base := clipsTotal / float64(count)
	if base < fade*1.1 {
		return nil, fmt.Errorf("%.3fs is too short for %d slides with %.3fs transitions", total, count, fade)
	}

	durations := make([]float64, count)
	durations[0] = base * (1 + jitter(r))
	for i := 1; i < count; i++ {
		durations[i] = durations[i-1] * (1 + jitter(r))
		if durations[i] < fade*1.1 {
			durations[i] = fade * 1.1
		}
	}

	return scaleTo(durations, clipsTotal, fps), nil
}

// ScaleDurations stretches durations proportionally so the program length
// equals total, given that transitions overlap clips by overlap seconds in
// sum.
func ScaleDurations(durations []float64, total, overlap float64, fps int) ([]float64, error) {
	if len(durations) == 0 {
		return nil, fmt.Errorf("no slides to scale")
	}
	if total <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid program length %.3fs at %d fps", total, fps)
	}
	out := scaleTo(durations, total+overlap, fps)
	for i, d := range out {
		if d <= 0 {
			return nil, fmt.Errorf("slide %d shrinks to nothing", i+1)
		}
	}
	return out, nil
}

func jitter(r *rand.Rand) float64 {
	return r.Float64()*2*maxStep - maxStep
}

// scaleTo scales durations to sum to target and snaps them to frames. The
// rounding remainder goes to the last slide.
func scaleTo(durations []float64, target float64, fps int) []float64 {
	sum := 0.0
	for _, d := range durations {
		sum += d
	}

	f := float64(fps)
	out := make([]float64, len(durations))
	targetFrames := math.Round(target * f)
	used := 0.0
	for i, d := range durations {
		frames := math.Round(d * target / sum * f)
		if i == len(durations)-1 {
			frames = math.Max(1, targetFrames-used)
		}
		out[i] = frames / f
		used += frames
	}
	return out
}
