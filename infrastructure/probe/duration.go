package probe

import (
	"math"
	"time"
)

// Duration converts a frame count at fps into a wall-clock length
func Duration(frames int, fps float64) time.Duration {
	if frames <= 0 || fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return 0
	}
	return time.Duration(float64(frames) / fps * float64(time.Second))
}
