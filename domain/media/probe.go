package media

import (
	"errors"
	"time"
)

// ErrProbeUnavailable is returned by probers compiled without video support
var ErrProbeUnavailable = errors.New("video probing not available in this build")

// VideoInfo describes a source video as seen by a prober
type VideoInfo struct {
	Frames   int
	FPS      float64
	Duration time.Duration
}

// VideoProber reads container metadata of a video file
type VideoProber interface {
	Probe(path string) (VideoInfo, error)
}
