//go:build !gocv

package probe

import (
	"letitflow-media/domain/media"
)

// VideoProber is a stub when GoCV/OpenCV is not available
type VideoProber struct{}

// NewVideoProber creates a stub prober (requires building with -tags=gocv)
func NewVideoProber() *VideoProber {
	return &VideoProber{}
}

// Available reports whether this build can probe videos
func Available() bool {
	return false
}

// Probe returns media.ErrProbeUnavailable
func (p *VideoProber) Probe(path string) (media.VideoInfo, error) {
	return media.VideoInfo{}, media.ErrProbeUnavailable
}

// Ensure VideoProber implements media.VideoProber
var _ media.VideoProber = (*VideoProber)(nil)
