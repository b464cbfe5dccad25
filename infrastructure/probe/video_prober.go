//go:build gocv

package probe

import (
	"fmt"

	"letitflow-media/domain/media"

	"gocv.io/x/gocv"
)

// VideoProber reads frame count and frame rate through OpenCV
type VideoProber struct{}

// NewVideoProber creates a GoCV-backed prober
func NewVideoProber() *VideoProber {
	return &VideoProber{}
}

// Available reports whether this build can probe videos
func Available() bool {
	return true
}

// Probe opens the video and reads its container metadata
func (p *VideoProber) Probe(path string) (media.VideoInfo, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return media.VideoInfo{}, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	defer vc.Close()

	frames := int(vc.Get(gocv.VideoCaptureFrameCount))
	fps := vc.Get(gocv.VideoCaptureFPS)

	return media.VideoInfo{
		Frames:   frames,
		FPS:      fps,
		Duration: Duration(frames, fps),
	}, nil
}

// Ensure VideoProber implements media.VideoProber
var _ media.VideoProber = (*VideoProber)(nil)
