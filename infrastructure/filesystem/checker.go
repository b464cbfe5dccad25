package filesystem

import (
	"os"

	"letitflow-media/domain/media"
)

// Checker implements media.FileChecker on the local disk
type Checker struct{}

func NewChecker() *Checker {
	return &Checker{}
}

// Exists reports whether path names a regular file. Directories and
// devices named like videos do not count.
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

var _ media.FileChecker = (*Checker)(nil)
