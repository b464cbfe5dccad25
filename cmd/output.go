package cmd

// OutputWriter is where commands print user-facing progress
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
