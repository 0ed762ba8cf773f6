package ffmpeg

import "time"

// VideoInfo contains metadata extracted from a video file
type VideoInfo struct {
	FilePath   string
	Duration   time.Duration
	Width      int
	Height     int
	FPS        float64
	FrameCount int
	VideoCodec string
}

// Frame is a single decoded video frame in packed BGR24 order,
// row-major, three bytes per pixel.
type Frame struct {
	Index  int
	Width  int
	Height int
	BGR    []byte
}
