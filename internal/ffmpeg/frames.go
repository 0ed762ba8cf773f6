package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/aaakoako/DeepFunGen/pkg/util"
)

// StreamOptions controls how frames are decoded from a video.
type StreamOptions struct {
	// Width and Height are the source dimensions, normally taken from ProbeVideo.
	Width  int
	Height int
	// FPS converts StartFrame into a seek timestamp.
	FPS float64
	// StartFrame seeks before decoding begins. Zero starts at the beginning.
	StartFrame int
	// MaxFrames limits how many frames are decoded. Zero means no limit.
	MaxFrames int
}

// FrameStream decodes raw BGR24 frames from an ffmpeg pipe, one Next call
// per frame. The caller must Close it to reap the process.
type FrameStream struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	frameSize int
	width     int
	height    int
	nextIndex int
	done      bool
}

// StreamFrames starts an ffmpeg process that writes raw BGR24 frames to a
// pipe. Seeking uses an input-side -ss so ffmpeg lands on the nearest
// keyframe and decodes forward from there.
func (e *Executor) StreamFrames(ctx context.Context, filePath string, opts StreamOptions) (*FrameStream, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("frame dimensions are required")
	}

	args := []string{"-hide_banner", "-loglevel", "error"}
	if opts.StartFrame > 0 {
		fps := opts.FPS
		if fps <= 1e-3 {
			fps = 30.0
		}
		offset := time.Duration(float64(opts.StartFrame) / fps * float64(time.Second))
		args = append(args, "-ss", util.FormatDuration(offset))
	}
	args = append(args, "-i", filePath)
	if opts.MaxFrames > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", opts.MaxFrames))
	}
	args = append(args,
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	)

	e.logger.Debug().
		Str("file", filePath).
		Int("start_frame", opts.StartFrame).
		Int("max_frames", opts.MaxFrames).
		Msg("starting frame stream")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &FrameStream{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		frameSize: opts.Width * opts.Height * 3,
		width:     opts.Width,
		height:    opts.Height,
		nextIndex: opts.StartFrame,
	}, nil
}

// Next returns the next decoded frame, or io.EOF when the stream ends.
// A partial trailing frame is discarded.
func (s *FrameStream) Next() (*Frame, error) {
	if s.done {
		return nil, io.EOF
	}

	buf := make([]byte, s.frameSize)
	_, err := io.ReadFull(s.stdout, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		s.done = true
		if waitErr := s.cmd.Wait(); waitErr != nil && s.stderr.Len() > 0 {
			return nil, fmt.Errorf("ffmpeg decode failed: %s", bytes.TrimSpace(s.stderr.Bytes()))
		}
		return nil, io.EOF
	}
	if err != nil {
		s.done = true
		_ = s.cmd.Wait()
		return nil, fmt.Errorf("failed to read frame: %w", err)
	}

	frame := &Frame{
		Index:  s.nextIndex,
		Width:  s.width,
		Height: s.height,
		BGR:    buf,
	}
	s.nextIndex++
	return frame, nil
}

// Close terminates the decode process if it is still running.
func (s *FrameStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	_ = s.stdout.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	return nil
}
