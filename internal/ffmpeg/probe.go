package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/aaakoako/DeepFunGen/pkg/util"
)

// ProbeVideo extracts metadata from a video file. When the container does
// not report a frame count, one is estimated from duration and frame rate.
func (e *Executor) ProbeVideo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path is required")
	}

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeResult
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &VideoInfo{
		FilePath: filePath,
	}

	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(dur * float64(time.Second))
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info.Width = stream.Width
		info.Height = stream.Height
		info.VideoCodec = stream.CodecName

		// Calculate FPS from r_frame_rate (e.g., "30/1")
		if stream.RFrameRate != "" {
			info.FPS = util.ParseFrameRate(stream.RFrameRate)
		}
		if frames, err := strconv.Atoi(stream.NbFrames); err == nil {
			info.FrameCount = frames
		}
		break
	}

	if info.FPS <= 1e-3 {
		info.FPS = 30.0
	}
	if info.FrameCount <= 0 && info.Duration > 0 {
		info.FrameCount = int(math.Round(info.Duration.Seconds() * info.FPS))
	}

	return info, nil
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
}
