package predict

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/aaakoako/DeepFunGen/internal/ffmpeg"
	"github.com/aaakoako/DeepFunGen/internal/model"
)

// defaultFramesPerSegment is how many frames each sampled segment decodes
// during a quick recommendation pass.
const defaultFramesPerSegment = 250

type segment struct {
	start int
	end   int
}

// QuickPredict samples representative segments of the video instead of
// decoding it fully, producing enough signal for parameter recommendation.
// framesPerSegment <= 0 uses the default.
func (d *Driver) QuickPredict(ctx context.Context, videoPath string, framesPerSegment int) (RawSignal, error) {
	if framesPerSegment <= 0 {
		framesPerSegment = defaultFramesPerSegment
	}

	info, err := d.exec.ProbeVideo(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open video %s: %w", videoPath, err)
	}
	total := info.FrameCount
	if total <= 0 {
		return nil, fmt.Errorf("cannot determine video frame count")
	}

	numSegments := segmentCount(total)
	if total < framesPerSegment*numSegments {
		framesPerSegment = total / (numSegments + 1)
		if framesPerSegment < 100 {
			framesPerSegment = 100
		}
	}
	segments := selectSegments(total, numSegments, framesPerSegment)

	spec := d.model.Spec()
	frameLen := spec.Height * spec.Width * spec.Channels
	sequence := make([]float32, spec.SequenceLength*frameLen)
	window := make([][]float32, 0, spec.SequenceLength)
	frameMS := 1000.0 / info.FPS

	var signal RawSignal
	for _, seg := range segments {
		stream, err := d.exec.StreamFrames(ctx, videoPath, ffmpeg.StreamOptions{
			Width:      info.Width,
			Height:     info.Height,
			FPS:        info.FPS,
			StartFrame: seg.start,
			MaxFrames:  seg.end - seg.start,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to open video %s: %w", videoPath, err)
		}

		local := 0
		for local < seg.end-seg.start {
			frame, err := stream.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				stream.Close()
				return nil, fmt.Errorf("frame decode failed: %w", err)
			}

			preprocessed := model.Preprocess(frame, spec)
			if len(window) == spec.SequenceLength {
				copy(window, window[1:])
				window[len(window)-1] = preprocessed
			} else {
				window = append(window, preprocessed)
			}

			value := 0.0
			if len(window) == spec.SequenceLength {
				for i, f := range window {
					copy(sequence[i*frameLen:(i+1)*frameLen], f)
				}
				v, err := d.model.Infer(sequence)
				if err != nil {
					stream.Close()
					return nil, fmt.Errorf("inference failed at frame %d: %w", seg.start+local, err)
				}
				value = float64(v)
			}

			globalIdx := seg.start + local
			signal = append(signal, Sample{
				FrameIndex:  globalIdx,
				TimestampMS: float64(globalIdx) * frameMS,
				Value:       value,
			})
			local++
		}
		stream.Close()
	}

	if len(signal) == 0 {
		return nil, fmt.Errorf("no frames processed from video segments")
	}
	sort.SliceStable(signal, func(i, j int) bool {
		return signal[i].FrameIndex < signal[j].FrameIndex
	})
	return signal, nil
}

// segmentCount scales the number of sampled segments with video length.
func segmentCount(totalFrames int) int {
	switch {
	case totalFrames < 5000: // < ~3 minutes at 30fps
		return 2
	case totalFrames < 20000: // 3-11 minutes
		return 4
	case totalFrames < 60000: // 11-33 minutes
		return 6
	default: // > 33 minutes
		return 10
	}
}

// selectSegments spreads segments across the video. The first and last
// windows are always included; middle segments center on i·total/(n-1).
// Identical segments are deduplicated and the result is ordered by start.
func selectSegments(totalFrames, numSegments, framesPerSegment int) []segment {
	var segments []segment

	switch {
	case numSegments == 1:
		start := (totalFrames - framesPerSegment) / 2
		if start < 0 {
			start = 0
		}
		end := start + framesPerSegment
		if end > totalFrames {
			end = totalFrames
		}
		segments = append(segments, segment{start, end})
	case numSegments == 2:
		first := framesPerSegment
		if first > totalFrames {
			first = totalFrames
		}
		segments = append(segments, segment{0, first})
		tail := totalFrames - framesPerSegment
		if tail < 0 {
			tail = 0
		}
		segments = append(segments, segment{tail, totalFrames})
	default:
		first := framesPerSegment
		if first > totalFrames {
			first = totalFrames
		}
		segments = append(segments, segment{0, first})

		step := float64(totalFrames) / float64(numSegments-1)
		for i := 1; i < numSegments-1; i++ {
			center := int(float64(i) * step)
			start := center - framesPerSegment/2
			if start < 0 {
				start = 0
			}
			end := start + framesPerSegment
			if end > totalFrames {
				end = totalFrames
			}
			if end > start {
				segments = append(segments, segment{start, end})
			}
		}

		tail := totalFrames - framesPerSegment
		if tail < 0 {
			tail = 0
		}
		segments = append(segments, segment{tail, totalFrames})
	}

	sort.Slice(segments, func(i, j int) bool {
		if segments[i].start != segments[j].start {
			return segments[i].start < segments[j].start
		}
		return segments[i].end < segments[j].end
	})
	deduped := segments[:0]
	for _, seg := range segments {
		if len(deduped) > 0 && deduped[len(deduped)-1] == seg {
			continue
		}
		deduped = append(deduped, seg)
	}
	return deduped
}
