package model

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/aaakoako/DeepFunGen/internal/ffmpeg"
)

// Preprocess converts a decoded BGR frame into one model input frame:
// resized to the spec dimensions, RGB channel order, float32 scaled to
// [0,1], laid out height-major (HWC).
func Preprocess(frame *ffmpeg.Frame, spec Spec) []float32 {
	img := image.NewNRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		srcRow := y * frame.Width * 3
		dstRow := y * img.Stride
		for x := 0; x < frame.Width; x++ {
			src := srcRow + x*3
			dst := dstRow + x*4
			img.Pix[dst+0] = frame.BGR[src+2]
			img.Pix[dst+1] = frame.BGR[src+1]
			img.Pix[dst+2] = frame.BGR[src+0]
			img.Pix[dst+3] = 255
		}
	}

	var resized image.Image = img
	if frame.Width != spec.Width || frame.Height != spec.Height {
		resized = resize.Resize(uint(spec.Width), uint(spec.Height), img, resize.Bilinear)
	}

	out := make([]float32, spec.Height*spec.Width*spec.Channels)
	if nrgba, ok := resized.(*image.NRGBA); ok {
		for y := 0; y < spec.Height; y++ {
			row := y * nrgba.Stride
			for x := 0; x < spec.Width; x++ {
				px := row + x*4
				base := (y*spec.Width + x) * spec.Channels
				for c := 0; c < spec.Channels; c++ {
					out[base+c] = float32(nrgba.Pix[px+c]) / 255.0
				}
			}
		}
		return out
	}

	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			base := (y*spec.Width + x) * spec.Channels
			channels := [3]uint32{r, g, b}
			for c := 0; c < spec.Channels; c++ {
				out[base+c] = float32(channels[c]>>8) / 255.0
			}
		}
	}
	return out
}
