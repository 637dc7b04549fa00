package ocr

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// PreprocessOptions tune the cleanup applied before recognition.
type PreprocessOptions struct {
	// Images wider than TargetWidth or narrower than MinWidth are scaled to
	// TargetWidth.
	TargetWidth int
	MinWidth    int
	// Denoise is the Gaussian blur sigma; zero disables it.
	Denoise float64
	// Contrast (percent, -100..100) and Sharpen (sigma) run before the
	// threshold; zero disables them.
	Contrast float64
	Sharpen  float64
	// Window and Bias drive the adaptive threshold.
	Window int
	Bias   int
	// Dilate thickens strokes by this many pixels.
	Dilate int
	// MaxSkew bounds the deskew search in degrees; zero disables deskew.
	MaxSkew  float64
	SkewStep float64
}

func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		TargetWidth: 1000,
		MinWidth:    500,
		Denoise:     0.6,
		Window:      15,
		Bias:        8,
		MaxSkew:     5,
		SkewStep:    0.5,
	}
}

// AggressivePreprocessOptions boosts contrast and sharpens, for faded
// thermal prints that fail with the defaults.
func AggressivePreprocessOptions() PreprocessOptions {
	o := DefaultPreprocessOptions()
	o.Contrast = 30
	o.Sharpen = 2
	return o
}

// Preprocess resizes, grayscales, denoises, binarizes and deskews img.
func Preprocess(img image.Image, o PreprocessOptions) *image.NRGBA {
	if w := img.Bounds().Dx(); o.TargetWidth > 0 && (w > o.TargetWidth || w < o.MinWidth) {
		img = imaging.Resize(img, o.TargetWidth, 0, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	if o.Denoise > 0 {
		gray = imaging.Blur(gray, o.Denoise)
	}
	if o.Contrast != 0 {
		gray = imaging.AdjustContrast(gray, o.Contrast)
	}
	if o.Sharpen > 0 {
		gray = imaging.Sharpen(gray, o.Sharpen)
	}
	bin := adaptiveThreshold(gray, o.Window, o.Bias)
	bin = dilate(bin, o.Dilate)
	if o.MaxSkew > 0 {
		if angle := estimateSkew(bin, o.MaxSkew, o.SkewStep); angle != 0 {
			rotated := imaging.Rotate(bin, angle, color.White)
			bin = binarize(rotated, 128)
		}
	}
	return bin
}

// binarize performs a global threshold on a grayscale image.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var v uint8 = 255
			if luma(img.At(x, y)) <= int(threshold) {
				v = 0
			}
			out.Set(x-b.Min.X, y-b.Min.Y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func luma(c color.Color) int {
	r, g, b, _ := c.RGBA()
	return int((r + g + b) / 3 >> 8)
}

// adaptiveThreshold marks a pixel black when it is darker than the mean of
// its window minus bias. Window sums come from an integral image.
func adaptiveThreshold(img image.Image, window int, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2
	pix := make([]int, w*h)
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			v := luma(img.At(b.Min.X+x, b.Min.Y+y))
			pix[y*w+x] = v
			rowSum += v
			if y == 0 {
				ints[y*w+x] = rowSum
			} else {
				ints[y*w+x] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	at := func(x, y int) int {
		if x < 0 || y < 0 {
			return 0
		}
		return ints[y*w+x]
	}
	black := color.NRGBA{0, 0, 0, 255}
	for y := 0; y < h; y++ {
		y0, y1 := max(y-half, 0), min(y+half, h-1)
		for x := 0; x < w; x++ {
			x0, x1 := max(x-half, 0), min(x+half, w-1)
			sum := at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			if pix[y*w+x] < mean-bias {
				out.Set(x, y, black)
			}
		}
	}
	return out
}

// dilate grows black pixels into their 4-neighbourhood radius times.
func dilate(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	cur := img
	for r := 0; r < radius; r++ {
		next := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for _, d := range [][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					x2, y2 := x+d[0], y+d[1]
					if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
						continue
					}
					if cur.NRGBAAt(x2, y2).R == 0 {
						next.Set(x, y, color.NRGBA{0, 0, 0, 255})
						break
					}
				}
			}
		}
		cur = next
	}
	return cur
}

// estimateSkew searches [-maxDeg, maxDeg] for the rotation whose horizontal
// projection profile is sharpest, i.e. text rows line up with pixel rows.
// The search runs on a downscaled copy.
func estimateSkew(bin *image.NRGBA, maxDeg, step float64) float64 {
	if step <= 0 {
		step = 0.5
	}
	small := image.Image(bin)
	if bin.Bounds().Dx() > 400 {
		small = imaging.Resize(bin, 400, 0, imaging.Box)
	}
	best, bestScore := 0.0, profileSharpness(small)
	for a := -maxDeg; a <= maxDeg+1e-9; a += step {
		if math.Abs(a) < 1e-9 {
			continue
		}
		if s := profileSharpness(imaging.Rotate(small, a, color.White)); s > bestScore*1.01 {
			best, bestScore = a, s
		}
	}
	return best
}

func profileSharpness(img image.Image) float64 {
	b := img.Bounds()
	var score float64
	prev := -1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := 0
		for x := b.Min.X; x < b.Max.X; x++ {
			if luma(img.At(x, y)) < 128 {
				row++
			}
		}
		if prev >= 0 {
			d := float64(row - prev)
			score += d * d
		}
		prev = row
	}
	return score
}
