package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"strukscan/pkg/ocr"

	"github.com/disintegration/imaging"
)

// Writes the binarized image the OCR engine would see, for tuning the
// preprocessing options by eye.
func main() {
	in := flag.String("in", "public/keu/sample.png", "receipt image")
	out := flag.String("out", "", "output PNG (default <in>.pre.png)")
	width := flag.Int("width", ocr.DefaultPreprocessOptions().TargetWidth, "target width")
	window := flag.Int("window", ocr.DefaultPreprocessOptions().Window, "adaptive threshold window")
	bias := flag.Int("bias", ocr.DefaultPreprocessOptions().Bias, "adaptive threshold bias")
	skew := flag.Float64("max-skew", ocr.DefaultPreprocessOptions().MaxSkew, "max deskew angle in degrees (0 disables)")
	flag.Parse()

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	img, err := ocr.Decode(data, "")
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	opts := ocr.DefaultPreprocessOptions()
	opts.TargetWidth, opts.Window, opts.Bias, opts.MaxSkew = *width, *window, *bias, *skew
	proc := ocr.Preprocess(img, opts)

	dst := *out
	if dst == "" {
		dst = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".pre.png"
	}
	if err := imaging.Save(proc, dst); err != nil {
		log.Fatalf("save: %v", err)
	}
	b := proc.Bounds()
	fmt.Printf("wrote %s (%dx%d)\n", dst, b.Dx(), b.Dy())
}
