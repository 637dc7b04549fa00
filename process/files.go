package main

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"strukscan/pkg/ocr"

	"github.com/disintegration/imaging"
)

// MIME mapping to avoid opening files repeatedly
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".pdf":  "application/pdf",
}

func mimeFromExt(name string) string {
	return extMime[strings.ToLower(filepath.Ext(name))]
}

func isSupportedFile(name string) bool {
	// ignore OCR-generated temp files to avoid recursive processing
	if strings.Contains(name, ".ocr.") || strings.HasSuffix(name, ".pre.png") || strings.HasPrefix(name, ".") {
		return false
	}
	return ocr.SupportedExt(strings.ToLower(filepath.Ext(name)))
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedFile(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

// maxProcessedBytes bounds archived raster images; larger ones are
// downscaled.
const maxProcessedBytes = 1_000_000

// moveToProcessed moves a scanned file into processedDir and returns the new
// path. It attempts an atomic rename and falls back to copy+remove when
// necessary. Oversized raster images are downscaled on the way.
func moveToProcessed(src, processedDir, name string) (string, error) {
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(processedDir, name)

	fi, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(name))
	if fi.Size() <= maxProcessedBytes || !resizable(ext) {
		return dst, rename(src, dst)
	}
	img, err := imaging.Open(src)
	if err != nil { // fallback to raw move if cannot decode
		return dst, rename(src, dst)
	}
	// size roughly scales with area
	scale := math.Sqrt(float64(maxProcessedBytes) / float64(fi.Size()))
	scale = math.Max(0.1, math.Min(scale, 0.95))
	w := int(math.Max(1, math.Round(float64(img.Bounds().Dx())*scale)))
	img = imaging.Resize(img, w, 0, imaging.Lanczos)
	if err := imaging.Save(img, dst); err != nil {
		return dst, rename(src, dst)
	}
	return dst, os.Remove(src)
}

// resizable lists formats imaging can both decode and re-encode.
func resizable(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func rename(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	return copyRemove(src, dst)
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
