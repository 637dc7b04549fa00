package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"strukscan/models"
	"strukscan/pkg/config"
	"strukscan/pkg/ocr"
	"strukscan/pkg/scan"
	"strukscan/pkg/store"
)

// Re-runs OCR for uploads whose scan failed, with boosted contrast and
// sharpening unless -plain is given.
func main() {
	username := flag.String("user", "", "only retry this user's uploads (default all)")
	plain := flag.Bool("plain", false, "use the default preprocessing instead of the aggressive one")
	dryRun := flag.Bool("dry-run", false, "scan but do not store the outcome")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := store.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	sc, err := scan.FromConfig(cfg.OCR)
	if err != nil {
		log.Fatalf("ocr: %v", err)
	}
	if !*plain {
		sc = sc.WithPreprocess(ocr.AggressivePreprocessOptions())
	}

	var userID uint
	if *username != "" {
		u, err := store.UserByName(db, *username)
		if err != nil {
			log.Fatalf("user %s: %v", *username, err)
		}
		userID = u.ID
	}
	ups, err := store.FailedUploads(db, userID)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("retrying %d failed uploads", len(ups))

	fixed := 0
	for i := range ups {
		up := &ups[i]
		path := resolvePath(up, cfg.UploadBase)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("open %s: %v", path, err)
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.OCRTimeout)
		out := sc.Bytes(ctx, data, up.ContentType)
		cancel()
		if out.Failed() {
			log.Printf("still failing id=%d file=%s: %s", up.ID, up.FileName, out.Error)
			if *dryRun || out.Error == up.FailedReason {
				continue
			}
		}
		if *dryRun {
			fmt.Printf("would update id=%d file=%s total=%s\n", up.ID, up.FileName, amount(out.Result.Total))
			continue
		}
		if err := store.SaveScan(db, up, out); err != nil {
			log.Printf("update id=%d: %v", up.ID, err)
			continue
		}
		if !out.Failed() {
			fixed++
			fmt.Printf("updated id=%d file=%s receipt=%d psm=%d conf=%.2f\n", up.ID, up.FileName, up.Receipt.ID, out.PSM, out.Confidence)
		}
	}
	log.Printf("done: %d of %d uploads now have a receipt", fixed, len(ups))
}

// resolvePath finds the stored file: batch uploads keep a path relative to
// the working directory, HTTP uploads one relative to UPLOAD_BASE.
func resolvePath(up *models.Upload, base string) string {
	if _, err := os.Stat(up.StorePath); err == nil {
		return up.StorePath
	}
	return filepath.Join(base, filepath.FromSlash(up.StorePath))
}

func amount(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
