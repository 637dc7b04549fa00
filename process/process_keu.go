package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"
	"time"

	"gorm.io/gorm"

	"strukscan/models"
	"strukscan/pkg/config"
	"strukscan/pkg/scan"
	"strukscan/pkg/store"
)

// global flags (parsed in main)
var verbose bool

// Main: scans a directory of receipt images, stores an Upload and Receipt per
// new image, moves processed images aside and optionally keeps watching.
func main() {
	dirFlag := flag.String("dir", "public/keu", "directory to scan for receipt images")
	username := flag.String("user", "admin", "username the uploads are assigned to")
	processed := flag.String("processed", filepath.Join("public", "processed"), "directory successfully scanned images are moved to")
	dryRun := flag.Bool("dry-run", false, "Skip all DB queries and writes; just list / optionally OCR (see --simulate-ocr)")
	simulateOCR := flag.Bool("simulate-ocr", false, "In dry-run: actually run OCR and print the records")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	schema := flag.Bool("check-schema", false, "Print the receipt table foreign keys and exit")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *schema {
		if err := checkSchema(cfg.DBDSN, os.Stdout); err != nil {
			log.Fatalf("check schema: %v", err)
		}
		return
	}

	sc, err := scan.FromConfig(cfg.OCR)
	if err != nil {
		log.Fatalf("ocr: %v", err)
	}
	sc.Verbose(verbose)
	p := &processor{
		sc:           sc,
		dir:          *dirFlag,
		processedDir: *processed,
		timeout:      cfg.OCRTimeout,
		known:        newPreloadState(),
		out:          os.Stdout,
	}

	files := listImageFiles(*dirFlag)
	if *dryRun {
		log.Printf("Dry-run: scanning %s (no DB interaction)", *dirFlag)
		log.Printf("Found %d candidate files", len(files))
		if *simulateOCR {
			p.dryRun = true
			runWorkerPool(effectiveWorkers(*workers), feed(files), p.processSingleFile)
		}
		return
	}

	p.db, err = store.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if p.user, err = store.UserByName(p.db, *username); err != nil {
		log.Fatalf("user %s: %v", *username, err)
	}
	p.preload()
	log.Printf("Preloaded: receipts=%d", p.known.size())

	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(effectiveWorkers(*workers), feed(files), p.processSingleFile)

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fileCh, err := watchDirectory(ctx, *dirFlag)
		if err != nil {
			log.Fatalf("watch failed: %v", err)
		}
		runWorkerPool(effectiveWorkers(*workers), fileCh, p.processSingleFile)
	}
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadState remembers content hashes that already have a receipt.
type preloadState struct {
	mu     sync.RWMutex
	hashes map[string]uint // sha256 -> upload id
}

func newPreloadState() *preloadState {
	return &preloadState{hashes: make(map[string]uint, 1024)}
}

func (ps *preloadState) get(hash string) (uint, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	id, ok := ps.hashes[hash]
	return id, ok
}

func (ps *preloadState) put(hash string, id uint) {
	ps.mu.Lock()
	ps.hashes[hash] = id
	ps.mu.Unlock()
}

func (ps *preloadState) size() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.hashes)
}

type processor struct {
	db           *gorm.DB
	sc           *scan.Scanner
	user         models.User
	dir          string
	processedDir string
	timeout      time.Duration
	dryRun       bool
	known        *preloadState

	outMu sync.Mutex
	out   io.Writer
}

// preload fetches the hashes of the user's scanned uploads to minimize
// per-file queries.
func (p *processor) preload() {
	var ups []models.Upload
	if err := p.db.Select("id", "sha256").Where("user_id = ? AND failed = ?", p.user.ID, false).Find(&ups).Error; err != nil {
		log.Printf("WARN preload failed: %v", err)
		return
	}
	for _, u := range ups {
		if u.SHA256 != "" {
			p.known.put(u.SHA256, u.ID)
		}
	}
}

// processSingleFile scans one image. Already scanned content is skipped and
// a failed upload for the same path is retried in place.
func (p *processor) processSingleFile(name string) {
	filePath := filepath.Join(p.dir, name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("WARN read %s: %v", filePath, err)
		return
	}
	hash := sha256Hex(data)
	if id, ok := p.known.get(hash); ok {
		logV("SKIP %s already scanned as upload=%d", name, id)
		return
	}

	timeout := p.timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	out := p.sc.Bytes(ctx, data, mimeFromExt(name))
	logV("OCR %s psm=%d conf=%.1f in %s", name, out.PSM, out.Confidence, time.Since(start).Round(time.Millisecond))

	if p.dryRun {
		p.printRecord(name, out)
		return
	}

	storePath := filepath.ToSlash(filepath.Join("public", filepath.Base(p.dir), name))
	up := &models.Upload{UserID: p.user.ID, FileName: name, StorePath: storePath, ContentType: mimeFromExt(name), SHA256: hash}
	if existing, err := store.UploadByPath(p.db, storePath); err != nil {
		log.Printf("WARN lookup %s: %v", storePath, err)
	} else if existing != nil {
		existing.SHA256, existing.ContentType = hash, up.ContentType
		up = existing
	}
	if err := store.SaveScan(p.db, up, out); err != nil {
		log.Printf("ERROR save %s: %v", name, err)
		return
	}
	if out.Failed() {
		log.Printf("FAILED upload id=%d file=%s: %s", up.ID, name, out.Error)
		return
	}
	p.known.put(hash, up.ID)
	log.Printf("NEW receipt id=%d upload=%d file=%s total=%s items=%d", up.Receipt.ID, up.ID, name, fmtAmount(out.Result.Total), len(out.Result.Items))

	dst, err := moveToProcessed(filePath, p.processedDir, name)
	if err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
		return
	}
	logV("moved processed %s to %s", name, dst)
	moved := filepath.ToSlash(dst)
	if err := p.db.Model(up).Update("store_path", moved).Error; err != nil {
		log.Printf("WARN update store path %s: %v", name, err)
	}
}

func (p *processor) printRecord(name string, out scan.Output) {
	b, err := json.Marshal(out)
	if err != nil {
		log.Printf("WARN encode %s: %v", name, err)
		return
	}
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, "%s\t%s\n", name, b)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fmtAmount(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func feed(files []string) <-chan string {
	ch := make(chan string, len(files))
	for _, f := range files {
		ch <- f
	}
	close(ch)
	return ch
}

// runWorkerPool drains files with n workers and returns when the channel is
// closed and every file is done.
func runWorkerPool(n int, files <-chan string, fn func(string)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range files {
				fn(name)
			}
		}()
	}
	wg.Wait()
}
