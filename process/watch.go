package main

import (
	"context"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	debounceTick   = 250 * time.Millisecond
	debounceSettle = 300 * time.Millisecond
)

// debouncer holds file names until no event has touched them for settle.
type debouncer struct {
	settle  time.Duration
	pending map[string]time.Time
}

func newDebouncer(settle time.Duration) *debouncer {
	return &debouncer{settle: settle, pending: map[string]time.Time{}}
}

func (d *debouncer) touch(name string, now time.Time) { d.pending[name] = now }

// due removes and returns the names that have been quiet long enough.
func (d *debouncer) due(now time.Time) []string {
	var out []string
	for name, t := range d.pending {
		if now.Sub(t) > d.settle {
			out = append(out, name)
			delete(d.pending, name)
		}
	}
	sort.Strings(out)
	return out
}

// watchDirectory emits supported files created or rewritten in dir once
// their writes settle. The channel closes when ctx is done.
func watchDirectory(ctx context.Context, dir string) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		defer close(fileCh)
		defer w.Close()
		d := newDebouncer(debounceSettle)
		ticker := time.NewTicker(debounceTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
					continue
				}
				name := filepath.Base(ev.Name)
				if isSupportedFile(name) {
					d.touch(name, time.Now())
				}
			case now := <-ticker.C:
				for _, name := range d.due(now) {
					select {
					case fileCh <- name:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()
	return fileCh, nil
}
