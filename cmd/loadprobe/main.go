// Loads every image of a directory through the background loader and
// reports the outcome, without starting the viewer.
//
// Usage: loadprobe <dir> [rows]
package main

import (
	"log"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/folio/internal/cellsize"
	"github.com/llehouerou/folio/internal/imageloader"
	"github.com/llehouerou/folio/internal/imagestore"
	"github.com/llehouerou/folio/internal/logging"
)

const (
	defaultRows  = 12
	pollInterval = 50 * time.Millisecond
	timeout      = 2 * time.Minute
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <dir> [rows]", os.Args[0])
	}
	dir := os.Args[1]

	rows := defaultRows
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			log.Fatalf("Invalid row count %q", os.Args[2])
		}
		rows = n
	}

	logging.SetLogger(logging.New(os.Stderr, slog.LevelDebug))

	store := imagestore.New(dir)
	hrefs, err := store.List()
	if err != nil {
		log.Fatalf("Failed to list images: %v", err)
	}
	log.Printf("Found %d images in %s", len(hrefs), store.Root())

	reqs := make([]imageloader.Request, 0, len(hrefs))
	for _, href := range hrefs {
		reqs = append(reqs, imageloader.Request{Source: href, Rows: rows})
	}

	cell := cellsize.Detect()
	log.Printf("Cell size %dx%d px, %d rows per image", cell.Width, cell.Height, rows)

	loader := imageloader.New()
	if !loader.Start(reqs, store, cell) {
		log.Fatalf("Loader refused the job")
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	deadline := time.After(timeout)

	var batch imageloader.Batch
	for done := false; !done; {
		select {
		case <-ticker.C:
			batch, done = loader.Poll()
		case <-deadline:
			loader.Cancel()
			log.Fatalf("Timed out after %s", timeout)
		}
	}

	if batch.Err != nil {
		log.Fatalf("Loading failed: %v", batch.Err)
	}

	var total uint64
	for _, href := range hrefs {
		img, ok := batch.Images[href]
		if !ok {
			continue
		}
		b := img.Bounds()
		total += uint64(b.Dx()) * uint64(b.Dy()) * 4 //nolint:gosec // non-negative
		log.Printf("  ok      %s  %dx%d px  %d cells wide", href, b.Dx(), b.Dy(), cellsize.PixelsToCells(b.Dx(), cell.Width))
	}

	failed := make([]string, 0, len(batch.Failed))
	for href := range batch.Failed {
		failed = append(failed, href)
	}
	slices.Sort(failed)
	for _, href := range failed {
		log.Printf("  failed  %s: %v", href, batch.Failed[href])
	}

	log.Printf("Loaded %d, failed %d, %s decoded", len(batch.Images), len(batch.Failed), humanize.Bytes(total))
}
