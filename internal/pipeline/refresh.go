// Package pipeline orchestrates transcript scanning, session assembly, and
// ledger refresh.
package pipeline

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/cclock/internal/ledger"
	"github.com/theirongolddev/cclock/internal/session"
	"github.com/theirongolddev/cclock/internal/source"
)

// ProgressFunc is called during a refresh to report progress.
// current is the number of files handled so far, total is the total count.
type ProgressFunc func(current, total int)

// RefreshResult holds the outcome of one ledger refresh.
type RefreshResult struct {
	TotalFiles   int
	CacheHits    int
	Parsed       int
	Upserted     int
	ParseErrors  int
	FileErrors   int
	ProjectCount int
}

// RefreshOptions configures a refresh pass.
type RefreshOptions struct {
	// ProjectsDir is the transcript root to scan
	ProjectsDir string

	// IdleThreshold separates sessions' active time from idle gaps
	IdleThreshold time.Duration

	// ManifestPath persists scan stamps between runs; empty reparses all
	ManifestPath string

	// Progress is called as files are handled (optional)
	Progress ProgressFunc
}

// Refresh discovers transcripts, parses the ones that changed since the
// last run, assembles them into sessions, and upserts those into the
// ledger. Parsing runs on a bounded worker pool; ledger writes stay on the
// calling goroutine, which is the ledger's single writer.
func Refresh(store *ledger.Store, opts RefreshOptions) (*RefreshResult, error) {
	files, err := source.ScanDir(opts.ProjectsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", opts.ProjectsDir, err)
	}

	result := &RefreshResult{
		TotalFiles:   len(files),
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	man := loadManifest(opts.ManifestPath)
	stamps := make(map[string]fileStamp, len(files))
	var toParse []source.DiscoveredFile

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		st := fileStamp{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		stamps[f.Path] = st
		if prev, ok := man.Files[f.Path]; ok && prev == st {
			result.CacheHits++
			if opts.Progress != nil {
				opts.Progress(result.CacheHits, result.TotalFiles)
			}
			continue
		}
		toParse = append(toParse, f)
	}

	if len(toParse) > 0 {
		numWorkers := runtime.GOMAXPROCS(0)
		if numWorkers < 1 {
			numWorkers = 4
		}
		if numWorkers > len(toParse) {
			numWorkers = len(toParse)
		}

		work := make(chan int, len(toParse))
		results := make([]source.ParseResult, len(toParse))
		var wg sync.WaitGroup
		var processed atomic.Int64

		for i := range toParse {
			work <- i
		}
		close(work)

		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for idx := range work {
					results[idx] = source.ParseFile(toParse[idx].Path)
					n := processed.Add(1)
					if opts.Progress != nil {
						opts.Progress(int(n)+result.CacheHits, result.TotalFiles)
					}
				}
			}()
		}

		wg.Wait()

		for i, pr := range results {
			if pr.Err != nil {
				result.FileErrors++
				// Retry the file on the next refresh.
				delete(stamps, toParse[i].Path)
				continue
			}
			result.Parsed++
			result.ParseErrors += pr.ParseErrors

			sess, ok := session.Assemble(pr.Events, opts.IdleThreshold)
			if !ok {
				continue
			}
			// Identity is the path relative to the projects dir, so the
			// same transcript keeps one row no matter how the root is
			// reached.
			sess.SourcePath = toParse[i].RelPath
			if err := store.UpsertSession(sess); err != nil {
				return nil, fmt.Errorf("storing session from %s: %w", toParse[i].Path, err)
			}
			result.Upserted++
		}
	}

	if opts.ManifestPath != "" {
		man.Files = stamps
		_ = saveManifest(opts.ManifestPath, man)
	}

	return result, nil
}
