package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pruner evicts artifacts older than the retention window from a local
// artifact directory. Object-store backends are expected to use bucket
// lifecycle rules instead.
type Pruner struct {
	dir       string
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewPruner creates a pruner that runs every retention/4, clamped to [1m, 1h].
func NewPruner(dir string, retention time.Duration, log zerolog.Logger) *Pruner {
	interval := retention / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	if interval > time.Hour {
		interval = time.Hour
	}
	return &Pruner{
		dir:       dir,
		retention: retention,
		interval:  interval,
		log:       log.With().Str("component", "artifact-pruner").Logger(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (p *Pruner) Start() {
	go p.loop()
}

// Stop signals the loop to exit and waits for it.
func (p *Pruner) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Pruner) loop() {
	defer close(p.done)

	// Run once on startup to clear any backlog from downtime
	p.prune(time.Now())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			p.prune(now)
		case <-p.stop:
			return
		}
	}
}

// prune removes files modified before now-retention and returns how many
// files and bytes were freed.
func (p *Pruner) prune(now time.Time) (int, int64) {
	if p.retention <= 0 {
		return 0, 0
	}

	cutoff := now.Add(-p.retention)
	var prunedCount int
	var prunedBytes int64

	filepath.WalkDir(p.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("failed to remove expired artifact")
			return nil
		}
		prunedCount++
		prunedBytes += info.Size()
		return nil
	})

	p.removeEmptyDirs()

	if prunedCount > 0 {
		p.log.Info().
			Int("pruned", prunedCount).
			Str("freed", humanizeBytes(prunedBytes)).
			Msg("artifact prune complete")
	}
	return prunedCount, prunedBytes
}

func (p *Pruner) removeEmptyDirs() {
	entries, _ := os.ReadDir(p.dir)
	for _, idDir := range entries {
		if !idDir.IsDir() {
			continue
		}
		idPath := filepath.Join(p.dir, idDir.Name())
		remaining, _ := os.ReadDir(idPath)
		if len(remaining) == 0 {
			os.Remove(idPath)
		}
	}
}

func humanizeBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
