package document

import (
	"context"
	"time"

	"staffdocs/internal/logger"
)

// Sweeper reclaims orphaned blobs: stored files no longer referenced by
// any catalog record. Upserts and aborted uploads leave these behind; the
// sweep runs out of band (cmd/sweep), never on the write path.
// The grace period keeps it from racing an upload whose catalog insert has
// not landed yet.
type Sweeper struct {
	repo  Repository
	blobs *BlobStore
	grace time.Duration
}

func NewSweeper(repo Repository, blobs *BlobStore, grace time.Duration) *Sweeper {
	return &Sweeper{repo: repo, blobs: blobs, grace: grace}
}

// Sweep removes unreferenced blobs older than the grace period and
// returns how many were reclaimed.
func (sw *Sweeper) Sweep(ctx context.Context) (int, error) {
	names, err := sw.repo.ListStoredNames(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(names))
	for _, n := range names {
		referenced[n] = struct{}{}
	}

	blobs, err := sw.blobs.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-sw.grace)
	removed := 0
	for _, b := range blobs {
		if _, ok := referenced[b.Name]; ok {
			continue
		}
		if b.ModTime.After(cutoff) {
			continue
		}
		if err := sw.blobs.Remove(b.Name); err != nil {
			logger.Warnf("sweep: could not remove orphan %s: %v", b.Name, err)
			continue
		}
		logger.WithField("stored_name", b.Name).Debugf("sweep: removed orphan blob (%d bytes)", b.Size)
		removed++
	}

	logger.Infof("sweep finished: %d blobs on disk, %d referenced, %d removed", len(blobs), len(referenced), removed)
	return removed, nil
}
