package photo

import (
	"fmt"
	"log"
	"time"
)

// Reconciler is the offline sweep for the orphan window between the blob
// upload and the record insert. It never runs on the upload hot path.
type Reconciler struct {
	repo       Repository
	store      ObjectStore
	staleAfter time.Duration
}

type ReconcileReport struct {
	StaleRowsRemoved int
	BlobsRemoved     int
}

func NewReconciler(repo Repository, store ObjectStore, staleAfter time.Duration) *Reconciler {
	return &Reconciler{
		repo:       repo,
		store:      store,
		staleAfter: staleAfter,
	}
}

// Run removes rows stuck in pending/failed longer than staleAfter along
// with their blobs, then removes storage objects that no row references.
// Both halves are idempotent, so a crashed sweep can simply be re-run.
func (r *Reconciler) Run() (ReconcileReport, error) {
	var report ReconcileReport

	cutoff := time.Now().Add(-r.staleAfter)
	stale, err := r.repo.ListStalePhotos(cutoff)
	if err != nil {
		return report, fmt.Errorf("failed to list stale photos: %w", err)
	}

	for _, p := range stale {
		paths := append([]string{p.FilePath}, ThumbnailPaths(p.FilePath)...)
		if err := r.store.Remove(paths); err != nil {
			log.Printf("reconcile: failed to remove blobs for stale photo %s: %v", p.ID, err)
		}
		deleted, err := r.repo.DeletePhoto(p.ID, p.UserID, p.FileSize)
		if err != nil {
			log.Printf("reconcile: failed to delete stale photo row %s: %v", p.ID, err)
			continue
		}
		if deleted {
			report.StaleRowsRemoved++
		}
	}

	knownPaths, err := r.repo.ListAllPaths()
	if err != nil {
		return report, fmt.Errorf("failed to list known paths: %w", err)
	}
	live := make(map[string]bool, len(knownPaths)*4)
	for _, path := range knownPaths {
		live[path] = true
		for _, tp := range ThumbnailPaths(path) {
			live[tp] = true
		}
	}

	// The store lists one folder level per call with names relative to
	// the prefix. Every object lives at <userID>/<file>, so the root
	// listing yields the per-user folders to descend into.
	folders, err := r.store.List("")
	if err != nil {
		return report, fmt.Errorf("failed to list storage folders: %w", err)
	}

	var orphans []string
	for _, folder := range folders {
		entries, err := r.store.List(folder)
		if err != nil {
			log.Printf("reconcile: failed to list objects under %s: %v", folder, err)
			continue
		}
		for _, name := range entries {
			full := folder + "/" + name
			if !live[full] {
				orphans = append(orphans, full)
			}
		}
	}
	if len(orphans) > 0 {
		if err := r.store.Remove(orphans); err != nil {
			log.Printf("reconcile: failed to remove orphaned blobs: %v", err)
		} else {
			report.BlobsRemoved = len(orphans)
		}
	}

	return report, nil
}
