package index

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/starford/mdpages/internal/docroot"
	"github.com/starford/mdpages/internal/models"
	"github.com/starford/mdpages/internal/pages"
	"github.com/starford/mdpages/internal/render"
)

// Change kinds reported by Sync.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// Change describes one page added, modified or removed by Sync.
type Change struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Sync walks the document root and brings the index up to date:
//   - new/changed pages are read and upserted
//   - pages no longer servable are deleted from the index
//
// It returns the applied changes ordered by path. Per-page failures are
// logged and skipped.
func Sync(db *DB, root *docroot.Root, logger *slog.Logger) ([]Change, error) {
	files, err := root.List()
	if err != nil {
		return nil, fmt.Errorf("index: sync: %w", err)
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return nil, fmt.Errorf("index: sync: %w", err)
	}

	var changes []Change
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		old, known := checksums[f.Path]
		if known && old == f.Checksum {
			continue
		}
		if err := indexPage(db, root, f); err != nil {
			logger.Warn("sync: index failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		kind := ChangeUpdated
		if !known {
			kind = ChangeCreated
		}
		logger.Debug("sync: indexed", slog.String("path", f.Path), slog.String("op", kind))
		changes = append(changes, Change{Kind: kind, Path: f.Path})
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeletePage(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		changes = append(changes, Change{Kind: ChangeDeleted, Path: p})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// indexPage reads f and upserts it with its metadata-derived title.
func indexPage(db *DB, root *docroot.Root, f models.PageFile) error {
	resolved, err := root.Resolve(f.Path)
	if err != nil {
		return err
	}
	data, err := root.ReadFile(resolved)
	if err != nil {
		return err
	}
	meta, body := render.SplitMetadata(data)
	row := PageRow{
		Path:      f.Path,
		File:      f.File,
		Title:     pages.Title(f.Path, meta),
		Checksum:  f.Checksum,
		UpdatedAt: f.UpdatedAt,
	}
	return db.UpsertPage(row, string(body))
}
