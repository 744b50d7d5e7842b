// Package docroot maps logical page paths onto markdown files inside a
// sandboxed document root.
package docroot

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/mdpages/internal/apperr"
	"github.com/starford/mdpages/internal/checksum"
	"github.com/starford/mdpages/internal/models"
)

const (
	mdExt      = ".md"
	indexFile  = "index.md"
	readmeFile = "README.md"
)

// Root is a read-only view of the document root.
type Root struct {
	dir string // absolute, symlink-free path of the root directory
}

// New creates a Root for dir. The directory must already exist.
func New(dir string) (*Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("docroot: resolve root: %w", err)
	}
	realDir, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("docroot: resolve root links: %w", err)
	}
	info, err := os.Stat(realDir)
	if err != nil {
		return nil, fmt.Errorf("docroot: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("docroot: root is not a directory: %s", realDir)
	}
	return &Root{dir: filepath.Clean(realDir)}, nil
}

// Dir returns the absolute path of the root directory.
func (r *Root) Dir() string {
	return r.dir
}

// Resolve maps a logical path to the real path of the markdown file that
// serves it. Every failure wraps apperr.ErrNotFound; the wrapped reason is
// meant for logs only.
func (r *Root) Resolve(logical string) (string, error) {
	for _, seg := range strings.Split(logical, "/") {
		if seg == ".." {
			return "", notFound("parent segment", logical)
		}
	}
	if strings.HasPrefix(logical, "/") {
		return "", notFound("absolute path", logical)
	}

	logical = strings.TrimRight(logical, "/")

	base := filepath.Clean(filepath.Join(r.dir, filepath.FromSlash(logical)))
	if !r.contains(base) {
		return "", notFound("outside root", logical)
	}

	for _, seg := range strings.Split(logical, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", notFound("hidden segment", logical)
		}
	}

	candidates := []string{base + mdExt, filepath.Join(base, indexFile)}
	if logical == "" {
		// <root>.md sits beside the root, not in it.
		candidates = candidates[1:]
	}
	candidate, ok := firstRegular(candidates...)
	if !ok {
		return "", notFound("no candidate file", logical)
	}

	realPath, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", notFound("unresolvable link", logical)
	}
	if filepath.Base(realPath) == readmeFile {
		return "", notFound("readme", logical)
	}
	if !r.contains(realPath) {
		return "", notFound("link escapes root", logical)
	}
	return realPath, nil
}

// ReadFile returns the contents of a path previously returned by Resolve.
func (r *Root) ReadFile(resolved string) ([]byte, error) {
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("docroot: %w: %s: %w", apperr.ErrRead, resolved, err)
	}
	return data, nil
}

// List walks the root and returns every markdown file that some logical
// path resolves to. Hidden entries, READMEs and files shadowed by a
// sibling "<name>.md" are left out.
func (r *Root) List() ([]models.PageFile, error) {
	var out []models.PageFile
	err := filepath.WalkDir(r.dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != r.dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), mdExt) {
			return nil
		}

		rel, err := filepath.Rel(r.dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		logical := LogicalPath(rel)

		resolved, err := r.Resolve(logical)
		if err != nil {
			return nil
		}
		realPath, err := filepath.EvalSymlinks(p)
		if err != nil || realPath != resolved {
			return nil
		}

		info, err := os.Stat(realPath)
		if err != nil {
			return err
		}
		data, err := r.ReadFile(realPath)
		if err != nil {
			return err
		}
		out = append(out, models.PageFile{
			Path:      logical,
			File:      rel,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("docroot: list: %w", err)
	}
	return out, nil
}

// LogicalPath returns the logical path a slash-separated file path
// (relative to the root) would be served under.
func LogicalPath(rel string) string {
	rel = strings.TrimSuffix(rel, mdExt)
	if rel == "index" {
		return ""
	}
	return strings.TrimSuffix(rel, "/index")
}

// contains reports whether p is the root itself or lies beneath it.
func (r *Root) contains(p string) bool {
	rel, err := filepath.Rel(r.dir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func firstRegular(paths ...string) (string, bool) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

func notFound(reason, logical string) error {
	return fmt.Errorf("docroot: %w: %s: %q", apperr.ErrNotFound, reason, logical)
}
