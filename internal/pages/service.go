// Package pages runs the page pipeline: resolve, read, render, sanitize.
package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/mdpages/internal/apperr"
	"github.com/starford/mdpages/internal/docroot"
	"github.com/starford/mdpages/internal/models"
	"github.com/starford/mdpages/internal/render"
	"github.com/starford/mdpages/internal/sanitize"
)

// Service renders pages from a document root. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	root   *docroot.Root
	logger *slog.Logger
}

// NewService creates a page service over root.
func NewService(root *docroot.Root, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{root: root, logger: logger}
}

// Root returns the document root the service reads from.
func (s *Service) Root() *docroot.Root {
	return s.root
}

// Load resolves logical and returns the rendered, sanitized page.
// It returns an error wrapping apperr.ErrNotFound when no servable file
// exists, and one wrapping apperr.ErrRead when the file cannot be read.
func (s *Service) Load(ctx context.Context, logical string) (*models.Page, error) {
	data, err := s.Source(ctx, logical)
	if err != nil {
		return nil, err
	}

	doc, err := render.Render(data)
	if err != nil {
		return nil, fmt.Errorf("pages: render %q: %w", logical, err)
	}
	return &models.Page{
		Path:     logical,
		Title:    Title(logical, doc.Metadata),
		Metadata: doc.Metadata,
		HTML:     string(sanitize.HTML(doc.HTML)),
	}, nil
}

// Source returns the raw markdown of the file serving logical.
func (s *Service) Source(_ context.Context, logical string) ([]byte, error) {
	file, err := s.root.Resolve(logical)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.logger.Debug("page not found", slog.String("path", logical), slog.String("reason", err.Error()))
		}
		return nil, err
	}
	data, err := s.root.ReadFile(file)
	if err != nil {
		s.logger.Error("page read failed", slog.String("path", logical), slog.String("error", err.Error()))
		return nil, err
	}
	return data, nil
}
