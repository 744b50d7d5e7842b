package api

import (
	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/models"
)

// PageResponse is a rendered page (aliased from the domain layer).
type PageResponse = models.Page

// PageListItem is one indexed page (aliased from the index layer).
type PageListItem = index.PageRow

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
