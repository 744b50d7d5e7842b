// Package models defines the domain types shared by the page pipeline,
// the index and the serving layer.
package models

import "time"

// Page is a fully rendered document.
type Page struct {
	Path     string              `json:"path"`
	Title    string              `json:"title"`
	Metadata map[string][]string `json:"metadata"`
	HTML     string              `json:"html"`
}

// PageFile describes a servable markdown file found under the document root.
type PageFile struct {
	Path      string    `json:"path"` // logical path
	File      string    `json:"file"` // relative to the document root
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
