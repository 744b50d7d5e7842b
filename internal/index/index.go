package index

// PageIndex defines the interface for page indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type PageIndex interface {
	UpsertPage(p PageRow, body string) error
	DeletePage(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListPages(limit, offset int) ([]PageRow, int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PageIndex at compile time.
var _ PageIndex = (*DB)(nil)
