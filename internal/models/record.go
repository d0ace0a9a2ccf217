package models

// Category discriminates the two kinds of files a manifest describes.
type Category string

const (
	CategoryData     Category = "data"
	CategoryMetadata Category = "metadata"
)

// FileRecord describes one remote file and where it materializes locally.
// Immutable value; LocalPath is always cacheRoot joined with RelativePath.
type FileRecord struct {
	URL          string
	Version      string
	Size         int64
	LocalPath    string
	RelativePath string
	Category     Category
	Hash         string
}

// FileEntry is the wire shape of one file record inside a manifest's
// file_listing. Size is informational only and never enforced.
type FileEntry struct {
	Version      string `json:"version"`
	RelativePath string `json:"relative_path"`
	URL          string `json:"url"`
	Size         int64  `json:"size"`
	FileHash     string `json:"file_hash"`
}

// DirectorySummary is one per-category entry of the directory_listing.
// Informational; file resolution never consults it.
type DirectorySummary struct {
	Version      string `json:"version"`
	RelativePath string `json:"relative_path"`
	URL          string `json:"url"`
	TotalSize    int64  `json:"total_size"`
}

// DirectoryEntry groups the per-category summaries of one dataset directory.
type DirectoryEntry struct {
	Directories map[string]DirectorySummary `json:"directories"`
}
