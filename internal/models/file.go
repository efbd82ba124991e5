package models

import "time"

// FileInfo is a lightweight description of one file in the content
// tree, returned by storage list operations.
type FileInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
