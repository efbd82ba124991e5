package storage

import "github.com/oakmund/stanza/internal/models"

// Provider abstracts the content file store so loaders, the draft
// workflow, and tests can share one contract.
type Provider interface {
	List(dir string) ([]models.FileInfo, error)
	Read(path string) ([]byte, error)
	Write(path string, content []byte) error
	Delete(path string) error
	Exists(path string) (bool, error)
}
