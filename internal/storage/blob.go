package storage

import "io"

// BlobStore holds question images. Put is used by the question-bank
// importer; the server only reads.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
