// Package storage keeps report PDFs on disk as they move from the inbox through processing.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Folder is a stage of the ingest lifecycle.
type Folder string

const (
	FolderInbox     Folder = "inbox"
	FolderProcessed Folder = "processed"
	FolderRejected  Folder = "rejected"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Size   int64     `json:"size"`
	SHA256 string    `json:"sha256"`
	Folder Folder    `json:"folder"`
	// Path is relative to the folder.
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, folder Folder, filename string, r io.Reader) (*FileInfo, error)

	// Download retrieves a file by its ID
	Download(ctx context.Context, folder Folder, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, folder Folder, fileID uuid.UUID) error

	// List returns all files in a folder, oldest first
	List(ctx context.Context, folder Folder) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, folder Folder, fileID uuid.UUID) (*FileInfo, error)

	// Move transfers a file to another folder, keeping its ID
	Move(ctx context.Context, fileID uuid.UUID, from, to Folder) (*FileInfo, error)

	// LocalPath returns a filesystem path for tools that need one
	LocalPath(info *FileInfo) string
}
