package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDir = ".meta"

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	for _, folder := range []Folder{FolderInbox, FolderProcessed, FolderRejected} {
		if err := os.MkdirAll(filepath.Join(basePath, string(folder), metaDir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Upload stores a file and returns its metadata
func (s *LocalStorage) Upload(ctx context.Context, folder Folder, filename string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	// Sanitize filename and add UUID prefix for uniqueness
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filename))
	filePath := filepath.Join(s.basePath, string(folder), storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hash), r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:        fileID,
		Name:      filename,
		Size:      size,
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		Folder:    folder,
		Path:      storedFilename,
		CreatedAt: time.Now(),
	}

	if err := s.saveMetadata(info); err != nil {
		os.Remove(filePath)
		return nil, err
	}

	return info, nil
}

// Download retrieves a file by its ID
func (s *LocalStorage) Download(ctx context.Context, folder Folder, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.GetInfo(ctx, folder, fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(s.LocalPath(info))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Delete removes a file by its ID
func (s *LocalStorage) Delete(ctx context.Context, folder Folder, fileID uuid.UUID) error {
	info, err := s.GetInfo(ctx, folder, fileID)
	if err != nil {
		return err
	}

	if err := os.Remove(s.LocalPath(info)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	os.Remove(s.metaPath(folder, fileID))

	return nil
}

// List returns all files in a folder, oldest first. PDFs copied into the folder directly,
// without going through Upload, are registered on the way.
func (s *LocalStorage) List(ctx context.Context, folder Folder) ([]*FileInfo, error) {
	if err := s.adoptStrays(folder); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.basePath, string(folder), metaDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		info, err := s.GetInfo(ctx, folder, id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].CreatedAt.Before(files[j].CreatedAt)
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// GetInfo returns metadata for a file without downloading
func (s *LocalStorage) GetInfo(ctx context.Context, folder Folder, fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(folder, fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", fileID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

// Move transfers a file to another folder, keeping its ID
func (s *LocalStorage) Move(ctx context.Context, fileID uuid.UUID, from, to Folder) (*FileInfo, error) {
	info, err := s.GetInfo(ctx, from, fileID)
	if err != nil {
		return nil, err
	}
	if from == to {
		return info, nil
	}

	src := s.LocalPath(info)
	info.Folder = to
	if err := os.Rename(src, s.LocalPath(info)); err != nil {
		return nil, fmt.Errorf("failed to move file: %w", err)
	}
	if err := s.saveMetadata(info); err != nil {
		return nil, err
	}
	os.Remove(s.metaPath(from, fileID))

	return info, nil
}

// LocalPath returns the file's location on disk.
func (s *LocalStorage) LocalPath(info *FileInfo) string {
	return filepath.Join(s.basePath, string(info.Folder), info.Path)
}

// adoptStrays writes metadata for PDFs in folder that have none.
func (s *LocalStorage) adoptStrays(folder Folder) error {
	dir := filepath.Join(s.basePath, string(folder))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list folder: %w", err)
	}

	known := make(map[string]bool)
	metas, err := os.ReadDir(filepath.Join(dir, metaDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to list metadata: %w", err)
	}
	for _, m := range metas {
		id, err := uuid.Parse(strings.TrimSuffix(m.Name(), ".json"))
		if err != nil {
			continue
		}
		if info, err := s.GetInfo(context.Background(), folder, id); err == nil {
			known[info.Path] = true
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || known[name] || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			continue
		}
		info, err := s.describe(folder, name)
		if err != nil {
			return err
		}
		if err := s.saveMetadata(info); err != nil {
			return err
		}
	}
	return nil
}

func (s *LocalStorage) describe(folder Folder, name string) (*FileInfo, error) {
	f, err := os.Open(filepath.Join(s.basePath, string(folder), name))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	return &FileInfo{
		ID:        uuid.New(),
		Name:      name,
		Size:      stat.Size(),
		SHA256:    hex.EncodeToString(hash.Sum(nil)),
		Folder:    folder,
		Path:      name,
		CreatedAt: stat.ModTime(),
	}, nil
}

func (s *LocalStorage) metaPath(folder Folder, fileID uuid.UUID) string {
	return filepath.Join(s.basePath, string(folder), metaDir, fileID.String()+".json")
}

// saveMetadata saves file metadata to a JSON file
func (s *LocalStorage) saveMetadata(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(s.metaPath(info.Folder, info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
