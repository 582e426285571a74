package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Upload(ctx, FolderInbox, "report 2020/Q4.pdf", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)
	assert.Equal(t, "report 2020/Q4.pdf", info.Name)
	assert.Equal(t, int64(13), info.Size)
	assert.Equal(t, FolderInbox, info.Folder)
	assert.NotContains(t, info.Path, "/")
	assert.Len(t, info.SHA256, 64)

	rc, got, err := s.Download(ctx, FolderInbox, info.ID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, info.SHA256, got.SHA256)
}

func TestLocalStorage_SameContentSameHash(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	a, err := s.Upload(ctx, FolderInbox, "a.pdf", strings.NewReader("same"))
	require.NoError(t, err)
	b, err := s.Upload(ctx, FolderInbox, "b.pdf", strings.NewReader("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.SHA256, b.SHA256)
}

func TestLocalStorage_Move(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Upload(ctx, FolderInbox, "r.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	moved, err := s.Move(ctx, info.ID, FolderInbox, FolderProcessed)
	require.NoError(t, err)
	assert.Equal(t, FolderProcessed, moved.Folder)
	assert.FileExists(t, s.LocalPath(moved))

	_, err = s.GetInfo(ctx, FolderInbox, info.ID)
	assert.Error(t, err)

	inbox, err := s.List(ctx, FolderInbox)
	require.NoError(t, err)
	assert.Empty(t, inbox)

	processed, err := s.List(ctx, FolderProcessed)
	require.NoError(t, err)
	require.Len(t, processed, 1)
	assert.Equal(t, info.ID, processed[0].ID)
}

func TestLocalStorage_ListAdoptsStrayPDFs(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(base, "inbox", "dropped.PDF"), []byte("pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "inbox", "notes.txt"), []byte("ignore"), 0o644))

	files, err := s.List(ctx, FolderInbox)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "dropped.PDF", files[0].Name)
	assert.Equal(t, int64(3), files[0].Size)

	again, err := s.List(ctx, FolderInbox)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, files[0].ID, again[0].ID)
}

func TestLocalStorage_Delete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Upload(ctx, FolderRejected, "bad.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, FolderRejected, info.ID))

	assert.NoFileExists(t, s.LocalPath(info))
	assert.Error(t, s.Delete(ctx, FolderRejected, info.ID))
	_, err = s.GetInfo(ctx, FolderRejected, uuid.New())
	assert.Error(t, err)
}
