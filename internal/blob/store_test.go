package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	teardown, db, err := database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if teardown != nil {
		_ = teardown(ctx)
	}
	os.Exit(code)
}

type mockStorageClient struct {
	mu        sync.Mutex
	uploaded  map[string][]byte
	uploadErr error
	deleteErr error
	deleted   []string
}

func newMockStorageClient() *mockStorageClient {
	return &mockStorageClient{uploaded: make(map[string][]byte)}
}

func (m *mockStorageClient) UploadFile(_ context.Context, objectName string, fileData io.Reader) error {
	if m.uploadErr != nil {
		return m.uploadErr
	}
	buf, err := io.ReadAll(fileData)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded[objectName] = buf
	return nil
}

func (m *mockStorageClient) DownloadFile(_ context.Context, objectName string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.uploaded[objectName]
	if !ok {
		return nil, 0, fmt.Errorf("object %s not found", objectName)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *mockStorageClient) DeleteFile(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, objectName)
	delete(m.uploaded, objectName)
	return m.deleteErr
}

func TestFileStore_InlineRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(testDB, nil, nil)
	owner := database.TestUserJobSeeker2.ID

	id, err := store.Store(ctx, Object{FileName: "cv.PDF", ContentType: "application/pdf", Data: []byte("inline")}, owner)
	require.NoError(t, err)

	got, err := store.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), got.Data)
	assert.Equal(t, "cv.PDF", got.FileName)
	assert.Equal(t, owner, got.OwnerID)

	var row model.File
	require.NoError(t, testDB.First(&row, "id = ?", id).Error)
	assert.Equal(t, ".pdf", row.Extension)
	assert.Nil(t, row.StorageObjectName)

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Fetch(ctx, id)
	assert.True(t, apperror.Is(err, apperror.CodeNotFound))
}

func TestFileStore_UsesCloudStorage(t *testing.T) {
	ctx := context.Background()
	mockStorage := newMockStorageClient()
	store := NewFileStore(testDB, mockStorage, nil)

	id, err := store.Store(ctx, Object{FileName: "cv.pdf", Data: []byte("remote")}, database.TestUserJobSeeker2.ID)
	require.NoError(t, err)

	var row model.File
	require.NoError(t, testDB.First(&row, "id = ?", id).Error)
	require.NotNil(t, row.StorageObjectName)
	assert.True(t, strings.HasPrefix(*row.StorageObjectName, objectPrefix+"/"))
	assert.Nil(t, row.Content)

	got, err := store.Fetch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), got.Data)

	require.NoError(t, store.Delete(ctx, id))
	assert.Contains(t, mockStorage.deleted, *row.StorageObjectName)
	assert.NotContains(t, mockStorage.uploaded, *row.StorageObjectName)
}

func TestFileStore_UploadError(t *testing.T) {
	mockStorage := newMockStorageClient()
	mockStorage.uploadErr = errors.New("boom")
	store := NewFileStore(testDB, mockStorage, nil)

	_, err := store.Store(context.Background(), Object{FileName: "cv.pdf", Data: []byte("x")}, database.TestUserJobSeeker2.ID)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	store := NewFileStore(testDB, nil, nil)

	assert.NoError(t, store.Delete(context.Background(), uuid.New()))
}

func TestFileStore_DeleteIgnoresRemoteFailure(t *testing.T) {
	ctx := context.Background()
	mockStorage := newMockStorageClient()
	store := NewFileStore(testDB, mockStorage, nil)

	id, err := store.Store(ctx, Object{FileName: "cv.pdf", Data: []byte("x")}, database.TestUserJobSeeker2.ID)
	require.NoError(t, err)

	mockStorage.deleteErr = errors.New("bucket unavailable")
	assert.NoError(t, store.Delete(ctx, id))

	var count int64
	require.NoError(t, testDB.Model(&model.File{}).Where("id = ?", id).Count(&count).Error)
	assert.Zero(t, count)
}
