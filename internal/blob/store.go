// Package blob store uploaded files by opaque id, in database rows or cloud storage.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

// Object is file content with the metadata needed to serve it back
type Object struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Blob is a stored Object
type Blob struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Object
}

// Store keep blobs by id. Delete must be idempotent and succeed for missing id.
type Store interface {
	Store(ctx context.Context, obj Object, ownerID uuid.UUID) (uuid.UUID, error)
	Fetch(ctx context.Context, id uuid.UUID) (*Blob, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StorageClient is remote object storage holding blob bytes
type StorageClient interface {
	UploadFile(ctx context.Context, objectName string, fileData io.Reader) error
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
	DeleteFile(ctx context.Context, objectName string) error
}

const objectPrefix = "blobs"

// FileStore keep blob metadata in files table. Bytes go to Storage when it is set,
// otherwise they are stored inline in the row.
type FileStore struct {
	DB      *database.DBinstanceStruct
	Storage StorageClient
	log     *zap.Logger
}

// NewFileStore creates a new instance of FileStore, storage may be nil
func NewFileStore(db *database.DBinstanceStruct, storage StorageClient, log *zap.Logger) *FileStore {
	return &FileStore{
		DB:      db,
		Storage: storage,
		log:     logger.OrNop(log),
	}
}

// Store persist obj and return its id
func (s *FileStore) Store(ctx context.Context, obj Object, ownerID uuid.UUID) (uuid.UUID, error) {
	file := model.File{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		FileName:    obj.FileName,
		ContentType: obj.ContentType,
		Extension:   strings.ToLower(filepath.Ext(obj.FileName)),
		Size:        int64(len(obj.Data)),
	}

	if err := s.persistFileData(ctx, &file, obj.Data); err != nil {
		return uuid.Nil, apperror.Internal("failed to store file", err)
	}

	if err := s.DB.WithContext(ctx).Create(&file).Error; err != nil {
		if file.StorageObjectName != nil {
			s.deleteRemote(ctx, *file.StorageObjectName)
		}
		return uuid.Nil, database.TranslateError(err, "file not found")
	}

	return file.ID, nil
}

// Fetch return blob with its bytes, NotFound when id is unknown
func (s *FileStore) Fetch(ctx context.Context, id uuid.UUID) (*Blob, error) {
	var file model.File
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		return nil, database.TranslateError(err, "file not found")
	}

	data := file.Content
	if file.StorageObjectName != nil {
		if s.Storage == nil {
			return nil, apperror.Internal("cloud storage is disabled while the requested file is stored remotely", nil)
		}
		reader, _, err := s.Storage.DownloadFile(ctx, *file.StorageObjectName)
		if err != nil {
			return nil, apperror.Internal("failed to download file from storage", err)
		}
		defer func() {
			if err := reader.Close(); err != nil {
				s.log.Warn("failed to close storage reader", zap.Error(err))
			}
		}()
		if data, err = io.ReadAll(reader); err != nil {
			return nil, apperror.Internal("failed to read file from storage", err)
		}
	}

	return &Blob{
		ID:      file.ID,
		OwnerID: file.OwnerID,
		Object: Object{
			FileName:    file.FileName,
			ContentType: file.ContentType,
			Data:        data,
		},
	}, nil
}

// Delete remove blob. Unknown id is not an error.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	var file model.File
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return apperror.Internal("failed to look up file", err)
	}

	if err := s.DB.WithContext(ctx).Delete(&model.File{}, "id = ?", id).Error; err != nil {
		return apperror.Internal("failed to delete file", err)
	}

	if file.StorageObjectName != nil {
		s.deleteRemote(ctx, *file.StorageObjectName)
	}
	return nil
}

func (s *FileStore) deleteRemote(ctx context.Context, objectName string) {
	if s.Storage == nil {
		return
	}
	if err := s.Storage.DeleteFile(ctx, objectName); err != nil {
		s.log.Warn("failed to delete object from storage", zap.String("object", objectName), zap.Error(err))
	}
}

func (s *FileStore) persistFileData(ctx context.Context, file *model.File, data []byte) error {
	if s.Storage == nil {
		file.Content = data
		file.StorageObjectName = nil
		return nil
	}

	objectName := fmt.Sprintf("%s/%s%s", objectPrefix, file.ID.String(), file.Extension)
	if err := s.Storage.UploadFile(ctx, objectName, bytes.NewReader(data)); err != nil {
		return err
	}

	file.Content = nil
	file.StorageObjectName = &objectName
	return nil
}
