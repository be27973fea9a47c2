// Package file provides HTTP handlers for file-related operations.
package file

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/screening"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// FileController handles file related endpoints
type FileController struct {
	DB    *database.DBinstanceStruct
	Blobs blob.Store
	log   *zap.Logger
}

// NewFileController creates a new instance of FileController
func NewFileController(db *database.DBinstanceStruct, blobs blob.Store, log *zap.Logger) *FileController {
	return &FileController{
		DB:    db,
		Blobs: blobs,
		log:   logger.OrNop(log),
	}
}

// UploadResume stores the profile resume of a job seeker. It is used when an application
// is submitted without attachment. The previous profile resume is removed.
// @Summary Upload profile resume
// @Description Only file that smaller than 10 MB with .pdf, .doc, .docx or .txt extension is permitted
// @Tags File
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Upload your resume file"
// @Success 200 {object} model.User "Successfully upload resume"
// @Failure 400 {object} utilities.ErrorResponse "Missing or unsupported file"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as job seeker"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /profile/resume [post]
func (fc *FileController) UploadResume(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}
	ctx := c.Request.Context()

	var user model.User
	if err := fc.DB.WithContext(ctx).Where("id = ?", identity.SubjectID).First(&user).Error; err != nil {
		utilities.RespondError(c, database.TranslateError(err, "User not found"))
		return
	}

	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: fmt.Sprintf("Request body is larger than %d bytes", maxBytesError.Limit),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		utilities.RespondError(c, apperror.Internal("Cannot open file", err))
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			fc.log.Warn("failed to close uploaded file", zap.Error(err))
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		utilities.RespondError(c, apperror.Internal("Cannot read file", err))
		return
	}

	obj := blob.Object{
		FileName:    rawFile.Filename,
		ContentType: rawFile.Header.Get("Content-Type"),
		Data:        fileBytes,
	}
	if err := screening.ValidateResume(&obj); err != nil {
		utilities.RespondError(c, err)
		return
	}

	newID, err := fc.Blobs.Store(ctx, obj, user.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	previous := user.ResumeBlobID
	if err := fc.DB.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"resume_blob_id":   newID,
		"resume_file_name": obj.FileName,
	}).Error; err != nil {
		fc.deleteBlob(c, newID)
		utilities.RespondError(c, apperror.Internal("Failed to update user information", err))
		return
	}
	user.ResumeBlobID = &newID
	user.ResumeFileName = &obj.FileName

	if previous != nil {
		fc.deleteBlob(c, *previous)
	}

	c.JSON(http.StatusOK, user)
}

// GetFile sends a stored file as downloadable attachment. Only its owner or admin may read it.
// @Summary Retrieve dowloadable attachment
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of wanted file"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 400 {object} utilities.ErrorResponse "Invalid file id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of the file"
// @Failure 404 {object} utilities.ErrorResponse "Given file id not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /file/{id} [get]
func (fc *FileController) GetFile(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utilities.RespondError(c, apperror.Validation("Invalid file id"))
		return
	}

	b, err := fc.Blobs.Fetch(c.Request.Context(), id)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if b.OwnerID != identity.SubjectID && !identity.IsAdmin() {
		utilities.RespondError(c, apperror.Forbidden("You are not allowed to access this file"))
		return
	}

	contentType := b.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Writer.Header().Set("Content-Disposition", `attachment; filename="`+utilities.ASCIIFileName(b.FileName)+`"`)
	c.Writer.Header().Set("Content-Type", contentType)
	c.Writer.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(b.Data); err != nil {
		fc.handleWriterError(c, err)
	}
}

func (fc *FileController) handleWriterError(c *gin.Context, err error) {
	fc.log.Warn("failed to send file content", zap.Error(err))
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}

func (fc *FileController) deleteBlob(c *gin.Context, id uuid.UUID) {
	if err := fc.Blobs.Delete(c.Request.Context(), id); err != nil {
		fc.log.Warn("failed to delete replaced resume", zap.String(logger.FieldBlobID, id.String()), zap.Error(err))
	}
}
