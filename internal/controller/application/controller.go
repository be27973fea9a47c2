// Package application provides HTTP handlers for job application operations.
package application

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/screening"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	Pipeline *screening.Pipeline
	log      *zap.Logger
}

// NewApplicationController creates a new instance of ApplicationController
func NewApplicationController(pipeline *screening.Pipeline, log *zap.Logger) *ApplicationController {
	return &ApplicationController{
		Pipeline: pipeline,
		log:      logger.OrNop(log),
	}
}

// TestScoreRequest is body of skills test submission
type TestScoreRequest struct {
	JobID     uint `json:"job_id" binding:"required"`
	TestScore *int `json:"test_score"`
}

// StatusRequest is body of recruiter status update
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SubmitHandler creates an application and screens the resume before responding.
// @Summary Apply to a job post
// @Description Only job seeker can access this endpoint. Resume is optional when profile resume exists.
// @Tags Application
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id formData integer true "ID of job post"
// @Param resume formData file false "Resume file (.pdf, .doc, .docx, .txt)"
// @Param cover_letter formData string false "Cover letter"
// @Success 201 {object} model.Application "Application created and analysed"
// @Failure 400 {object} utilities.ErrorResponse "Invalid form, unsupported file or missing resume"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as job seeker"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [post]
func (ac *ApplicationController) SubmitHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	jobID, err := formJobID(c)
	if err != nil {
		ac.respondFormError(c, err)
		return
	}

	resume, err := readResume(c)
	if err != nil {
		ac.respondFormError(c, err)
		return
	}

	in := screening.SubmitInput{JobID: jobID, Resume: resume}
	if cover := strings.TrimSpace(c.PostForm("cover_letter")); cover != "" {
		in.CoverLetter = &cover
	}

	app, err := ac.Pipeline.Submit(c.Request.Context(), identity, in)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// PreviewHandler scores a resume against a job post without applying.
// @Summary Preview resume analysis
// @Description Only job seeker can access this endpoint. Nothing is stored.
// @Tags Application
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job_id formData integer true "ID of job post"
// @Param resume formData file false "Resume file (.pdf, .doc, .docx, .txt)"
// @Success 200 {object} model.AnalysisResult "Analysis result"
// @Failure 400 {object} utilities.ErrorResponse "Invalid form, unsupported file or missing resume"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as job seeker"
// @Failure 502 {object} utilities.ErrorResponse "Scoring service failed"
// @Router /applications/preview [post]
func (ac *ApplicationController) PreviewHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	jobID, err := formJobID(c)
	if err != nil {
		ac.respondFormError(c, err)
		return
	}

	resume, err := readResume(c)
	if err != nil {
		ac.respondFormError(c, err)
		return
	}

	result, err := ac.Pipeline.PreviewAnalysis(c.Request.Context(), identity, jobID, resume)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitTestHandler records the skills test score of caller's application.
// @Summary Submit skills test score
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param body body TestScoreRequest true "Job id and test score"
// @Success 200 {object} model.Application "Test score recorded"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or score"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Application is not waiting for a test"
// @Router /applications/test [post]
func (ac *ApplicationController) SubmitTestHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	var req TestScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	app, err := ac.Pipeline.SubmitTestScore(c.Request.Context(), identity, req.JobID, req.TestScore)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// MyApplicationsHandler lists applications of the calling job seeker, newest first.
// @Summary List my applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {array} model.Application
// @Router /applications/me [get]
func (ac *ApplicationController) MyApplicationsHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	apps, err := ac.Pipeline.ListForCandidate(c.Request.Context(), identity)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

// GetApplicationHandler returns one application visible to the caller.
// @Summary Get application by ID
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of application"
// @Success 200 {object} model.Application
// @Failure 403 {object} utilities.ErrorResponse "Not the candidate or job owner"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (ac *ApplicationController) GetApplicationHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	app, err := ac.Pipeline.GetByID(c.Request.Context(), identity, id)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// WithdrawHandler deletes the caller's application.
// @Summary Withdraw application
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of application"
// @Success 200 {object} utilities.MessageResponse "Application withdrawn"
// @Failure 403 {object} utilities.ErrorResponse "Not your application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Application already accepted"
// @Router /applications/{id} [delete]
func (ac *ApplicationController) WithdrawHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	if err := ac.Pipeline.Withdraw(c.Request.Context(), identity, id); err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Application withdrawn"})
}

// UpdateStatusHandler lets the job owner move an application to a review status.
// @Summary Update application status
// @Description Only recruiter that own the job post can access this endpoint
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of application"
// @Param body body StatusRequest true "One of UNDER_REVIEW, SHORTLISTED, REJECTED, HIRED"
// @Success 200 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 403 {object} utilities.ErrorResponse "Not the job owner"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Router /applications/{id}/status [patch]
func (ac *ApplicationController) UpdateStatusHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	app, err := ac.Pipeline.UpdateStatus(c.Request.Context(), identity, id, strings.ToUpper(strings.TrimSpace(req.Status)))
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// JobApplicationsHandler lists applications of a job post for its owner.
// @Summary List applications of a job post
// @Description Only recruiter that own the job post or admin can access this endpoint
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of job post"
// @Param qualified query boolean false "Only applications that passed both screening gates"
// @Success 200 {array} model.Application
// @Failure 403 {object} utilities.ErrorResponse "Not the job owner"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Router /jobpost/{id}/applications [get]
func (ac *ApplicationController) JobApplicationsHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	jobID, err := pathID(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	list := ac.Pipeline.ListForJob
	if strings.EqualFold(c.Query("qualified"), "true") {
		list = ac.Pipeline.ListQualifiedForJob
	}

	apps, err := list(c.Request.Context(), identity, jobID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Invalid id")
	}
	return uint(id), nil
}

func formJobID(c *gin.Context) (uint, error) {
	raw := c.PostForm("job_id")
	if raw == "" {
		// ParseMultipartForm error surface here, e.g. body over size limit
		if _, err := c.MultipartForm(); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return 0, err
		}
		return 0, apperror.Validation("job_id is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("job_id must be a positive integer")
	}
	return uint(id), nil
}

// readResume return nil when no resume part was sent
func readResume(c *gin.Context) (*blob.Object, error) {
	fileHeader, err := c.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fileHeader.Size > screening.MaxResumeBytes {
		return nil, apperror.Validation("Resume file must not exceed 10MB")
	}

	return readFileHeader(fileHeader)
}

func readFileHeader(fileHeader *multipart.FileHeader) (*blob.Object, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.Internal("Cannot open file", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.Internal("Cannot read file", err)
	}

	return &blob.Object{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (ac *ApplicationController) respondFormError(c *gin.Context, err error) {
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		ac.log.Debug("upload rejected by size limit", zap.Int64("limit", maxBytesError.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: fmt.Sprintf("Request body is larger than %d bytes", maxBytesError.Limit),
		})
		return
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
		Error: fmt.Sprintf("Invalid form: %s", err.Error()),
	})
}
