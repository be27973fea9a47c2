// Package jobpost provides HTTP handlers for job post related operations.
package jobpost

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/scorer"
	"github.com/Nishanth-cyber/Job-search/internal/utilities"
)

// JobPostController handles job post related endpoints
type JobPostController struct {
	DB    *database.DBinstanceStruct
	Tests scorer.SkillTest
	log   *zap.Logger
}

// AnswersRequest is body of a skills test answer sheet
type AnswersRequest struct {
	Answers []string `json:"answers" binding:"required,min=1,max=5,dive,max=2000"`
}

// NewJobPostController creates a new instance of JobPostController
func NewJobPostController(db *database.DBinstanceStruct, tests scorer.SkillTest, log *zap.Logger) *JobPostController {
	if tests == nil {
		tests = scorer.HeuristicSkillTest{}
	}
	return &JobPostController{
		DB:    db,
		Tests: tests,
		log:   logger.OrNop(log),
	}
}

// CreateJobPostHandler handles the creation of a new job post by a recruiter.
// @Summary Create job post based on given json structure
// @Description Only recruiter have access to this endpoint. Thresholds are optional, missing threshold let everyone pass.
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param Jobpost body model.EditableJobPostInfo true "Input jobpost information"
// @Success 201 {object} model.JobPost "Successfully create job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job post struct or threshold"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as recruiter"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [post]
func (jc *JobPostController) CreateJobPostHandler(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	// construct job post from request
	jobPost := model.JobPost{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&jobPost.EditableJobPostInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if err := validateJobPost(&jobPost.EditableJobPostInfo); err != nil {
		utilities.RespondError(c, err)
		return
	}

	if jobPost.CompanyName == "" {
		var recruiter model.User
		if err := jc.DB.WithContext(c.Request.Context()).Select("company_name").
			Where("id = ?", identity.SubjectID).First(&recruiter).Error; err != nil {
			utilities.RespondError(c, database.TranslateError(err, "Recruiter not found"))
			return
		}
		jobPost.CompanyName = recruiter.CompanyName
	}

	// save job post
	jobPost.RecruiterID = identity.SubjectID
	jobPost.Active = true
	if err := jc.DB.WithContext(c.Request.Context()).Omit("Recruiter", "Applications").Create(&jobPost).Error; err != nil {
		utilities.RespondError(c, database.TranslateError(err, "Job post not found"))
		return
	}

	jc.log.Info("job post created",
		zap.Uint(logger.FieldJobID, jobPost.ID),
		zap.String(logger.FieldSubject, identity.SubjectID.String()),
	)
	c.JSON(http.StatusCreated, jobPost)
}

// GetPosts fetches active and non-expired job posts that match query.
// @Summary Get open job posts based on query
// @Description Every query are not required
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param search query string false "Search from job post title with substring matching and case insensitive"
// @Param type query string false "Job type field with substring matching and case insensitive"
// @Param skill query string false "Search if required skills contain skill param, case insensitive"
// @Param company query string false "Search from company name with substring matching and case insensitive"
// @Param location query string false "Search from location with substring matching and case insensitive"
// @Param desc query boolean false "Sorting by post time in descending if true, otherwise ascending"
// @Success 200 {array} model.JobPost "Return open job post(s)"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost [get]
func (jc *JobPostController) GetPosts(c *gin.Context) {
	rawSearch := c.Query("search")
	rawJobType := c.Query("type")
	rawSkill := c.Query("skill")
	rawCompany := c.Query("company")
	rawLocation := c.Query("location")
	rawDesc := c.Query("desc")

	posts := []model.JobPost{}

	result := jc.DB.WithContext(c.Request.Context()).
		Where("active = ?", true).
		Where("expiring > ? OR expiring IS NULL", time.Now())

	if rawSearch != "" {
		result = result.Where("title ILIKE ?", "%"+rawSearch+"%")
	}

	if rawJobType != "" {
		result = result.Where("type ILIKE ?", "%"+rawJobType+"%")
	}

	if rawSkill != "" {
		result = result.Where("? ILIKE ANY(required_skills)", rawSkill)
	}

	if rawCompany != "" {
		result = result.Where("company_name ILIKE ?", "%"+rawCompany+"%")
	}

	if rawLocation != "" {
		result = result.Where("location ILIKE ?", "%"+rawLocation+"%")
	}

	err := result.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "post_time"},
		Desc:   strings.ToLower(rawDesc) == "true",
	}).Find(&posts).Error
	if err != nil {
		utilities.RespondError(c, apperror.Internal("Failed to fetch job post", err))
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPostByID fetches a job post by its ID.
// @Summary Get job post by ID
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.JobPost "Return the job post with the specified ID"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id} [get]
func (jc *JobPostController) GetPostByID(c *gin.Context) {
	job, err := jc.findJob(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// DeactivateJobPost stops a job post from accepting applications. Existing applications are kept.
// @Summary Close job post
// @Description Only recruiter that own the post or admin have access to this endpoint
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} model.JobPost "Job post closed"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to close this post"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobpost/{id}/deactivate [patch]
func (jc *JobPostController) DeactivateJobPost(c *gin.Context) {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		utilities.RespondError(c, apperror.Unauthorized("authentication required"))
		return
	}

	job, err := jc.findJob(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	if job.RecruiterID != identity.SubjectID && !identity.IsAdmin() {
		utilities.RespondError(c, apperror.Forbidden("You are not allowed to close this job post"))
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).Model(job).Update("active", false).Error; err != nil {
		utilities.RespondError(c, apperror.Internal("Failed to close job post", err))
		return
	}
	job.Active = false

	jc.log.Info("job post closed",
		zap.Uint(logger.FieldJobID, job.ID),
		zap.String(logger.FieldSubject, identity.SubjectID.String()),
	)
	c.JSON(http.StatusOK, job)
}

// TestQuestionsHandler builds the skills test of an open job post.
// @Summary Get skills test questions of job post
// @Description Questions are written from the job description and required skills. Generic questions are used when generation fails.
// @Tags Jobpost
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} map[string]any "Job id and its five questions"
// @Failure 400 {object} utilities.ErrorResponse "Invalid id or job post closed"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Question generation failed"
// @Router /jobpost/{id}/test-questions [get]
func (jc *JobPostController) TestQuestionsHandler(c *gin.Context) {
	job, err := jc.findOpenJob(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	questions, err := jc.Tests.Questions(c.Request.Context(), skillTestJob(job))
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id":    job.ID,
		"questions": questions,
	})
}

// EvaluateAnswersHandler grades skills test answers of a job post.
// @Summary Evaluate skills test answers
// @Description Only job seeker have access to this endpoint. The score is not stored, submit it through /applications/test.
// @Tags Jobpost
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param Answers body AnswersRequest true "One to five answers"
// @Success 200 {object} map[string]int "Score between 0 and 100"
// @Failure 400 {object} utilities.ErrorResponse "Invalid answers or job post closed"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as job seeker"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Evaluation failed"
// @Router /jobpost/{id}/evaluate-answers [post]
func (jc *JobPostController) EvaluateAnswersHandler(c *gin.Context) {
	var req AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	job, err := jc.findOpenJob(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	score, err := jc.Tests.Evaluate(c.Request.Context(), skillTestJob(job), req.Answers)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	jc.log.Info("skills test evaluated",
		zap.Uint(logger.FieldJobID, job.ID),
		zap.Int("score", score),
	)
	c.JSON(http.StatusOK, gin.H{"score": score})
}

func (jc *JobPostController) findOpenJob(c *gin.Context) (*model.JobPost, error) {
	job, err := jc.findJob(c)
	if err != nil {
		return nil, err
	}
	if !job.Active {
		return nil, apperror.Validation("Job is no longer accepting applications")
	}
	return job, nil
}

func skillTestJob(job *model.JobPost) scorer.TestJob {
	return scorer.TestJob{
		Description: job.DescriptionText(),
		Skills:      job.RequiredSkills,
	}
}

func (jc *JobPostController) findJob(c *gin.Context) (*model.JobPost, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, apperror.Validation("Invalid job post id")
	}

	job := model.JobPost{}
	if err := jc.DB.WithContext(c.Request.Context()).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, database.TranslateError(err, "Job post not found")
	}
	return &job, nil
}

func validateJobPost(info *model.EditableJobPostInfo) error {
	if strings.TrimSpace(info.Title) == "" {
		return apperror.Validation("title is required")
	}
	for name, v := range map[string]*int{
		"min_external_score_for_test": info.MinExternalScoreForTest,
		"min_test_score":              info.MinTestScore,
	} {
		if v != nil && (*v < 0 || *v > 100) {
			return apperror.Validation(fmt.Sprintf("%s must be between 0 and 100", name))
		}
	}
	return nil
}
