package screening

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/database"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

// JobLookup read job posts the pipeline screens against
type JobLookup interface {
	GetJob(ctx context.Context, id uint) (*model.JobPost, error)
}

// CandidateLookup read candidate accounts
type CandidateLookup interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// TestResult is the outcome of the skills test written in one step
type TestResult struct {
	Score  int
	Passed bool
	Status string
}

// ApplicationRepository persist applications. Missing rows are NotFound,
// a second application for the same job and candidate is Conflict.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	SaveAnalysis(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id uint) (*model.Application, error)
	GetByJobAndCandidate(ctx context.Context, jobID uint, candidateID uuid.UUID) (*model.Application, error)
	// RecordTestResult apply res only while the application is READY_FOR_TEST and
	// increment the job counter in the same transaction when res.Status is PENDING_REVIEW.
	// It report false when the application left READY_FOR_TEST meanwhile.
	RecordTestResult(ctx context.Context, app *model.Application, res TestResult) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	// DeleteUnlessHired remove the application in one statement unless it is HIRED.
	// It report false when nothing was removed.
	DeleteUnlessHired(ctx context.Context, id uint) (bool, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Application, error)
	ListByJob(ctx context.Context, jobID uint, statuses []string) ([]model.Application, error)
}

// GormRepository implement every lookup of the pipeline on top of gorm
type GormRepository struct {
	DB *database.DBinstanceStruct
}

// NewGormRepository creates a new instance of GormRepository
func NewGormRepository(db *database.DBinstanceStruct) *GormRepository {
	return &GormRepository{DB: db}
}

// GetJob implements JobLookup
func (r *GormRepository) GetJob(ctx context.Context, id uint) (*model.JobPost, error) {
	var job model.JobPost
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, database.TranslateError(err, "Job post not found")
	}
	return &job, nil
}

// GetUser implements CandidateLookup
func (r *GormRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, database.TranslateError(err, "User not found")
	}
	return &user, nil
}

// Create implements ApplicationRepository
func (r *GormRepository) Create(ctx context.Context, app *model.Application) error {
	err := r.DB.WithContext(ctx).Omit("JobPost", "Candidate").Create(app).Error
	if database.IsUniqueViolation(err) {
		return apperror.Conflict("You have already applied for this job")
	}
	return database.TranslateError(err, "Application not found")
}

// SaveAnalysis implements ApplicationRepository
func (r *GormRepository) SaveAnalysis(ctx context.Context, app *model.Application) error {
	err := r.DB.WithContext(ctx).Model(&model.Application{}).Where("id = ?", app.ID).
		Select("ExternalScore", "ExternalSummary", "Strengths", "MissingSkills", "Suggestions",
			"AnalysisError", "AnalysisCompleted", "Status").
		Updates(app).Error
	return database.TranslateError(err, "Application not found")
}

// GetByID implements ApplicationRepository
func (r *GormRepository) GetByID(ctx context.Context, id uint) (*model.Application, error) {
	var app model.Application
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, database.TranslateError(err, "Application not found")
	}
	return &app, nil
}

// GetByJobAndCandidate implements ApplicationRepository
func (r *GormRepository) GetByJobAndCandidate(ctx context.Context, jobID uint, candidateID uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.DB.WithContext(ctx).Where("job_id = ? AND candidate_id = ?", jobID, candidateID).First(&app).Error
	if err != nil {
		return nil, database.TranslateError(err, "Application not found")
	}
	return &app, nil
}

// RecordTestResult implements ApplicationRepository
func (r *GormRepository) RecordTestResult(ctx context.Context, app *model.Application, res TestResult) (bool, error) {
	applied := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Application{}).
			Where("id = ? AND status = ?", app.ID, model.StatusReadyForTest).
			Updates(map[string]interface{}{
				"test_score":  res.Score,
				"test_passed": res.Passed,
				"status":      res.Status,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		applied = true

		if res.Status != model.StatusPendingReview {
			return nil
		}
		return tx.Model(&model.JobPost{}).Where("id = ?", app.JobID).
			UpdateColumn("application_count", gorm.Expr("application_count + ?", 1)).Error
	})
	if err != nil {
		return false, apperror.Internal("failed to record test result", err)
	}
	return applied, nil
}

// UpdateStatus implements ApplicationRepository
func (r *GormRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.DB.WithContext(ctx).Model(&model.Application{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return apperror.Internal("failed to update application status", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Application not found")
	}
	return nil
}

// Delete implements ApplicationRepository
func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	if err := r.DB.WithContext(ctx).Delete(&model.Application{}, id).Error; err != nil {
		return apperror.Internal("failed to delete application", err)
	}
	return nil
}

// DeleteUnlessHired implements ApplicationRepository
func (r *GormRepository) DeleteUnlessHired(ctx context.Context, id uint) (bool, error) {
	result := r.DB.WithContext(ctx).Where("id = ? AND status <> ?", id, model.StatusHired).Delete(&model.Application{})
	if result.Error != nil {
		return false, apperror.Internal("failed to delete application", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListByCandidate implements ApplicationRepository, newest first
func (r *GormRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.Application, error) {
	apps := []model.Application{}
	err := r.DB.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("created_at DESC").Find(&apps).Error
	if err != nil {
		return nil, apperror.Internal("failed to list applications", err)
	}
	return apps, nil
}

// ListByJob implements ApplicationRepository. Empty statuses mean every status.
func (r *GormRepository) ListByJob(ctx context.Context, jobID uint, statuses []string) ([]model.Application, error) {
	apps := []model.Application{}
	query := r.DB.WithContext(ctx).Where("job_id = ?", jobID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, apperror.Internal("failed to list applications", err)
	}
	return apps, nil
}
