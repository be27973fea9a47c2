// Package screening drive an application from resume submission through external scoring and the
// skills test up to recruiter review.
//
// State machine:
//
//	SUBMITTED -> ANALYZING -> READY_FOR_TEST | BELOW_THRESHOLD | ANALYSIS_ERROR
//	READY_FOR_TEST -> TEST_SUBMITTED -> PENDING_REVIEW | TEST_BELOW_THRESHOLD
//	any -> UNDER_REVIEW | SHORTLISTED | REJECTED | HIRED (job owner only)
//
// SUBMITTED and TEST_SUBMITTED are never persisted, the transitions through them happen
// inside a single write.
package screening

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/logger"
	"github.com/Nishanth-cyber/Job-search/internal/model"
	"github.com/Nishanth-cyber/Job-search/internal/scorer"
)

// Pipeline owns the Application lifecycle. Every operation runs synchronously in the caller's request.
type Pipeline struct {
	apps       ApplicationRepository
	jobs       JobLookup
	candidates CandidateLookup
	blobs      blob.Store
	scorer     scorer.Scorer
	log        *zap.Logger
}

// NewPipeline creates a new instance of Pipeline
func NewPipeline(apps ApplicationRepository, jobs JobLookup, candidates CandidateLookup, blobs blob.Store, sc scorer.Scorer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		apps:       apps,
		jobs:       jobs,
		candidates: candidates,
		blobs:      blobs,
		scorer:     sc,
		log:        logger.OrNop(log),
	}
}

// SubmitInput is what a candidate send when applying. Resume nil means use profile resume.
type SubmitInput struct {
	JobID       uint
	Resume      *blob.Object
	CoverLetter *string
}

// Submit create the application and score it before returning
func (p *Pipeline) Submit(ctx context.Context, identity auth.Identity, in SubmitInput) (*model.Application, error) {
	if err := requireRole(identity, model.RoleJobSeeker); err != nil {
		return nil, err
	}

	job, err := p.activeJob(ctx, in.JobID)
	if err != nil {
		return nil, err
	}

	candidate, err := p.candidates.GetUser(ctx, identity.SubjectID)
	if err != nil {
		return nil, err
	}
	if candidate.Role != model.RoleJobSeeker {
		return nil, apperror.Forbidden("Only job seekers can apply for jobs")
	}

	if _, err := p.apps.GetByJobAndCandidate(ctx, job.ID, candidate.ID); err == nil {
		return nil, apperror.Conflict("You have already applied for this job")
	} else if !apperror.Is(err, apperror.CodeNotFound) {
		return nil, err
	}

	resume, err := p.resolveResume(ctx, candidate, in.Resume)
	if err != nil {
		return nil, err
	}

	lease, err := acquireLease(ctx, p.blobs, *resume, candidate.ID, p.log)
	if err != nil {
		return nil, err
	}
	defer lease.Release(ctx)

	app := &model.Application{
		JobID:          job.ID,
		CandidateID:    candidate.ID,
		CoverLetter:    in.CoverLetter,
		ResumeBlobID:   lease.ID,
		ResumeFileName: resume.FileName,
		Status:         model.StatusAnalyzing,
		JobTitle:       job.Title,
		CompanyName:    job.CompanyName,
		CandidateName:  candidate.FullName(),
	}
	if candidate.Email != nil {
		app.CandidateEmail = *candidate.Email
	}
	if err := p.apps.Create(ctx, app); err != nil {
		return nil, err
	}

	log := p.log.With(
		zap.Uint(logger.FieldApplicationID, app.ID),
		zap.Uint(logger.FieldJobID, job.ID),
		zap.String(logger.FieldSubject, candidate.ID.String()),
	)

	result, scoreErr := p.scorer.Score(ctx, scorer.Request{
		Resume:      lease.Object.Data,
		FileName:    lease.Object.FileName,
		ContentType: lease.Object.ContentType,
		JobText:     job.DescriptionText(),
	})
	lease.Release(ctx)

	applyAnalysis(app, job, result, scoreErr)
	if scoreErr != nil {
		log.Warn("resume analysis failed", zap.Error(scoreErr))
	} else {
		log.Info("resume analysed", zap.Int("score", result.Score), zap.String("status", app.Status))
	}

	// the outcome must be stored even when the client already went away
	saveCtx := context.WithoutCancel(ctx)
	if err := p.apps.SaveAnalysis(saveCtx, app); err != nil {
		log.Error("failed to store analysis result", zap.Error(err))
		// an ANALYZING row would block every later submit for this job
		if delErr := p.apps.Delete(saveCtx, app.ID); delErr != nil {
			log.Error("failed to remove unscored application", zap.Error(delErr))
		}
		return nil, err
	}
	return app, nil
}

// applyAnalysis record scorer outcome. Failure is kept on the application instead of returned.
func applyAnalysis(app *model.Application, job *model.JobPost, result *scorer.Result, scoreErr error) {
	app.AnalysisCompleted = true

	if scoreErr != nil {
		msg := apperror.Message(scoreErr)
		app.AnalysisError = &msg
		app.Status = model.StatusAnalysisError
		return
	}

	score := result.Score
	app.ExternalScore = &score
	app.ExternalSummary = result.Summary
	app.Strengths = result.Strengths
	app.MissingSkills = result.MissingSkills
	app.Suggestions = result.Suggestions
	app.AnalysisError = nil

	if meetsThreshold(score, job.MinExternalScoreForTest) {
		app.Status = model.StatusReadyForTest
	} else {
		app.Status = model.StatusBelowThreshold
	}
}

// SubmitTestScore record skills test result of the caller's application to jobID
func (p *Pipeline) SubmitTestScore(ctx context.Context, identity auth.Identity, jobID uint, testScore *int) (*model.Application, error) {
	if err := requireRole(identity, model.RoleJobSeeker); err != nil {
		return nil, err
	}
	if testScore == nil {
		return nil, apperror.Validation("Test score is required")
	}
	if *testScore < 0 || *testScore > 100 {
		return nil, apperror.Validation("Test score must be between 0 and 100")
	}

	app, err := p.apps.GetByJobAndCandidate(ctx, jobID, identity.SubjectID)
	if err != nil {
		return nil, err
	}
	if !app.AnalysisCompleted || app.Status != model.StatusReadyForTest {
		return nil, invalidTransition(app.Status)
	}

	job, err := p.activeJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	res := TestResult{Score: *testScore, Passed: meetsThreshold(*testScore, job.MinTestScore)}
	res.Status = model.StatusTestBelowThreshold
	if res.Passed {
		res.Status = model.StatusPendingReview
	}

	applied, err := p.apps.RecordTestResult(ctx, app, res)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := p.apps.GetByID(ctx, app.ID)
		if err != nil {
			return nil, err
		}
		return nil, invalidTransition(current.Status)
	}

	app.TestScore = &res.Score
	app.TestPassed = res.Passed
	app.Status = res.Status

	p.log.Info("test score recorded",
		zap.Uint(logger.FieldApplicationID, app.ID),
		zap.Uint(logger.FieldJobID, jobID),
		zap.Int("test_score", res.Score),
		zap.String("status", res.Status),
	)
	return app, nil
}

// UpdateStatus let the recruiter who own the job move an application to any recruiter status.
// The source status is not checked, the recruiter has override authority.
func (p *Pipeline) UpdateStatus(ctx context.Context, identity auth.Identity, applicationID uint, status string) (*model.Application, error) {
	if err := requireRole(identity, model.RoleRecruiter); err != nil {
		return nil, err
	}
	if !slices.Contains(model.RecruiterStatuses, status) {
		return nil, apperror.Validation(fmt.Sprintf("Status must be one of %v", model.RecruiterStatuses))
	}

	app, err := p.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	job, err := p.jobs.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != identity.SubjectID {
		return nil, apperror.Forbidden("You can only update applications for your job postings")
	}

	if app.Status != status && (app.Status == model.StatusHired || app.Status == model.StatusRejected) {
		p.log.Warn("recruiter reopened a closed application",
			zap.Uint(logger.FieldApplicationID, app.ID),
			zap.String("from", app.Status),
			zap.String("to", status),
		)
	}

	if err := p.apps.UpdateStatus(ctx, app.ID, status); err != nil {
		return nil, err
	}
	app.Status = status
	return app, nil
}

// Withdraw delete the caller's application unless it was already hired
func (p *Pipeline) Withdraw(ctx context.Context, identity auth.Identity, applicationID uint) error {
	if err := requireRole(identity, model.RoleJobSeeker); err != nil {
		return err
	}

	app, err := p.apps.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if app.CandidateID != identity.SubjectID {
		return apperror.Forbidden("You can only withdraw your own applications")
	}
	if app.Status == model.StatusHired {
		return apperror.Conflict("Cannot withdraw an application that has been accepted")
	}

	deleted, err := p.apps.DeleteUnlessHired(ctx, app.ID)
	if err != nil {
		return err
	}
	if !deleted {
		current, err := p.apps.GetByID(ctx, app.ID)
		if err != nil {
			return err
		}
		return apperror.Conflict(fmt.Sprintf("Cannot withdraw application, current status is %s", current.Status))
	}
	p.log.Info("application withdrawn", zap.Uint(logger.FieldApplicationID, app.ID), zap.String("status", app.Status))
	return nil
}

// PreviewAnalysis score resume against job without touching any application.
// Unlike Submit, scorer failure is returned to the caller.
func (p *Pipeline) PreviewAnalysis(ctx context.Context, identity auth.Identity, jobID uint, resume *blob.Object) (*model.AnalysisResult, error) {
	if err := requireRole(identity, model.RoleJobSeeker); err != nil {
		return nil, err
	}

	job, err := p.activeJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	candidate, err := p.candidates.GetUser(ctx, identity.SubjectID)
	if err != nil {
		return nil, err
	}
	obj, err := p.resolveResume(ctx, candidate, resume)
	if err != nil {
		return nil, err
	}

	lease, err := acquireLease(ctx, p.blobs, *obj, candidate.ID, p.log)
	if err != nil {
		return nil, err
	}
	defer lease.Release(ctx)

	result, err := p.scorer.Score(ctx, scorer.Request{
		Resume:      lease.Object.Data,
		FileName:    lease.Object.FileName,
		ContentType: lease.Object.ContentType,
		JobText:     job.DescriptionText(),
	})
	lease.Release(ctx)
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeInternal {
			err = apperror.NewError(apperror.CodeScorer, "Resume analysis failed", err)
		}
		return nil, err
	}

	return &model.AnalysisResult{
		JobID:         job.ID,
		Score:         result.Score,
		Summary:       result.Summary,
		Strengths:     result.Strengths,
		MissingSkills: result.MissingSkills,
		Suggestions:   result.Suggestions,
		Threshold:     job.MinExternalScoreForTest,
		WouldQualify:  meetsThreshold(result.Score, job.MinExternalScoreForTest),
	}, nil
}

// resolveResume return uploaded resume, or a copy of the candidate's profile resume.
// The copy is what gets leased so the profile resume survives the scoring call.
func (p *Pipeline) resolveResume(ctx context.Context, candidate *model.User, uploaded *blob.Object) (*blob.Object, error) {
	if uploaded != nil {
		if err := ValidateResume(uploaded); err != nil {
			return nil, err
		}
		return uploaded, nil
	}

	if candidate.ResumeBlobID == nil {
		return nil, apperror.NewError(apperror.CodeMissingResume, "Please upload a resume or update your profile with a resume", nil)
	}

	profile, err := p.blobs.Fetch(ctx, *candidate.ResumeBlobID)
	if err != nil {
		if apperror.Is(err, apperror.CodeNotFound) {
			return nil, apperror.NewError(apperror.CodeMissingResume, "Profile resume no longer exists, please upload a resume", err)
		}
		return nil, err
	}

	obj := profile.Object
	if candidate.ResumeFileName != nil && *candidate.ResumeFileName != "" {
		obj.FileName = *candidate.ResumeFileName
	}
	return &obj, nil
}

func (p *Pipeline) activeJob(ctx context.Context, jobID uint) (*model.JobPost, error) {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.Active {
		return nil, apperror.Validation("Job is no longer accepting applications")
	}
	return job, nil
}

func meetsThreshold(score int, threshold *int) bool {
	return threshold == nil || score >= *threshold
}

func requireRole(identity auth.Identity, role string) error {
	if identity.SubjectID == uuid.Nil {
		return apperror.Unauthorized("authentication required")
	}
	if identity.Role != role {
		return apperror.Forbidden("User doesn't have permission to access")
	}
	return nil
}

func invalidTransition(status string) error {
	return apperror.NewError(apperror.CodeInvalidTransition,
		fmt.Sprintf("Test can only be submitted while application is %s, current status is %s", model.StatusReadyForTest, status), nil)
}
