package screening

import (
	"context"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/auth"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

// GetByID return application visible to the caller: its candidate, the recruiter who own the job, or admin
func (p *Pipeline) GetByID(ctx context.Context, identity auth.Identity, applicationID uint) (*model.Application, error) {
	app, err := p.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	switch {
	case identity.IsAdmin():
		return app, nil
	case identity.Role == model.RoleJobSeeker && app.CandidateID == identity.SubjectID:
		return app, nil
	case identity.Role == model.RoleRecruiter:
		job, err := p.jobs.GetJob(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if job.RecruiterID == identity.SubjectID {
			return app, nil
		}
	}
	return nil, apperror.Forbidden("You are not allowed to view this application")
}

// ListForCandidate return every application of the calling job seeker
func (p *Pipeline) ListForCandidate(ctx context.Context, identity auth.Identity) ([]model.Application, error) {
	if err := requireRole(identity, model.RoleJobSeeker); err != nil {
		return nil, err
	}
	return p.apps.ListByCandidate(ctx, identity.SubjectID)
}

// ListForJob return every application to the job, including those stopped by a threshold
func (p *Pipeline) ListForJob(ctx context.Context, identity auth.Identity, jobID uint) ([]model.Application, error) {
	if err := p.authorizeJobOwner(ctx, identity, jobID); err != nil {
		return nil, err
	}
	return p.apps.ListByJob(ctx, jobID, nil)
}

// ListQualifiedForJob return only applications that passed both gates
func (p *Pipeline) ListQualifiedForJob(ctx context.Context, identity auth.Identity, jobID uint) ([]model.Application, error) {
	if err := p.authorizeJobOwner(ctx, identity, jobID); err != nil {
		return nil, err
	}
	return p.apps.ListByJob(ctx, jobID, model.QualifiedStatuses)
}

func (p *Pipeline) authorizeJobOwner(ctx context.Context, identity auth.Identity, jobID uint) error {
	job, err := p.jobs.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if identity.IsAdmin() {
		return nil
	}
	if identity.Role != model.RoleRecruiter || job.RecruiterID != identity.SubjectID {
		return apperror.Forbidden("You can only view applications for your job postings")
	}
	return nil
}
