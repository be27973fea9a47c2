package screening

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
	"github.com/Nishanth-cyber/Job-search/internal/model"
)

type memRepo struct {
	mu     sync.Mutex
	nextID uint
	apps   map[uint]model.Application
	jobs   map[uint]*model.JobPost
	users  map[uuid.UUID]*model.User

	// raceStatus, when set, is written to the application right before RecordTestResult runs
	raceStatus string
	// hireBeforeDelete mark the application HIRED right before DeleteUnlessHired runs
	hireBeforeDelete bool
	saveErr          error
	deleteErr        error
}

func newMemRepo() *memRepo {
	return &memRepo{
		apps:  map[uint]model.Application{},
		jobs:  map[uint]*model.JobPost{},
		users: map[uuid.UUID]*model.User{},
	}
}

func (r *memRepo) GetJob(_ context.Context, id uint) (*model.JobPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, apperror.NotFound("Job post not found")
	}
	cp := *job
	return &cp, nil
}

func (r *memRepo) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	cp := *user
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == app.JobID && a.CandidateID == app.CandidateID {
			return apperror.Conflict("You have already applied for this job")
		}
	}
	r.nextID++
	app.ID = r.nextID
	app.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Millisecond)
	r.apps[app.ID] = *app
	return nil
}

func (r *memRepo) SaveAnalysis(_ context.Context, app *model.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.apps[app.ID]
	if !ok {
		return apperror.NotFound("Application not found")
	}
	stored.ExternalScore = app.ExternalScore
	stored.ExternalSummary = app.ExternalSummary
	stored.Strengths = app.Strengths
	stored.MissingSkills = app.MissingSkills
	stored.Suggestions = app.Suggestions
	stored.AnalysisError = app.AnalysisError
	stored.AnalysisCompleted = app.AnalysisCompleted
	stored.Status = app.Status
	r.apps[app.ID] = stored
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uint) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, apperror.NotFound("Application not found")
	}
	return &app, nil
}

func (r *memRepo) GetByJobAndCandidate(_ context.Context, jobID uint, candidateID uuid.UUID) (*model.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.JobID == jobID && a.CandidateID == candidateID {
			app := a
			return &app, nil
		}
	}
	return nil, apperror.NotFound("Application not found")
}

func (r *memRepo) RecordTestResult(_ context.Context, app *model.Application, res TestResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.apps[app.ID]
	if r.raceStatus != "" {
		stored.Status = r.raceStatus
		r.apps[app.ID] = stored
	}
	if stored.Status != model.StatusReadyForTest {
		return false, nil
	}
	score := res.Score
	stored.TestScore = &score
	stored.TestPassed = res.Passed
	stored.Status = res.Status
	r.apps[app.ID] = stored
	if res.Status == model.StatusPendingReview {
		r.jobs[stored.JobID].ApplicationCount++
	}
	return true, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return apperror.NotFound("Application not found")
	}
	app.Status = status
	r.apps[id] = app
	return nil
}

func (r *memRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.apps, id)
	return nil
}

func (r *memRepo) DeleteUnlessHired(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	app, ok := r.apps[id]
	if !ok {
		return false, nil
	}
	if r.hireBeforeDelete {
		app.Status = model.StatusHired
		r.apps[id] = app
	}
	if app.Status == model.StatusHired {
		return false, nil
	}
	delete(r.apps, id)
	return true, nil
}

func (r *memRepo) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]model.Application, error) {
	return r.list(func(a model.Application) bool { return a.CandidateID == candidateID }), nil
}

func (r *memRepo) ListByJob(_ context.Context, jobID uint, statuses []string) ([]model.Application, error) {
	return r.list(func(a model.Application) bool {
		return a.JobID == jobID && (len(statuses) == 0 || slices.Contains(statuses, a.Status))
	}), nil
}

func (r *memRepo) list(keep func(model.Application) bool) []model.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Application{}
	for _, a := range r.apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type memBlobStore struct {
	mu        sync.Mutex
	blobs     map[uuid.UUID]blob.Blob
	stored    int
	deleted   []uuid.UUID
	storeErr  error
	deleteErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[uuid.UUID]blob.Blob{}}
}

func (s *memBlobStore) Store(_ context.Context, obj blob.Object, ownerID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storeErr != nil {
		return uuid.Nil, s.storeErr
	}
	id := uuid.New()
	s.blobs[id] = blob.Blob{ID: id, OwnerID: ownerID, Object: obj}
	s.stored++
	return id, nil
}

func (s *memBlobStore) Fetch(_ context.Context, id uuid.UUID) (*blob.Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, apperror.NotFound("file not found")
	}
	return &b, nil
}

func (s *memBlobStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, id)
	return nil
}

func (s *memBlobStore) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[id]
	return ok
}

func (s *memBlobStore) deletedIDs() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uuid.UUID(nil), s.deleted...)
}

var errScorerDown = errors.New("scorer unreachable")
