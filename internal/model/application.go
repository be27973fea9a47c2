package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Application status along the screening pipeline
const (
	StatusSubmitted          = "SUBMITTED"
	StatusAnalyzing          = "ANALYZING"
	StatusReadyForTest       = "READY_FOR_TEST"
	StatusBelowThreshold     = "BELOW_THRESHOLD"
	StatusAnalysisError      = "ANALYSIS_ERROR"
	StatusTestSubmitted      = "TEST_SUBMITTED"
	StatusPendingReview      = "PENDING_REVIEW"
	StatusTestBelowThreshold = "TEST_BELOW_THRESHOLD"
	StatusUnderReview        = "UNDER_REVIEW"
	StatusShortlisted        = "SHORTLISTED"
	StatusRejected           = "REJECTED"
	StatusHired              = "HIRED"
)

// RecruiterStatuses can only be set by the recruiter who own the job post
var RecruiterStatuses = []string{
	StatusUnderReview,
	StatusShortlisted,
	StatusRejected,
	StatusHired,
}

// QualifiedStatuses are statuses of application that passed both gate
var QualifiedStatuses = []string{
	StatusPendingReview,
	StatusUnderReview,
	StatusShortlisted,
	StatusRejected,
	StatusHired,
}

// Application represents one candidate's pursuit of one job post
type Application struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	JobID   uint    `gorm:"not null;uniqueIndex:idx_application_job_candidate" json:"job_id"`
	JobPost JobPost `gorm:"foreignKey:JobID;references:ID" json:"-"`

	CandidateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_job_candidate;index" json:"candidate_id"`
	Candidate   User      `gorm:"foreignKey:CandidateID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	CoverLetter    *string   `gorm:"type:text" json:"cover_letter,omitempty"`
	ResumeBlobID   uuid.UUID `gorm:"type:uuid" json:"resume_blob_id"`
	ResumeFileName string    `gorm:"type:text" json:"resume_file_name"`

	TestScore  *int `json:"test_score"`
	TestPassed bool `gorm:"default:false" json:"test_passed"`

	ExternalScore     *int           `json:"external_score"`
	ExternalSummary   *string        `gorm:"type:text" json:"external_summary,omitempty"`
	Strengths         pq.StringArray `gorm:"type:text[]" json:"strengths,omitempty"`
	MissingSkills     pq.StringArray `gorm:"type:text[]" json:"missing_skills,omitempty"`
	Suggestions       pq.StringArray `gorm:"type:text[]" json:"suggestions,omitempty"`
	AnalysisError     *string        `gorm:"type:text" json:"analysis_error,omitempty"`
	AnalysisCompleted bool           `gorm:"default:false" json:"analysis_completed"`

	Status    string    `gorm:"type:text;not null;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Snapshot taken at creation and never refreshed
	JobTitle       string `gorm:"type:text" json:"job_title"`
	CompanyName    string `gorm:"type:text" json:"company_name"`
	CandidateName  string `gorm:"type:text" json:"candidate_name"`
	CandidateEmail string `gorm:"type:text" json:"candidate_email"`
}

// AnalysisResult is the outcome of scoring a resume without creating an application
type AnalysisResult struct {
	JobID         uint     `json:"job_id"`
	Score         int      `json:"score"`
	Summary       *string  `json:"summary,omitempty"`
	Strengths     []string `json:"strengths,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`
	Suggestions   []string `json:"suggestions,omitempty"`
	Threshold     *int     `json:"threshold"`
	WouldQualify  bool     `json:"would_qualify"`
}
