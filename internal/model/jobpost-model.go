package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditableJobPostInfo is part of job post that can be set by recruiter
type EditableJobPostInfo struct {
	Title          string         `gorm:"type:text" json:"title" binding:"required"`
	CompanyName    string         `gorm:"type:text" json:"company_name"`
	Desc           string         `gorm:"type:text" json:"desc"`
	Req            string         `gorm:"type:text" json:"req"`
	RequiredSkills pq.StringArray `gorm:"type:text[]" json:"required_skills"`
	Location       string         `gorm:"type:text" json:"location"`
	Type           string         `gorm:"type:text" json:"type"`
	Salary         string         `gorm:"type:text" json:"salary"`
	Expiring       *time.Time     `gorm:"type:timestamp" json:"expiring,omitempty"`

	// Minimum external resume score to unlock the skills test, nil means everyone pass
	MinExternalScoreForTest *int `json:"min_external_score_for_test" binding:"omitempty,min=0,max=100"`
	// Minimum skills test score to reach recruiter review, nil means everyone pass
	MinTestScore *int `json:"min_test_score" binding:"omitempty,min=0,max=100"`
}

// JobPost is gorm model for store job post data in DB
type JobPost struct {
	ID          uint      `gorm:"primaryKey;autoIncrement;->" json:"id"`
	RecruiterID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"recruiter_id"`
	Recruiter   User      `gorm:"foreignKey:RecruiterID;references:ID" json:"-"`
	EditableJobPostInfo
	Active           bool      `gorm:"type:boolean;default:true" json:"active"`
	ApplicationCount int64     `gorm:"default:0" json:"application_count"`
	PostTime         time.Time `gorm:"type:timestamp;default:CURRENT_TIMESTAMP;->" json:"post_time"`

	Applications []Application `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"-"`
}

// DescriptionText build the text that describe the job to the resume scorer
func (j *JobPost) DescriptionText() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(j.Desc))
	if req := strings.TrimSpace(j.Req); req != "" {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Requirements: ")
		b.WriteString(req)
	}
	if len(j.RequiredSkills) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Required skills: ")
		b.WriteString(strings.Join(j.RequiredSkills, ", "))
	}
	return b.String()
}
