package screening

import (
	"path/filepath"
	"strings"

	"github.com/Nishanth-cyber/Job-search/internal/apperror"
	"github.com/Nishanth-cyber/Job-search/internal/blob"
)

// MaxResumeBytes is the largest resume accepted
const MaxResumeBytes = 10 << 20

var supportedResumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// ValidateResume check size and type of an uploaded resume and fill in content type from extension when missing
func ValidateResume(obj *blob.Object) error {
	if obj == nil || len(obj.Data) == 0 {
		return apperror.Validation("Resume file is empty")
	}
	if len(obj.Data) > MaxResumeBytes {
		return apperror.Validation("Resume file must not exceed 10MB")
	}

	ext := strings.ToLower(filepath.Ext(obj.FileName))
	contentType, ok := supportedResumeTypes[ext]
	if !ok {
		return apperror.Validation("Unsupported file type. Please upload PDF, DOC, DOCX, or TXT files.")
	}
	if obj.ContentType == "" || obj.ContentType == "application/octet-stream" {
		obj.ContentType = contentType
	}
	return nil
}
