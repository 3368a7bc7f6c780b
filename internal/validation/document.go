package validation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vkarpovich/docvault/internal/models"
)

// AllowedExtensions is the set of upload file extensions accepted by
// the system, matched case-insensitively against the original filename.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

const (
	// MaxNameLen maximum length of a document display name
	MaxNameLen = 200
	// MaxPurposeLen maximum length of a document purpose
	MaxPurposeLen = 200
)

// DocumentFields holds the user-supplied metadata for an upload or edit.
type DocumentFields struct {
	Name       string
	Purpose    string
	DateSigned string // YYYY-MM-DD
}

// ValidateDocumentFields checks that all required metadata fields are
// present (after trimming) and that the signed date parses as a strict
// ISO calendar date. Returns the parsed date on success.
func ValidateDocumentFields(f DocumentFields) (time.Time, error) {
	name := strings.TrimSpace(f.Name)
	purpose := strings.TrimSpace(f.Purpose)

	if name == "" {
		return time.Time{}, fmt.Errorf("name is required")
	}
	if len(name) > MaxNameLen {
		return time.Time{}, fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}
	if purpose == "" {
		return time.Time{}, fmt.Errorf("purpose is required")
	}
	if len(purpose) > MaxPurposeLen {
		return time.Time{}, fmt.Errorf("purpose must not exceed %d characters", MaxPurposeLen)
	}
	if f.DateSigned == "" {
		return time.Time{}, fmt.Errorf("date_signed is required")
	}

	date, err := time.Parse(models.DateFormat, f.DateSigned)
	if err != nil {
		return time.Time{}, fmt.Errorf("date_signed must be a valid YYYY-MM-DD date")
	}

	return date, nil
}

// ValidateExtension checks that the original upload filename carries
// one of the allowed extensions. The check runs before any file is
// written to disk.
func ValidateExtension(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("invalid file type, only PDF, DOC and DOCX are allowed")
	}

	return nil
}
