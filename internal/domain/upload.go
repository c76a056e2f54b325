package domain

import (
	"path/filepath"
	"strings"
)

// UploadKind tells which record an uploaded file belongs to
type UploadKind string

const (
	UploadResume      UploadKind = "resumes"
	UploadCompanyLogo UploadKind = "logos"
)

var uploadRules = map[UploadKind]struct {
	maxBytes   int64
	extensions []string
}{
	UploadResume:      {maxBytes: 5 << 20, extensions: []string{".pdf"}},
	UploadCompanyLogo: {maxBytes: 2 << 20, extensions: []string{".png", ".jpg", ".jpeg", ".svg", ".webp"}},
}

// AcceptsUpload reports whether a file of this name and size may be stored
// for the kind.
func (k UploadKind) AcceptsUpload(fileName string, size int64) bool {
	rule, ok := uploadRules[k]
	if !ok || size <= 0 || size > rule.maxBytes {
		return false
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, allowed := range rule.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// MaxBytes returns the size limit for the kind.
func (k UploadKind) MaxBytes() int64 {
	return uploadRules[k].maxBytes
}
