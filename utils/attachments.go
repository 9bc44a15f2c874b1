package utils

import "strings"

const (
	// MaxAttachmentSize caps a single uploaded file at 10 MB.
	MaxAttachmentSize = 10 << 20
	// MaxAttachmentsPerMessage caps how many files one message may carry.
	MaxAttachmentsPerMessage = 5
)

// AllowedAttachmentType reports whether the MIME type is on the upload
// allowlist: images, audio and PDF documents.
func AllowedAttachmentType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "audio/") {
		return true
	}
	return mimeType == "application/pdf"
}
