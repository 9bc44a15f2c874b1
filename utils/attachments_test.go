package utils

import "testing"

func TestAllowedAttachmentType(t *testing.T) {
	allowed := []string{
		"image/png",
		"image/jpeg",
		"audio/mpeg",
		"audio/ogg",
		"application/pdf",
		"IMAGE/PNG",
		" application/pdf ",
	}
	for _, mt := range allowed {
		if !AllowedAttachmentType(mt) {
			t.Errorf("expected %q to be allowed", mt)
		}
	}

	denied := []string{
		"video/mp4",
		"application/zip",
		"application/octet-stream",
		"text/html",
		"",
		"imagepng",
	}
	for _, mt := range denied {
		if AllowedAttachmentType(mt) {
			t.Errorf("expected %q to be denied", mt)
		}
	}
}
