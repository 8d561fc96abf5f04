package security

import (
	"bytes"
	"path/filepath"
	"strings"
)

// FileValidationResult contains the result of upload validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// Magic byte signatures for allowed video types.
// MP4/MOV carry "ftyp" at offset 4, the others sign at offset 0.
type magicSignature struct {
	offset int
	prefix []byte
}

var videoMagicBytes = map[string][]magicSignature{
	".mp4":  {{4, []byte("ftyp")}},
	".m4v":  {{4, []byte("ftyp")}},
	".mov":  {{4, []byte("ftyp")}, {4, []byte("moov")}, {4, []byte("mdat")}},
	".webm": {{0, []byte{0x1A, 0x45, 0xDF, 0xA3}}}, // EBML header
	".avi":  {{0, []byte("RIFF")}},
}

var allowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".avi":  true,
}

// Strict MIME types - DO NOT include application/octet-stream
var strictVideoMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/quicktime":  true,
	"video/webm":       true,
	"video/x-msvideo":  true,
	"video/x-m4v":      true,
}

var imageMagicBytes = map[string][]magicSignature{
	".jpg":  {{0, []byte{0xFF, 0xD8, 0xFF}}},
	".jpeg": {{0, []byte{0xFF, 0xD8, 0xFF}}},
	".png":  {{0, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}}},
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var strictImageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ValidateVideo performs 3-layer validation on an uploaded introduction
// video:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. MIME type whitelist (application/octet-stream REJECTED)
func ValidateVideo(filename string, head []byte, detectedMIME string) FileValidationResult {
	return validate(filename, head, detectedMIME, allowedVideoExtensions, videoMagicBytes, strictVideoMIMETypes)
}

// ValidateImage performs the same 3-layer validation on a profile photo.
func ValidateImage(filename string, head []byte, detectedMIME string) FileValidationResult {
	return validate(filename, head, detectedMIME, allowedImageExtensions, imageMagicBytes, strictImageMIMETypes)
}

func validate(
	filename string,
	head []byte,
	detectedMIME string,
	allowedExt map[string]bool,
	magics map[string][]magicSignature,
	strictMIME map[string]bool,
) FileValidationResult {
	result := FileValidationResult{
		DetectedMIME: detectedMIME,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	// Layer 1: Extension whitelist
	if !allowedExt[ext] {
		result.Error = "file type not allowed: " + ext
		return result
	}

	// Layer 2: Magic bytes must match the claimed extension
	if !matchesMagic(head, magics[ext]) {
		result.Error = "file content does not match extension " + ext
		return result
	}

	// Layer 3: MIME whitelist
	mime := strings.ToLower(strings.TrimSpace(strings.Split(detectedMIME, ";")[0]))
	if !strictMIME[mime] {
		result.Error = "MIME type not allowed: " + mime
		return result
	}

	result.Valid = true
	return result
}

func matchesMagic(head []byte, signatures []magicSignature) bool {
	for _, sig := range signatures {
		end := sig.offset + len(sig.prefix)
		if len(head) >= end && bytes.Equal(head[sig.offset:end], sig.prefix) {
			return true
		}
	}
	return false
}
