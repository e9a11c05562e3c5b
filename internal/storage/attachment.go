package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/relaychat/relaychat-backend/internal/metrics"
)

// Allowed types: images are jpeg/jpg/png only; documents are PDF, Word and
// Excel (legacy and OOXML).
var allowedImageKinds = map[string]struct{}{
	"jpeg": {},
	"jpg":  {},
	"png":  {},
}

var allowedDocExts = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
}

var allowedDocMimes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
}

var dataURLRe = regexp.MustCompile(`^data:([^;]+);base64,(.*)$`)

// oleHeader is the compound-file signature of legacy Office formats.
var oleHeader = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

const (
	imagesDir = "uploads/images"
	filesDir  = "uploads/files"
)

// Saved is the stable reference returned for a stored attachment.
type Saved struct {
	// Path is relative, forward-slash normalized, under uploads/images or
	// uploads/files.
	Path string
	Size int64
}

// Mirror replicates stored attachments to a secondary backend, best-effort.
type Mirror interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// AttachmentStore validates, deduplicates and durably stores inbound
// attachments under a local root. Content is addressed by the SHA-256 digest
// of the raw bytes plus the normalized extension; identical content is never
// written twice.
type AttachmentStore struct {
	root     string
	maxBytes int64
	mirror   Mirror
}

func NewAttachmentStore(root string, maxBytes int64) (*AttachmentStore, error) {
	for _, dir := range []string{imagesDir, filesDir} {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			return nil, err
		}
	}
	return &AttachmentStore{root: root, maxBytes: maxBytes}, nil
}

// SetMirror attaches an optional secondary backend. Mirror failures are
// logged and never affect the primary write.
func (s *AttachmentStore) SetMirror(m Mirror) {
	s.mirror = m
}

// Save decodes an inline payload (data URL or bare base64), validates it and
// writes it once. Errors are human-readable reasons suitable for returning to
// the uploader verbatim.
func (s *AttachmentStore) Save(payload string, originalFilename string) (Saved, error) {
	mime := ""
	data := payload
	if strings.HasPrefix(payload, "data:") {
		m := dataURLRe.FindStringSubmatch(payload)
		if m == nil {
			return Saved{}, fmt.Errorf("invalid data URL")
		}
		mime = strings.ToLower(m[1])
		data = m[2]
	}

	fileBytes, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Saved{}, fmt.Errorf("invalid file data")
	}

	if int64(len(fileBytes)) > s.maxBytes {
		return Saved{}, fmt.Errorf("file size exceeds %gMB", float64(s.maxBytes)/(1024*1024))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))

	// Image if the declared type says so or the bytes sniff as an image.
	sniffed := sniffImageKind(fileBytes)
	isImage := sniffed != "" || strings.HasPrefix(mime, "image/")

	var relDir string
	if isImage {
		kind := sniffed
		if kind == "" && mime != "" {
			kind = mime[strings.LastIndex(mime, "/")+1:]
		}
		if kind == "jpg" {
			kind = "jpeg"
		}
		if _, ok := allowedImageKinds[kind]; !ok {
			return Saved{}, fmt.Errorf("invalid image format. Allowed: JPEG, PNG")
		}
		if kind == "jpeg" {
			ext = "jpg"
		} else {
			ext = "png"
		}
		relDir = imagesDir
	} else {
		_, validByMime := allowedDocMimes[mime]
		_, validByExt := allowedDocExts[ext]
		if !validByMime && !validByExt {
			return Saved{}, fmt.Errorf("unsupported file type. Allowed: PDF, Word, Excel")
		}

		// Magic-byte checks to reduce extension spoofing.
		switch ext {
		case "pdf":
			if !bytes.HasPrefix(fileBytes, []byte("%PDF")) {
				return Saved{}, fmt.Errorf("invalid PDF file")
			}
		case "docx", "xlsx":
			if !bytes.HasPrefix(fileBytes, []byte("PK")) {
				return Saved{}, fmt.Errorf("invalid Office file")
			}
		case "doc", "xls":
			if !bytes.HasPrefix(fileBytes, oleHeader) {
				return Saved{}, fmt.Errorf("invalid legacy Office file")
			}
		}
		relDir = filesDir
	}

	digest := sha256.Sum256(fileBytes)
	name := hex.EncodeToString(digest[:])
	if ext != "" {
		name = name + "." + ext
	}

	category := "file"
	if relDir == imagesDir {
		category = "image"
	}

	diskPath := filepath.Join(s.root, filepath.FromSlash(relDir), name)
	if _, err := os.Stat(diskPath); os.IsNotExist(err) {
		// Two first-writers of identical content may race here; both write
		// the same bytes, so either outcome leaves the correct file.
		if err := os.WriteFile(diskPath, fileBytes, 0o644); err != nil {
			return Saved{}, fmt.Errorf("error processing file: %v", err)
		}
		metrics.AttachmentsStored.WithLabelValues(category, "written").Inc()
	} else {
		metrics.AttachmentsStored.WithLabelValues(category, "deduplicated").Inc()
	}

	st, err := os.Stat(diskPath)
	if err != nil {
		return Saved{}, fmt.Errorf("failed to save file")
	}

	relPath := relDir + "/" + name
	if s.mirror != nil {
		contentType := mime
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if err := s.mirror.Put(context.Background(), relPath, fileBytes, contentType); err != nil {
			log.Printf("attachment mirror failed for %s: %v", relPath, err)
		}
	}

	return Saved{Path: relPath, Size: st.Size()}, nil
}

// DiskPath resolves a stored relative path back to its on-disk location,
// refusing traversal outside the root.
func (s *AttachmentStore) DiskPath(relPath string) (string, error) {
	relPath = strings.TrimPrefix(strings.ReplaceAll(relPath, "\\", "/"), "/")
	if strings.Contains(relPath, "..") {
		return "", fmt.Errorf("invalid path")
	}
	if !strings.HasPrefix(relPath, imagesDir+"/") && !strings.HasPrefix(relPath, filesDir+"/") {
		return "", fmt.Errorf("invalid path")
	}
	return filepath.Join(s.root, filepath.FromSlash(relPath)), nil
}

// sniffImageKind identifies common image formats by signature. Formats other
// than jpeg/png are still classified as images so they get rejected as
// unsupported images rather than treated as documents.
func sniffImageKind(b []byte) string {
	if len(b) < 12 {
		return ""
	}
	switch {
	case b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF:
		return "jpeg"
	case bytes.HasPrefix(b, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return "png"
	case bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a")):
		return "gif"
	case bytes.HasPrefix(b, []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP")):
		return "webp"
	case bytes.HasPrefix(b, []byte("BM")):
		return "bmp"
	case bytes.HasPrefix(b, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(b, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return "tiff"
	}
	return ""
}
