// Package storage turns raw uploads into retrievable URLs.
package storage

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// SavedFile describes a stored upload.
type SavedFile struct {
	URL      string
	Path     string
	Filename string
}

// FileStore persists an uploaded payload under a fresh name and
// returns where it can be fetched from.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (*SavedFile, error)
}

var allowedExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".zip":  true,
	".rar":  true,
}

// AllowedType reports whether the upload's extension is accepted.
func AllowedType(originalName string) bool {
	return allowedExts[strings.ToLower(filepath.Ext(originalName))]
}

var sizeUnits = [...]string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count as the human-readable string stored
// with file messages, e.g. "1.5 KB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
