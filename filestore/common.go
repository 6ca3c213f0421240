// Package filestore - attachment content storage
package filestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrNotFound the requested content does not exist
var ErrNotFound = errors.New("stored content not found")

// FileStore stores attachment content by location
type FileStore interface {
	/*
		Store persist content

			@param ctx context.Context - execution context
			@param storageName string - unique name of the content
			@param content []byte - the content
			@returns the location the content is stored at
	*/
	Store(ctx context.Context, storageName string, content []byte) (string, error)

	/*
		Load read back content

			@param ctx context.Context - execution context
			@param location string - location returned by Store
			@returns the content
	*/
	Load(ctx context.Context, location string) ([]byte, error)

	/*
		Delete remove content

			@param ctx context.Context - execution context
			@param location string - location returned by Store
	*/
	Delete(ctx context.Context, location string) error
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxSanitizedFilenameLen = 100

// SanitizeFilename reduce an uploaded file name to a safe base name
func SanitizeFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.TrimLeft(base, "._")
	if len(base) > maxSanitizedFilenameLen {
		base = base[len(base)-maxSanitizedFilenameLen:]
	}
	if base == "" {
		return "datei"
	}
	return base
}

// StorageName unique storage name for an uploaded file
func StorageName(filename string) string {
	return fmt.Sprintf("%s_%s", ulid.Make().String(), SanitizeFilename(filename))
}

// datePartition the date based folder new content is placed in
func datePartition(ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("%04d/%02d/%02d", ts.Year(), ts.Month(), ts.Day())
}

// validateLocation reject locations which could escape the store root
func validateLocation(location string) error {
	if location == "" {
		return fmt.Errorf("empty storage location")
	}
	if strings.HasPrefix(location, "/") || strings.Contains(location, "\\") {
		return fmt.Errorf("storage location '%s' is not relative", location)
	}
	for _, part := range strings.Split(location, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("storage location '%s' is not canonical", location)
		}
	}
	return nil
}
