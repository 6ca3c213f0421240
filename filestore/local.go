package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
)

// localStore implements FileStore on the local file system
type localStore struct {
	goutils.Component
	rootDir string
	now     func() time.Time
}

/*
NewLocalStore define a file store rooted at a local directory

	@param rootDir string - the root directory. It is created if missing.
	@returns the file store
*/
func NewLocalStore(rootDir string) (FileStore, error) {
	logTags := log.Fields{"package": "bluelight", "module": "filestore", "component": "local"}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("invalid file store root '%s' [%w]", rootDir, err)
	}
	if err := os.MkdirAll(absRoot, 0o750); err != nil {
		return nil, fmt.Errorf("unable to prepare file store root '%s' [%w]", absRoot, err)
	}

	return &localStore{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		rootDir: absRoot,
		now:     time.Now,
	}, nil
}

func (s *localStore) fullPath(location string) (string, error) {
	if err := validateLocation(location); err != nil {
		return "", err
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(location)), nil
}

/*
Store persist content

	@param ctx context.Context - execution context
	@param storageName string - unique name of the content
	@param content []byte - the content
	@returns the location the content is stored at
*/
func (s *localStore) Store(ctx context.Context, storageName string, content []byte) (string, error) {
	logTags := s.GetLogTagsForContext(ctx)

	location := path.Join(datePartition(s.now()), storageName)
	target, err := s.fullPath(location)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("unable to prepare folder for '%s' [%w]", location, err)
	}

	// Write to a temp file first so readers never see partial content
	tmpFile, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("unable to create temp file for '%s' [%w]", location, err)
	}
	tmpName := tmpFile.Name()
	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("unable to write '%s' [%w]", location, err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("unable to write '%s' [%w]", location, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("unable to place '%s' [%w]", location, err)
	}

	log.WithFields(logTags).WithField("location", location).WithField("size", len(content)).
		Debug("Stored content")

	return location, nil
}

/*
Load read back content

	@param ctx context.Context - execution context
	@param location string - location returned by Store
	@returns the content
*/
func (s *localStore) Load(_ context.Context, location string) ([]byte, error) {
	target, err := s.fullPath(location)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s'", ErrNotFound, location)
		}
		return nil, fmt.Errorf("unable to read '%s' [%w]", location, err)
	}
	return content, nil
}

/*
Delete remove content

	@param ctx context.Context - execution context
	@param location string - location returned by Store
*/
func (s *localStore) Delete(_ context.Context, location string) error {
	target, err := s.fullPath(location)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to delete '%s' [%w]", location, err)
	}
	return nil
}
