package users

import (
	"io"
	"os"
	"path/filepath"

	"github.com/goliatone/go-errors"
)

const (
	// ProfileImageExtension is the extension stored images are saved under,
	// regardless of the uploaded file's original name.
	ProfileImageExtension = ".jpg"
	// TempProfileImageBaseURL serves generated placeholder avatars for users
	// that have not uploaded an image yet.
	TempProfileImageBaseURL = "https://robohash.org/"
)

// DiskImageStore persists profile images under a base directory, one folder
// per username with a single <username>.jpg inside. Re-uploading replaces
// the previous image.
type DiskImageStore struct {
	baseDir string
	logger  Logger
}

// NewDiskImageStore will create a new DiskImageStore
func NewDiskImageStore(baseDir string, logger Logger) *DiskImageStore {
	if logger == nil {
		logger = defLogger{}
	}
	return &DiskImageStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes the image bytes for username and returns the stored file path.
func (s *DiskImageStore) Save(username string, r io.Reader) (string, error) {
	if username == "" {
		return "", ErrNoEmptyString
	}

	dir := filepath.Join(s.baseDir, username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to create image directory")
	}

	path := s.Path(username)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to create image file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to write image file")
	}

	s.logger.Info("saved profile image for %s at %s", username, path)

	return path, nil
}

// Path returns where username's image lives on disk, whether or not it
// exists yet.
func (s *DiskImageStore) Path(username string) string {
	return filepath.Join(s.baseDir, username, username+ProfileImageExtension)
}

var _ ProfileImageStore = (*DiskImageStore)(nil)

// ProfileImageURL builds the public URL for a user's uploaded image.
func ProfileImageURL(baseURL, username string) string {
	return baseURL + "/user/image/" + username + "/" + username + ProfileImageExtension
}

// TempProfileImageURL builds the placeholder avatar URL for a username.
func TempProfileImageURL(username string) string {
	return TempProfileImageBaseURL + username
}
