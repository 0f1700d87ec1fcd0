package storage

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MediaPrefix is the route under which LocalStore files are served
const MediaPrefix = "/media"

// LocalStore writes media to a directory served by the API itself.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Save(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	name := ObjectName(filename)
	file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create media file")
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		os.Remove(file.Name())
		return "", errors.Wrap(err, "write media file")
	}
	return s.baseURL + MediaPrefix + "/" + name, nil
}

// Delete removes a file previously returned by Save. URLs that do not belong
// to this store are ignored.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	prefix := s.baseURL + MediaPrefix + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	name := path.Base(strings.TrimPrefix(url, prefix))
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove media file")
	}
	return nil
}
