// Package source resolves data locations, which may be local paths or
// http(s) URLs, into bytes. Remote files can be cached on disk.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("file not found on server")

// Fetcher reads locations. The zero value streams URLs without caching.
type Fetcher struct {
	Client   *http.Client
	CacheDir string
	Log      *logrus.Entry
}

// IsRemote reports whether loc is an http or https URL.
func IsRemote(loc string) bool {
	u, err := url.Parse(loc)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// CacheFileName returns the local name a URL is cached under. The host is
// folded in so equal file names from different servers do not collide.
func CacheFileName(loc string) string {
	u, err := url.Parse(loc)
	if err != nil {
		return ""
	}
	name := filepath.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		name = "index"
	}
	host := strings.NewReplacer(":", "_", ".", "_").Replace(u.Host)
	if host == "" {
		return name
	}
	return host + "_" + name
}

// ReadAll returns the contents of a local path or URL.
func (f *Fetcher) ReadAll(ctx context.Context, loc string) ([]byte, error) {
	rc, err := f.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			f.log().WithError(err).Warn("closing source")
		}
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}
	return data, nil
}

// Open returns a reader for loc. URLs are downloaded into CacheDir once when
// it is set and streamed otherwise.
func (f *Fetcher) Open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if !IsRemote(loc) {
		file, err := os.Open(loc)
		if err != nil {
			return nil, err
		}
		return file, nil
	}

	log := f.log().WithField("url", loc)
	if f.CacheDir == "" {
		log.Debug("streaming")
		resp, err := f.get(ctx, loc)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	}

	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	localPath := filepath.Join(f.CacheDir, CacheFileName(loc))
	if _, err := os.Stat(localPath); os.IsNotExist(err) {
		log.WithField("path", localPath).Info("downloading")
		if err := f.Download(ctx, loc, localPath); err != nil {
			return nil, err
		}
	} else {
		log.WithField("path", localPath).Debug("using cached file")
	}
	file, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return file, nil
}

// Download writes the body at loc to path through a temp file in the same
// directory, so path is either absent or complete.
func (f *Fetcher) Download(ctx context.Context, loc, path string) error {
	resp, err := f.get(ctx, loc)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.log().WithError(err).Warn("closing response body")
		}
	}()

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !os.IsNotExist(err) {
			f.log().WithError(err).WithField("path", tmpName).Warn("removing temp file")
		}
	}()

	pw := &progressWriter{Writer: tmpFile, label: filepath.Base(path), log: f.log()}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (f *Fetcher) get(ctx context.Context, loc string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	if err := resp.Body.Close(); err != nil {
		f.log().WithError(err).Warn("closing response body")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("bad status: %s", resp.Status)
}

func (f *Fetcher) log() *logrus.Entry {
	if f.Log != nil {
		return f.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

type progressWriter struct {
	io.Writer
	total uint64
	last  uint64
	label string
	log   *logrus.Entry
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.total += uint64(n)
	if pw.total-pw.last > 5*1024*1024 { // every 5MB
		pw.log.WithFields(logrus.Fields{"file": pw.label, "mb": pw.total / 1024 / 1024}).Info("download progress")
		pw.last = pw.total
	}
	return n, err
}
