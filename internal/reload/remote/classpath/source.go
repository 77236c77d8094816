// Package classpath implements a reload.Source backed by files packaged
// alongside the binary (spec §6.4 "mapping source: classpath"), the
// default when no remote endpoint is configured. It never supplies an
// entity tag, so the Reload Controller always falls back to the content
// hash to detect change.
package classpath

import (
	"context"
	"io/fs"

	"github.com/vishalvchavan/streamsmt/internal/reload"
	engerrors "github.com/vishalvchavan/streamsmt/pkg/errors"
)

// Source reads a mapping document from an fs.FS, typically an embed.FS
// packaged into the binary at build time, rooted such that path resolves
// directly (spec §6.4 "mapping location": an in-package path).
type Source struct {
	files fs.FS
	path  string
}

// New builds a Source reading path out of files.
func New(files fs.FS, path string) *Source {
	return &Source{files: files, path: path}
}

// Probe always reports no entity tag: a packaged file has no server-side
// versioning marker, so change detection relies entirely on the content
// hash (spec §4.5 rule table, "either absent").
func (s *Source) Probe(_ context.Context) (reload.Metadata, error) {
	return reload.Metadata{}, nil
}

// Fetch reads the full file body.
func (s *Source) Fetch(_ context.Context) (reload.Fetched, error) {
	data, err := fs.ReadFile(s.files, s.path)
	if err != nil {
		return reload.Fetched{}, engerrors.Wrap(err, engerrors.ENotFound, "failed to read packaged mapping document %q", s.path)
	}
	return reload.Fetched{Body: data}, nil
}

// Close satisfies reload.Source; an fs.FS owns no resources to release.
func (s *Source) Close() error { return nil }
