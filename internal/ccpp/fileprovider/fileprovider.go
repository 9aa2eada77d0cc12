// Copyright 2026 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fileprovider implements the file provider / include loader
// collaborator of spec.md §4.9: an abstract source of file bytes, plus a
// caching loader that applies the quoted-vs-angled search order over a list
// of system include directories.
package fileprovider

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Provider is the abstract file-byte source the loader is built on. Tests
// and tools that don't want real disk I/O supply a MapProvider instead.
type Provider interface {
	ReadFile(p string) (string, error)
}

// OSProvider reads real files from disk.
type OSProvider struct{}

func (OSProvider) ReadFile(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(filepath.Clean(abs))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MapProvider is an in-memory Provider over a fixed set of paths, used by
// tests that need deterministic, hermetic include resolution.
type MapProvider map[string]string

func (m MapProvider) ReadFile(p string) (string, error) {
	text, ok := m[p]
	if !ok {
		return "", os.ErrNotExist
	}
	return text, nil
}

// Kind distinguishes the two #include delimiter styles, which changes the
// search order (§4.9).
type Kind int

const (
	Quoted Kind = iota // #include "foo.h"
	Angled             // #include <foo.h>
)

func (k Kind) String() string {
	if k == Angled {
		return "angled"
	}
	return "quoted"
}

// NotFoundError reports that no candidate path existed for an include.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("file not found: %s", e.Path) }

// IOError reports that a candidate path existed but could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// weakNormalize eliminates "." path components (but not "..", which would
// require resolving symlinks to do correctly) so that "a/./b.h" and "a/b.h"
// share one cache entry, per §4.9's "weakly-normalized paths".
func weakNormalize(p string) string {
	abs := strings.HasPrefix(p, "/")
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		out = append(out, part)
	}
	joined := strings.Join(out, "/")
	if abs {
		joined = "/" + joined
	}
	return joined
}

// Loader resolves #include filenames to file contents, caching by
// weakly-normalized path so the same header is only ever read once.
type Loader struct {
	provider   Provider
	systemDirs []string
	cache      map[string]string
}

// NewLoader returns a Loader reading through provider, searching
// systemDirs (in order) after any includer-relative candidate.
func NewLoader(provider Provider, systemDirs []string) *Loader {
	return &Loader{provider: provider, systemDirs: systemDirs, cache: make(map[string]string)}
}

// Resolve finds and reads filename of the given kind, included from a file
// whose directory is includerDir (ignored for angled includes). It returns
// the resolved path and its text, or a *NotFoundError / *IOError.
func (l *Loader) Resolve(filename string, kind Kind, includerDir string) (resolvedPath string, text string, err error) {
	if path.IsAbs(filename) {
		text, err := l.load(filename)
		if err != nil {
			return "", "", err
		}
		return filename, text, nil
	}

	var candidates []string
	if kind == Quoted && includerDir != "" {
		candidates = append(candidates, path.Join(includerDir, filename))
	}
	for _, dir := range l.systemDirs {
		candidates = append(candidates, path.Join(dir, filename))
	}

	var ioErr error
	for _, candidate := range candidates {
		text, err := l.load(candidate)
		if err == nil {
			return candidate, text, nil
		}
		var nf *NotFoundError
		if errors.As(err, &nf) {
			continue
		}
		ioErr = err // an existing-but-unreadable candidate takes priority over NotFound
	}
	if ioErr != nil {
		return "", "", ioErr
	}
	return "", "", &NotFoundError{Path: filename}
}

func (l *Loader) load(p string) (string, error) {
	key := weakNormalize(p)
	if text, ok := l.cache[key]; ok {
		return text, nil
	}
	text, err := l.provider.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &NotFoundError{Path: p}
		}
		return "", &IOError{Path: p, Err: err}
	}
	l.cache[key] = text
	return text, nil
}
