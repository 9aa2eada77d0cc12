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

package fileprovider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveQuotedPrefersIncluderDir(t *testing.T) {
	p := MapProvider{
		"src/foo.h":  "// src version\n",
		"/usr/foo.h": "// system version\n",
		"src/main.c": "",
	}
	l := NewLoader(p, []string{"/usr"})
	resolved, text, err := l.Resolve("foo.h", Quoted, "src")
	require.NoError(t, err)
	assert.Equal(t, "src/foo.h", resolved)
	assert.Equal(t, "// src version\n", text)
}

func TestResolveAngledSkipsIncluderDir(t *testing.T) {
	p := MapProvider{
		"src/foo.h":  "// src version\n",
		"/usr/foo.h": "// system version\n",
	}
	l := NewLoader(p, []string{"/usr"})
	resolved, text, err := l.Resolve("foo.h", Angled, "src")
	require.NoError(t, err)
	assert.Equal(t, "/usr/foo.h", resolved)
	assert.Equal(t, "// system version\n", text)
}

func TestResolveNotFound(t *testing.T) {
	l := NewLoader(MapProvider{}, []string{"/usr"})
	_, _, err := l.Resolve("missing.h", Angled, "")
	require.Error(t, err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestWeakNormalizeCollapsesDotComponents(t *testing.T) {
	assert.Equal(t, "a/b.h", weakNormalize("a/./b.h"))
	assert.Equal(t, "/a/b.h", weakNormalize("/a/./b.h"))
}

func TestLoadCachesByNormalizedPath(t *testing.T) {
	calls := 0
	p := countingProvider{MapProvider{"a/b.h": "x"}, &calls}
	l := NewLoader(p, []string{"."})
	_, _, err := l.Resolve("a/b.h", Angled, "")
	require.NoError(t, err)
	_, _, err = l.Resolve("a/b.h", Angled, "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type countingProvider struct {
	MapProvider
	calls *int
}

func (c countingProvider) ReadFile(p string) (string, error) {
	*c.calls++
	return c.MapProvider.ReadFile(p)
}
