/*
Copyright NetFoundry Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package xbind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ Router = (*mockRouter)(nil)

// mockRouter claims exact paths and answers with its name, so tests can tell which side of a composition
// served a request.
type mockRouter struct {
	name   string
	prefix string
	paths  []string
	docs   []DocEntry
}

func newMockRouter(name string, paths ...string) *mockRouter {
	var docs []DocEntry
	for _, path := range paths {
		docs = append(docs, DocEntry{Method: http.MethodGet, Path: path, Description: name})
	}

	return &mockRouter{
		name:  name,
		paths: paths,
		docs:  docs,
	}
}

func (m *mockRouter) Match(request *http.Request) (http.Handler, bool) {
	path := request.URL.Path

	if m.prefix != "" {
		if !strings.HasPrefix(path, m.prefix) {
			return nil, false
		}
		path = strings.TrimPrefix(path, m.prefix)
	}

	for _, candidate := range m.paths {
		if candidate == path {
			return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				_, _ = writer.Write([]byte(m.name))
			}), true
		}
	}

	return nil, false
}

func (m *mockRouter) Documentation() []DocEntry {
	docs := make([]DocEntry, len(m.docs))
	copy(docs, m.docs)
	return docs
}

func (m *mockRouter) WithPrefix(prefix string) Router {
	docs := make([]DocEntry, len(m.docs))
	for i, doc := range m.docs {
		doc.Path = joinPrefix(prefix, doc.Path)
		docs[i] = doc
	}

	return &mockRouter{
		name:   m.name,
		prefix: joinPrefix(prefix, m.prefix),
		paths:  m.paths,
		docs:   docs,
	}
}

// dispatch runs a GET for path against router and reports the responding router's name, or "" on decline.
func dispatch(t *testing.T, router Router, path string) string {
	request := httptest.NewRequest(http.MethodGet, path, nil)

	handler, ok := router.Match(request)
	if !ok {
		return ""
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	return recorder.Body.String()
}

func Test_Compose(t *testing.T) {

	t.Run("a declined request falls back to the secondary router", func(t *testing.T) {
		primary := newMockRouter("primary", "/primary")
		secondary := newMockRouter("secondary", "/secondary")

		req := require.New(t)
		req.Equal("secondary", dispatch(t, Compose(primary, secondary), "/secondary"))
	})

	t.Run("the primary router wins regardless of the secondary", func(t *testing.T) {
		primary := newMockRouter("primary", "/shared")
		secondary := newMockRouter("secondary", "/shared")

		req := require.New(t)
		req.Equal("primary", dispatch(t, Compose(primary, secondary), "/shared"))
	})

	t.Run("a request neither side claims is declined", func(t *testing.T) {
		composed := Compose(newMockRouter("primary", "/primary"), newMockRouter("secondary", "/secondary"))

		request := httptest.NewRequest(http.MethodGet, "/unknown", nil)
		handler, ok := composed.Match(request)

		req := require.New(t)
		req.False(ok)
		req.Nil(handler)
	})

	t.Run("documentation is the primary's entries followed by the secondary's", func(t *testing.T) {
		primary := newMockRouter("primary", "/a", "/b")
		secondary := newMockRouter("secondary", "/c")

		docs := Compose(primary, secondary).Documentation()

		req := require.New(t)
		req.Len(docs, 3)
		req.Equal("/a", docs[0].Path)
		req.Equal("/b", docs[1].Path)
		req.Equal("/c", docs[2].Path)
	})

	t.Run("composition is associative in effect", func(t *testing.T) {
		build := func() (Router, Router, Router) {
			return newMockRouter("a", "/a", "/shared"),
				newMockRouter("b", "/b", "/shared"),
				newMockRouter("c", "/c", "/shared")
		}

		a1, b1, c1 := build()
		left := Compose(Compose(a1, b1), c1)

		a2, b2, c2 := build()
		right := Compose(a2, Compose(b2, c2))

		req := require.New(t)
		for _, path := range []string{"/a", "/b", "/c", "/shared", "/unknown"} {
			req.Equal(dispatch(t, left, path), dispatch(t, right, path), "path %s", path)
		}
		req.Equal(left.Documentation(), right.Documentation())
	})

	t.Run("a prefix distributes over composition", func(t *testing.T) {
		composed := Compose(newMockRouter("a", "/a"), newMockRouter("b", "/b")).WithPrefix("/v1")
		distributed := Compose(newMockRouter("a", "/a").WithPrefix("/v1"), newMockRouter("b", "/b").WithPrefix("/v1"))

		req := require.New(t)
		for _, path := range []string{"/v1/a", "/v1/b", "/a", "/b", "/v1/unknown"} {
			req.Equal(dispatch(t, distributed, path), dispatch(t, composed, path), "path %s", path)
		}
		req.Equal(distributed.Documentation(), composed.Documentation())
	})
}

func Test_NewPrefixRouter(t *testing.T) {

	handler := http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("external"))
	})

	t.Run("claims every request under its prefix", func(t *testing.T) {
		router := NewPrefixRouter("/ui", handler)

		req := require.New(t)
		req.Equal("external", dispatch(t, router, "/ui"))
		req.Equal("external", dispatch(t, router, "/ui/assets/app.js"))
	})

	t.Run("claims whole path segments only", func(t *testing.T) {
		router := NewPrefixRouter("/api", handler)

		req := require.New(t)
		req.Equal("external", dispatch(t, router, "/api"))
		req.Equal("external", dispatch(t, router, "/api/things"))
		req.Equal("", dispatch(t, router, "/apifoo"))
	})

	t.Run("a root prefix claims every request", func(t *testing.T) {
		router := NewPrefixRouter("/", handler)

		req := require.New(t)
		req.Equal("external", dispatch(t, router, "/"))
		req.Equal("external", dispatch(t, router, "/anything/else"))
	})

	t.Run("declines requests outside its prefix", func(t *testing.T) {
		router := NewPrefixRouter("/ui", handler)

		request := httptest.NewRequest(http.MethodGet, "/api", nil)
		_, ok := router.Match(request)

		require.False(t, ok)
	})

	t.Run("re-mounting applies the outer prefix first", func(t *testing.T) {
		router := NewPrefixRouter("/ui", handler, DocEntry{Method: http.MethodGet, Path: "/ui", Description: "ui"}).WithPrefix("/console")

		req := require.New(t)
		req.Equal("external", dispatch(t, router, "/console/ui/index.html"))
		req.Equal("", dispatch(t, router, "/ui/index.html"))
		req.Equal("/console/ui", router.Documentation()[0].Path)
	})
}
