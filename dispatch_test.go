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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newNamedServer builds a Server claiming GET /<name> and answering with its name.
func newNamedServer(t *testing.T, name string) *Server {
	descriptor := &ServiceDescriptor{
		Name: name,
		Endpoints: []Endpoint{
			{
				Method: http.MethodGet,
				Path:   "/" + name,
				Codec:  TextCodec{},
				Invoke: func(_ context.Context, _ interface{}, _ *Call) (interface{}, error) {
					return name, nil
				},
			},
		},
	}

	binding, err := ResolveAndBind(nil, descriptor, func() (interface{}, error) { return struct{}{}, nil }, RouterOptions{})
	require.NoError(t, err)

	return ForService(binding)
}

func Test_getDefault(t *testing.T) {

	t.Run("a nil slice results in an error", func(t *testing.T) {
		var servers []*Server = nil

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.Error(err)
		req.Nil(defaultServer)
	})

	t.Run("an empty slice results in an error", func(t *testing.T) {
		var servers []*Server

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.Error(err)
		req.Nil(defaultServer)
	})

	t.Run("a slice with one non-defaulting entry returns that entry", func(t *testing.T) {
		s1 := newNamedServer(t, "one")
		servers := []*Server{
			s1,
		}

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.NoError(err)
		req.Equal(s1, defaultServer)
	})

	t.Run("a slice with one defaulting entry returns that entry", func(t *testing.T) {
		s1 := newNamedServer(t, "one").AsDefault()
		servers := []*Server{
			s1,
		}

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.NoError(err)
		req.Equal(s1, defaultServer)
	})

	t.Run("a slice with multiple non-defaulting entries returns the last entry", func(t *testing.T) {
		s1 := newNamedServer(t, "one")
		s2 := newNamedServer(t, "two")
		s3 := newNamedServer(t, "three")

		servers := []*Server{
			s1,
			s2,
			s3,
		}

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.NoError(err)
		req.Equal(s3, defaultServer)
	})

	t.Run("a slice with multiple defaulting entries returns an error", func(t *testing.T) {
		s1 := newNamedServer(t, "one")
		s2 := newNamedServer(t, "two").AsDefault()
		s3 := newNamedServer(t, "three").AsDefault()

		servers := []*Server{
			s1,
			s2,
			s3,
		}

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.Error(err)
		req.Nil(defaultServer)
	})

	t.Run("a slice with multiple entries and one defaulting entry returns the defaulting entry", func(t *testing.T) {
		s1 := newNamedServer(t, "one")
		s2 := newNamedServer(t, "two").AsDefault()
		s3 := newNamedServer(t, "three")

		servers := []*Server{
			s1,
			s2,
			s3,
		}

		defaultServer, err := getDefault(servers)

		req := require.New(t)
		req.NoError(err)
		req.Equal(s2, defaultServer)
	})
}

func Test_RouterDispatchFactory(t *testing.T) {

	t.Run("requests are routed to the claiming server", func(t *testing.T) {
		factory := &RouterDispatchFactory{}

		handler, err := factory.Build([]*Server{newNamedServer(t, "one"), newNamedServer(t, "two")})

		req := require.New(t)
		req.NoError(err)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/two", nil))

		req.Equal(http.StatusOK, recorder.Code)
		req.Equal("two", recorder.Body.String())
	})

	t.Run("the handling server is available from the request context", func(t *testing.T) {
		var observed *Server

		probe := newNamedServer(t, "probe").AdditionalRouter(NewPrefixRouter("/probe-extra", http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
			observed = ServerFromRequestContext(request.Context())
		})))

		factory := &RouterDispatchFactory{}
		handler, err := factory.Build([]*Server{probe})

		req := require.New(t)
		req.NoError(err)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/probe-extra", nil))

		req.Equal(probe, observed)
	})

	t.Run("a default server is consulted last regardless of configuration order", func(t *testing.T) {
		catchAll := newNamedServer(t, "ui").
			AdditionalRouter(NewPrefixRouter("/", http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				_, _ = writer.Write([]byte("ui"))
			}))).
			AsDefault()

		factory := &RouterDispatchFactory{}
		handler, err := factory.Build([]*Server{catchAll, newNamedServer(t, "api")})

		req := require.New(t)
		req.NoError(err)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api", nil))
		req.Equal("api", recorder.Body.String())

		recorder = httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/anything/else", nil))
		req.Equal("ui", recorder.Body.String())
	})

	t.Run("an unmatched request yields 404 when no default handler is set", func(t *testing.T) {
		factory := &RouterDispatchFactory{}

		handler, err := factory.Build([]*Server{newNamedServer(t, "one")})

		req := require.New(t)
		req.NoError(err)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/unknown", nil))

		req.Equal(http.StatusNotFound, recorder.Code)
	})

	t.Run("an unmatched request resolves a default handler through the parent chain", func(t *testing.T) {
		factory := &RouterDispatchFactory{}

		handler, err := factory.Build([]*Server{newNamedServer(t, "one")})

		req := require.New(t)
		req.NoError(err)

		// mirror NewHost's wiring: the handler's parent is the host, the host's parent is the instance
		instanceProvider := &DefaultHttpHandlerProviderImpl{}
		instanceProvider.SetDefaultHttpHandler(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusTeapot)
		}))

		hostProvider := &DefaultHttpHandlerProviderImpl{}
		hostProvider.SetParent(instanceProvider)
		handler.SetParent(hostProvider)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/unknown", nil))

		req.Equal(http.StatusTeapot, recorder.Code)
	})

	t.Run("an unmatched request falls back to the configured default handler", func(t *testing.T) {
		factory := &RouterDispatchFactory{}
		factory.SetDefaultHttpHandler(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusTeapot)
		}))

		handler, err := factory.Build([]*Server{newNamedServer(t, "one")})

		req := require.New(t)
		req.NoError(err)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/unknown", nil))

		req.Equal(http.StatusTeapot, recorder.Code)
	})

	t.Run("building with no servers results in an error", func(t *testing.T) {
		factory := &RouterDispatchFactory{}

		handler, err := factory.Build(nil)

		req := require.New(t)
		req.Error(err)
		req.Nil(handler)
	})
}
