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

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/require"
)

const compressionBody = "the same twenty byte sentence over and over, the same twenty byte sentence over and over"

func compressionProbe() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(compressionBody))
	})
}

func Test_NewCompressionHandler(t *testing.T) {

	t.Run("a request without accept-encoding passes through untouched", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()

		NewCompressionHandler(compressionProbe()).ServeHTTP(recorder, request)

		req := require.New(t)
		req.Empty(recorder.Header().Get("Content-Encoding"))
		req.Equal(compressionBody, recorder.Body.String())
	})

	t.Run("a request accepting gzip receives a gzip body", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		NewCompressionHandler(compressionProbe()).ServeHTTP(recorder, request)

		req := require.New(t)
		req.Equal(EncodingGzip, recorder.Header().Get("Content-Encoding"))
		req.Equal("Accept-Encoding", recorder.Header().Get("Vary"))

		reader, err := gzip.NewReader(recorder.Body)
		req.NoError(err)

		body, err := io.ReadAll(reader)
		req.NoError(err)
		req.Equal(compressionBody, string(body))
	})

	t.Run("brotli is preferred when the client accepts both", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip, br")
		recorder := httptest.NewRecorder()

		NewCompressionHandler(compressionProbe()).ServeHTTP(recorder, request)

		req := require.New(t)
		req.Equal(EncodingBrotli, recorder.Header().Get("Content-Encoding"))

		body, err := io.ReadAll(brotli.NewReader(recorder.Body))
		req.NoError(err)
		req.Equal(compressionBody, string(body))
	})

	t.Run("quality parameters are ignored when matching encodings", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "gzip;q=0.8, identity;q=0.5")
		recorder := httptest.NewRecorder()

		NewCompressionHandler(compressionProbe()).ServeHTTP(recorder, request)

		require.Equal(t, EncodingGzip, recorder.Header().Get("Content-Encoding"))
	})

	t.Run("unknown encodings pass through untouched", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Accept-Encoding", "zstd, deflate")
		recorder := httptest.NewRecorder()

		NewCompressionHandler(compressionProbe()).ServeHTTP(recorder, request)

		req := require.New(t)
		req.Empty(recorder.Header().Get("Content-Encoding"))
		req.Equal(compressionBody, recorder.Body.String())
	})
}
