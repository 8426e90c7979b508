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

// Package middleware provides the http.Handler wrappers xbind hosts apply around dispatch: response
// compression and request id propagation.
package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

const (
	EncodingBrotli = "br"
	EncodingGzip   = "gzip"

	acceptEncodingHeader  = "Accept-Encoding"
	contentEncodingHeader = "Content-Encoding"
)

// NewCompressionHandler wraps next with response body compression negotiated from the request's
// Accept-Encoding header. Brotli is preferred when the client accepts it, then gzip; requests accepting
// neither pass through untouched.
func NewCompressionHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		encoding := selectEncoding(request.Header.Get(acceptEncodingHeader))

		if encoding == "" {
			next.ServeHTTP(writer, request)
			return
		}

		var compressor io.WriteCloser

		switch encoding {
		case EncodingBrotli:
			compressor = brotli.NewWriter(writer)
		case EncodingGzip:
			compressor = gzip.NewWriter(writer)
		}

		writer.Header().Set(contentEncodingHeader, encoding)
		writer.Header().Add("Vary", acceptEncodingHeader)
		writer.Header().Del("Content-Length")

		defer func() {
			_ = compressor.Close()
		}()

		next.ServeHTTP(&compressedResponseWriter{ResponseWriter: writer, compressor: compressor}, request)
	})
}

type compressedResponseWriter struct {
	http.ResponseWriter
	compressor io.WriteCloser
}

func (writer *compressedResponseWriter) Write(data []byte) (int, error) {
	return writer.compressor.Write(data)
}

// selectEncoding picks the response encoding from an Accept-Encoding header value, ignoring quality
// parameters.
func selectEncoding(acceptEncoding string) string {
	hasGzip := false

	for _, part := range strings.Split(acceptEncoding, ",") {
		token := strings.TrimSpace(part)

		if idx := strings.IndexByte(token, ';'); idx >= 0 {
			token = strings.TrimSpace(token[:idx])
		}

		switch token {
		case EncodingBrotli:
			return EncodingBrotli
		case EncodingGzip:
			hasGzip = true
		}
	}

	if hasGzip {
		return EncodingGzip
	}

	return ""
}
