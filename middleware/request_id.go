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
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

type contextKey string

const RequestIDContextKey = contextKey("middleware.RequestID.ContextKey")

// NewRequestIDHandler assigns each request an identifier, preserving one supplied by the caller, echoes it
// on the response, and makes it available to downstream handlers via the request context.
func NewRequestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		id := request.Header.Get(RequestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		writer.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(request.Context(), RequestIDContextKey, id)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request identifier assigned by NewRequestIDHandler, or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDContextKey); val != nil {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return ""
}
