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
	"net/url"
	"strings"

	"github.com/michaelquigley/pfxlog"
	"github.com/pkg/errors"
)

// DefaultMaxBodySize caps request body reads when RouterOptions does not say otherwise.
const DefaultMaxBodySize = int64(4 * 1024 * 1024)

// ImplementationProvider returns the realized service implementation. A ServiceBinding supplies one that
// realizes the implementation exactly once and hands the same instance to every request thereafter.
type ImplementationProvider func() (interface{}, error)

// RouterOptions carries the transport level settings applied to every endpoint of a descriptor built router.
type RouterOptions struct {
	// MaxBodySize limits request body reads, in bytes. Defaults to DefaultMaxBodySize.
	MaxBodySize int64

	// Codec decodes request bodies and encodes results for endpoints without their own codec. Defaults to
	// DefaultCodec.
	Codec Codec
}

// Default provides defaults for all necessary values
func (options *RouterOptions) Default() {
	options.MaxBodySize = DefaultMaxBodySize
	options.Codec = DefaultCodec
}

// Call carries the matched request handed to an EndpointFunc: the captured path parameters, the query
// values, and the means to decode the request body per the endpoint's codec.
type Call struct {
	Request    *http.Request
	PathParams map[string]string
	Query      url.Values

	codec   Codec
	maxBody int64
}

// Param returns the captured path parameter for a ':' template segment, or "" when absent.
func (call *Call) Param(name string) string {
	return call.PathParams[name]
}

// Bind decodes the request body into v using the endpoint's codec. The returned error is a ClientError, so
// passing it back from the EndpointFunc surfaces as a 400 response to the caller.
func (call *Call) Bind(v interface{}) error {
	reader := http.MaxBytesReader(nil, call.Request.Body, call.maxBody)

	if err := call.codec.Decode(reader, v); err != nil {
		return NewClientError(http.StatusBadRequest, errors.Wrap(err, "could not decode request body"))
	}

	return nil
}

// NewEndpointRouter builds a Router that dispatches requests to the descriptor's endpoints against the
// lazily realized implementation returned by impl. The router declines requests matching none of the
// declared endpoints so a composed router may try the next candidate.
func NewEndpointRouter(descriptor *ServiceDescriptor, impl ImplementationProvider, options RouterOptions) (Router, error) {
	if err := descriptor.Validate(); err != nil {
		return nil, &BindingError{Service: descriptor.Name, Err: err}
	}

	if impl == nil {
		return nil, &BindingError{Service: descriptor.Name, Err: errors.New("no implementation provider supplied")}
	}

	codec := options.Codec
	if codec == nil {
		codec = DefaultCodec
	}

	maxBody := options.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	router := &endpointRouter{
		service: descriptor.Name,
	}

	for _, endpoint := range descriptor.Endpoints {
		endpointCodec := endpoint.Codec
		if endpointCodec == nil {
			endpointCodec = codec
		}

		status := endpoint.Status
		if status == 0 {
			status = http.StatusOK
		}

		router.routes = append(router.routes, &route{
			service:  descriptor.Name,
			endpoint: endpoint,
			segments: splitPath(endpoint.Path),
			codec:    endpointCodec,
			status:   status,
			impl:     impl,
			maxBody:  maxBody,
		})
	}

	return router, nil
}

type endpointRouter struct {
	service string
	prefix  string
	routes  []*route
}

var _ Router = &endpointRouter{}

func (router *endpointRouter) Match(request *http.Request) (http.Handler, bool) {
	path := request.URL.Path

	if router.prefix != "" {
		if !strings.HasPrefix(path, router.prefix) {
			return nil, false
		}

		path = strings.TrimPrefix(path, router.prefix)

		if path == "" {
			path = "/"
		}

		if !strings.HasPrefix(path, "/") {
			return nil, false
		}
	}

	for _, route := range router.routes {
		if !strings.EqualFold(request.Method, route.endpoint.Method) {
			continue
		}

		if params, ok := route.match(path); ok {
			return route.handler(params), true
		}
	}

	return nil, false
}

func (router *endpointRouter) Documentation() []DocEntry {
	var docs []DocEntry

	for _, route := range router.routes {
		docs = append(docs, DocEntry{
			Method:      strings.ToUpper(route.endpoint.Method),
			Path:        joinPrefix(router.prefix, route.endpoint.Path),
			Description: route.endpoint.Description,
		})
	}

	return docs
}

func (router *endpointRouter) WithPrefix(prefix string) Router {
	return &endpointRouter{
		service: router.service,
		prefix:  joinPrefix(prefix, router.prefix),
		routes:  router.routes,
	}
}

type route struct {
	service  string
	endpoint Endpoint
	segments []string
	codec    Codec
	status   int
	impl     ImplementationProvider
	maxBody  int64
}

// match compares the request path against the endpoint's template, capturing ':' segments as parameters.
func (route *route) match(path string) (map[string]string, bool) {
	segments := splitPath(path)

	if len(segments) != len(route.segments) {
		return nil, false
	}

	var params map[string]string

	for i, template := range route.segments {
		if strings.HasPrefix(template, ":") {
			if params == nil {
				params = map[string]string{}
			}
			params[template[1:]] = segments[i]
			continue
		}

		if template != segments[i] {
			return nil, false
		}
	}

	return params, true
}

func (route *route) handler(params map[string]string) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		impl, err := route.impl()

		if err != nil {
			pfxlog.Logger().Errorf("could not realize implementation for service [%s] endpoint [%s %s]: %v", route.service, route.endpoint.Method, route.endpoint.Path, err)
			writeError(writer, http.StatusInternalServerError, "service implementation unavailable")
			return
		}

		call := &Call{
			Request:    request,
			PathParams: params,
			Query:      request.URL.Query(),
			codec:      route.codec,
			maxBody:    route.maxBody,
		}

		result, err := route.endpoint.Invoke(request.Context(), impl, call)

		if err != nil {
			if clientErr, ok := asClientError(err); ok {
				writeError(writer, clientErr.Status, clientErr.Error())
				return
			}

			pfxlog.Logger().Errorf("handler failure for service [%s] endpoint [%s %s]: %v", route.service, route.endpoint.Method, route.endpoint.Path, err)
			writeError(writer, http.StatusInternalServerError, "internal server error")
			return
		}

		if result == nil {
			writer.WriteHeader(http.StatusNoContent)
			return
		}

		writer.Header().Set("Content-Type", route.codec.ContentType())
		writer.WriteHeader(route.status)

		if err := route.codec.Encode(writer, result); err != nil {
			pfxlog.Logger().Errorf("error encoding response for service [%s] endpoint [%s %s]: %v", route.service, route.endpoint.Method, route.endpoint.Path, err)
		}
	})
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")

	if path == "" {
		return nil
	}

	return strings.Split(path, "/")
}
