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
	"strings"
)

// DocEntry is one router documentation entry, used for introspection and spec generation.
type DocEntry struct {
	Method      string
	Path        string
	Description string
}

// Router is a request matching capability: given an incoming request it either claims it by returning a
// handler or declines, allowing composition via fallback chaining. Routers are immutable; WithPrefix and
// Compose return new routers rather than altering their inputs.
type Router interface {
	// Match returns the handler for the request and true when this router claims it. A false return is a
	// decline, never a failure: it signals "not my concern" so a composed router may try the next candidate.
	Match(request *http.Request) (http.Handler, bool)

	// Documentation lists one entry per routable endpoint, in registration order.
	Documentation() []DocEntry

	// WithPrefix returns a router equal to this one mounted under prefix.
	WithPrefix(prefix string) Router
}

// Compose combines two routers into one without mutating either. The composed router asks primary first and
// falls back to secondary on decline, so primary wins on overlapping paths. Documentation is primary's
// entries followed by secondary's. Composition is associative and order preserving but not commutative.
func Compose(primary, secondary Router) Router {
	return &composedRouter{
		primary:   primary,
		secondary: secondary,
	}
}

type composedRouter struct {
	primary   Router
	secondary Router
}

var _ Router = &composedRouter{}

func (router *composedRouter) Match(request *http.Request) (http.Handler, bool) {
	if handler, ok := router.primary.Match(request); ok {
		return handler, true
	}

	return router.secondary.Match(request)
}

func (router *composedRouter) Documentation() []DocEntry {
	primary := router.primary.Documentation()
	secondary := router.secondary.Documentation()

	docs := make([]DocEntry, 0, len(primary)+len(secondary))
	docs = append(docs, primary...)
	docs = append(docs, secondary...)

	return docs
}

// WithPrefix distributes over composition: each side is prefixed independently before re-composing.
func (router *composedRouter) WithPrefix(prefix string) Router {
	return Compose(router.primary.WithPrefix(prefix), router.secondary.WithPrefix(prefix))
}

// NewPrefixRouter adapts an externally built http.Handler into a Router that claims every request whose URL
// path falls under prefix. The docs entries, if any, are published as the router's documentation.
func NewPrefixRouter(prefix string, handler http.Handler, docs ...DocEntry) Router {
	return &prefixRouter{
		prefix:  prefix,
		handler: handler,
		docs:    docs,
	}
}

type prefixRouter struct {
	prefix  string
	handler http.Handler
	docs    []DocEntry
}

var _ Router = &prefixRouter{}

func (router *prefixRouter) Match(request *http.Request) (http.Handler, bool) {
	prefix := strings.TrimSuffix(router.prefix, "/")

	if prefix == "" {
		return router.handler, true
	}

	path := request.URL.Path

	// the prefix only claims whole path segments: "/api" owns "/api" and "/api/x", never "/apifoo"
	if path == prefix || strings.HasPrefix(path, prefix+"/") {
		return router.handler, true
	}

	return nil, false
}

func (router *prefixRouter) Documentation() []DocEntry {
	docs := make([]DocEntry, len(router.docs))
	copy(docs, router.docs)

	return docs
}

func (router *prefixRouter) WithPrefix(prefix string) Router {
	docs := make([]DocEntry, len(router.docs))

	for i, doc := range router.docs {
		doc.Path = joinPrefix(prefix, doc.Path)
		docs[i] = doc
	}

	return &prefixRouter{
		prefix:  joinPrefix(prefix, router.prefix),
		handler: router.handler,
		docs:    docs,
	}
}

// joinPrefix concatenates a mount prefix and a path with exactly one slash between them. An empty prefix
// leaves the path untouched.
func joinPrefix(prefix, path string) string {
	if prefix == "" {
		return path
	}

	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	prefix = strings.TrimSuffix(prefix, "/")

	if path == "" || path == "/" {
		return prefix
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return prefix + path
}
