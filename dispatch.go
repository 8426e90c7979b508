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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/michaelquigley/pfxlog"
)

// DispatchFactory generates a http.Handler that interrogates a http.Request and routes it across a Host's
// Server instances. The Server that claimed the request is added to the context with a key of
// HandlingServerContextKey. Each DispatchFactory implementation must define its own behaviors for an
// unmatched http.Request.
type DispatchFactory interface {
	Build(servers []*Server) (DispatchHandler, error)
}

type DispatchHandler interface {
	DefaultHttpHandlerProvider
	http.Handler
}

type DispatchHandlerImpl struct {
	DefaultHttpHandlerProviderImpl
	Handler http.Handler
}

var _ DispatchHandler = &DispatchHandlerImpl{}

func (d *DispatchHandlerImpl) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	d.Handler.ServeHTTP(writer, request)
}

// RouterDispatchFactory is a DispatchFactory that routes http.Request requests by asking each Server's
// composed Router, in configuration order, to match or decline. A Server marked via AsDefault is consulted
// last regardless of configuration order, so catch-all services (a UI claiming "/", say) cannot shadow the
// rest. A http.Handler for unmatched requests can be provided through the DefaultHttpHandlerProvider chain;
// by default an empty response with a http.StatusNotFound (404) will be sent.
type RouterDispatchFactory struct {
	DefaultHttpHandlerProviderImpl
}

var _ DispatchFactory = &RouterDispatchFactory{}

// Build performs Server selection based on Router match-or-decline
func (factory *RouterDispatchFactory) Build(servers []*Server) (DispatchHandler, error) {
	defaultServer, err := getDefault(servers)

	if err != nil {
		return nil, err
	}

	ordered := make([]*Server, 0, len(servers))

	for _, server := range servers {
		if server != defaultServer {
			ordered = append(ordered, server)
		}
	}

	if defaultServer != nil {
		ordered = append(ordered, defaultServer)
	}

	dispatchHandler := &DispatchHandlerImpl{}
	dispatchHandler.SetParent(factory)

	//the unmatched request fallback resolves through the dispatch handler's own provider, so a parent chain
	//assigned after Build (Instance > Host > dispatch handler) is honored
	dispatchHandler.Handler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		for _, server := range ordered {
			if handler, ok := server.Router().Match(request); ok {

				//store the handling Server on the request context, useful for logging by downstream http handlers
				ctx := context.WithValue(request.Context(), HandlingServerContextKey, server)
				newRequest := request.WithContext(ctx)
				handler.ServeHTTP(writer, newRequest)
				return
			}
		}

		if defaultHttpHandler := dispatchHandler.GetDefaultHttpHandler(); defaultHttpHandler != nil {
			defaultHttpHandler.ServeHTTP(writer, request)
			return
		}

		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte{})
	})

	return dispatchHandler, nil
}

// getDefault determines from a slice of Server which will act as the default, consulted last when routing.
// The default is determined in one of two ways:
// 1) a server declares itself the default via AsDefault
// 2) no server declares itself the default
//
// If a server declares itself the default, only one is allowed to do so and if another server does so, it
// will generate an error. If no server declares itself, the last server will be used.
func getDefault(servers []*Server) (*Server, error) {
	var defaults []*Server

	if len(servers) == 0 {
		return nil, errors.New("no servers provided")
	}

	for _, server := range servers {
		if server.IsDefault() {
			defaults = append(defaults, server)
		}
	}

	if len(defaults) == 0 {
		lastServer := servers[len(servers)-1]
		pfxlog.Logger().Warnf("no default servers were found, using the last server [Name: %s] as the default", lastServer.Name())
		return lastServer, nil
	}

	if len(defaults) > 1 {
		var names []string
		for _, server := range defaults {
			name := fmt.Sprintf("[Name: %s]", server.Name())
			names = append(names, name)
		}

		strNames := strings.Join(names, ",")
		return nil, errors.New("too many default servers found, ensure that only one server is marked as the default: " + strNames)
	}

	return defaults[0], nil
}
