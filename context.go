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

import "context"

const (
	HandlingServerContextKey = ContextKey("xbind.Server.ContextKey")
	HostContextKey           = ContextKey("xbind.Host.ContextKey")
)

// ServerFromRequestContext is a utility function to retrieve the Server reference, that the dispatch
// http.Handler deferred to, during downstream http.Handler processing from the http.Request context.
func ServerFromRequestContext(ctx context.Context) *Server {
	if val := ctx.Value(HandlingServerContextKey); val != nil {
		if server, ok := val.(*Server); ok {
			return server
		}
	}
	return nil
}

// HostContextFromRequestContext is a utility function to retrieve a *HostContext reference from the
// http.Request that provides access to xbind configuration like BindPointConfig, HostConfig, and
// InstanceConfig values.
func HostContextFromRequestContext(ctx context.Context) *HostContext {
	if val := ctx.Value(HostContextKey); val != nil {
		if hostContext, ok := val.(*HostContext); ok {
			return hostContext
		}
	}
	return nil
}
