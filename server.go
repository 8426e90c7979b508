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

// ServiceInfo is the registration metadata published for a hosted service, consumed by service registry and
// discovery collaborators. See Registrar.
type ServiceInfo struct {
	Name string
	ACLs []ACL
}

// Server is the top level handle exposed to the hosting runtime: one name, one primary ServiceBinding, and
// the composed router. Servers are immutable; AdditionalRouter, WithPrefix, and AsDefault return new Server
// values wrapping the same binding, leaving the receiver untouched. The composed router always reflects
// exactly the binding's router followed by every additional router, in attachment order: first router wins
// on overlapping paths.
type Server struct {
	name      string
	binding   *ServiceBinding
	extra     []Router
	prefix    string
	isDefault bool

	router *lazy[Router]
	info   *lazy[ServiceInfo]
}

// ForService wraps a binding into a Server named after its descriptor.
func ForService(binding *ServiceBinding) *Server {
	return &Server{
		name:    binding.Descriptor().Name,
		binding: binding,
		router:  &lazy[Router]{},
		info:    &lazy[ServiceInfo]{},
	}
}

// Name returns the bound service's name.
func (server *Server) Name() string {
	return server.name
}

// Binding returns the primary ServiceBinding.
func (server *Server) Binding() *ServiceBinding {
	return server.binding
}

// Router returns the ordered composition of the binding's router followed by every additional router, with
// any mount prefix applied to the whole composition. Computed once and memoized.
func (server *Server) Router() Router {
	router, _ := server.router.Load(func() (Router, error) {
		composed := server.binding.Router()

		for _, extra := range server.extra {
			composed = Compose(composed, extra)
		}

		if server.prefix != "" {
			composed = composed.WithPrefix(server.prefix)
		}

		return composed, nil
	})

	return router
}

// AdditionalRouter returns a new Server whose router is this server's composition extended with router. The
// receiver is not modified and continues to route only through its original composition.
func (server *Server) AdditionalRouter(router Router) *Server {
	extra := make([]Router, 0, len(server.extra)+1)
	extra = append(extra, server.extra...)
	extra = append(extra, router)

	next := server.clone()
	next.extra = extra

	return next
}

// WithPrefix returns a new Server whose composed router, including any routers attached later, is mounted
// under prefix.
func (server *Server) WithPrefix(prefix string) *Server {
	next := server.clone()
	next.prefix = joinPrefix(prefix, server.prefix)

	return next
}

// AsDefault returns a new Server marked as the default for host dispatch: it is consulted last, after every
// other hosted server has declined. At most one hosted server may be marked default.
func (server *Server) AsDefault() *Server {
	next := server.clone()
	next.isDefault = true

	return next
}

// IsDefault returns true when this server has been marked as the host's default via AsDefault.
func (server *Server) IsDefault() bool {
	return server.isDefault
}

// ServiceInfo returns the registration metadata for this server: the service name and the resolved
// descriptor's ACL entries. Computed once and memoized.
func (server *Server) ServiceInfo() ServiceInfo {
	info, _ := server.info.Load(func() (ServiceInfo, error) {
		descriptor := server.binding.Descriptor()

		var acls []ACL
		if len(descriptor.ACLs) > 0 {
			acls = make([]ACL, len(descriptor.ACLs))
			copy(acls, descriptor.ACLs)
		}

		return ServiceInfo{
			Name: server.name,
			ACLs: acls,
		}, nil
	})

	return info
}

func (server *Server) clone() *Server {
	return &Server{
		name:      server.name,
		binding:   server.binding,
		extra:     server.extra,
		prefix:    server.prefix,
		isDefault: server.isDefault,
		router:    &lazy[Router]{},
		info:      &lazy[ServiceInfo]{},
	}
}
