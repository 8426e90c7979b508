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
	"strings"

	"github.com/pkg/errors"
)

// ACL is a single access control entry published alongside a service's registration metadata. Entries are
// opaque to the routing layer; a ServiceResolver finalizes them and discovery collaborators consume them.
type ACL struct {
	Name   string //entry name, e.g. "corp-network"
	Target string //network target the entry applies to, e.g. a CIDR or host:port pattern
}

// EndpointFunc invokes the implementation method an Endpoint maps to. The impl argument is the realized
// implementation instance supplied by the owning ServiceBinding; an EndpointFunc asserts it to the concrete
// implementation type it was registered against. Returning a nil result with a nil error produces an empty
// response with http.StatusNoContent.
type EndpointFunc func(ctx context.Context, impl interface{}, call *Call) (interface{}, error)

// Endpoint declares one callable operation of a service: an HTTP method, a path template, and the
// EndpointFunc that dispatches matched requests to the service implementation. Path template segments
// beginning with ':' capture path parameters, e.g. "/hello/:id".
type Endpoint struct {
	Method      string
	Path        string
	Description string

	// Status is the response status used for non-nil results. Defaults to http.StatusOK.
	Status int

	// Codec overrides the router level codec for this endpoint when set.
	Codec Codec

	Invoke EndpointFunc
}

// ServiceDescriptor is the immutable declaration of a service: its name, its callable endpoints, and the
// access control entries published with its registration metadata. Descriptors are created once per service
// type and never mutated after creation; resolution produces a new descriptor rather than altering one.
type ServiceDescriptor struct {
	Name      string
	Endpoints []Endpoint
	ACLs      []ACL
}

// Validate checks that the descriptor can be bound to an implementation. Errors reported here are fatal at
// bind time: an invalid descriptor never produces a router.
func (descriptor *ServiceDescriptor) Validate() error {
	if descriptor.Name == "" {
		return errors.New("service name must not be empty")
	}

	if len(descriptor.Endpoints) == 0 {
		return errors.Errorf("service [%s] declares no endpoints, must declare at least one", descriptor.Name)
	}

	seen := map[string]string{}

	for i, endpoint := range descriptor.Endpoints {
		if endpoint.Method == "" {
			return errors.Errorf("endpoint at index [%d] for service [%s] must declare a method", i, descriptor.Name)
		}

		if endpoint.Path == "" {
			return errors.Errorf("endpoint at index [%d] for service [%s] must declare a path", i, descriptor.Name)
		}

		if !strings.HasPrefix(endpoint.Path, "/") {
			return errors.Errorf("endpoint path [%s] for service [%s] must begin with '/'", endpoint.Path, descriptor.Name)
		}

		if endpoint.Invoke == nil {
			return errors.Errorf("endpoint [%s %s] for service [%s] has no invoke function, the implementation cannot serve it", endpoint.Method, endpoint.Path, descriptor.Name)
		}

		key := strings.ToUpper(endpoint.Method) + " " + endpoint.Path
		if previous, ok := seen[key]; ok {
			return errors.Errorf("duplicate endpoint [%s] for service [%s], previously declared as [%s]", key, descriptor.Name, previous)
		}
		seen[key] = key
	}

	return nil
}

// Clone returns a deep copy of the descriptor. Resolvers use it to produce resolved descriptors without
// mutating the original.
func (descriptor *ServiceDescriptor) Clone() *ServiceDescriptor {
	clone := &ServiceDescriptor{
		Name: descriptor.Name,
	}

	if descriptor.Endpoints != nil {
		clone.Endpoints = make([]Endpoint, len(descriptor.Endpoints))
		copy(clone.Endpoints, descriptor.Endpoints)
	}

	if descriptor.ACLs != nil {
		clone.ACLs = make([]ACL, len(descriptor.ACLs))
		copy(clone.ACLs, descriptor.ACLs)
	}

	return clone
}
