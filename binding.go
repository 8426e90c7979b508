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
	"github.com/pkg/errors"
)

// ImplementationFactory constructs the service implementation instance. It runs at most once, deferred until
// the implementation is first needed, which lets implementations with side effecting construction (opening
// resources and the like) be declared before those resources exist.
type ImplementationFactory func() (interface{}, error)

// ServiceBinding associates one resolved ServiceDescriptor, one lazily realized implementation instance, and
// the Router dispatching to it. The binding owns the router; the implementation is realized exactly once, on
// first access, and shared by every request thereafter.
type ServiceBinding struct {
	descriptor *ServiceDescriptor
	factory    ImplementationFactory
	impl       lazy[interface{}]
	router     Router
}

// ResolveAndBind passes the descriptor through resolver to obtain a resolved descriptor, builds a router
// bound to the unresolved descriptor's endpoint definitions and the lazily realized implementation, and
// returns the binding. A nil resolver means DefaultServiceResolver. Resolution or validation failures abort
// construction entirely: no partially initialized binding is produced.
func ResolveAndBind(resolver ServiceResolver, descriptor *ServiceDescriptor, factory ImplementationFactory, options RouterOptions) (*ServiceBinding, error) {
	if descriptor == nil {
		return nil, errors.New("a descriptor is required")
	}

	if factory == nil {
		return nil, &BindingError{Service: descriptor.Name, Err: errors.New("an implementation factory is required")}
	}

	if resolver == nil {
		resolver = &DefaultServiceResolver{}
	}

	if err := descriptor.Validate(); err != nil {
		return nil, &BindingError{Service: descriptor.Name, Err: err}
	}

	resolved, err := resolver.Resolve(descriptor)

	if err != nil {
		return nil, &ResolverError{Service: descriptor.Name, Err: err}
	}

	if resolved == nil {
		return nil, &ResolverError{Service: descriptor.Name, Err: errors.New("resolver returned a nil descriptor")}
	}

	binding := &ServiceBinding{
		descriptor: resolved,
		factory:    factory,
	}

	router, err := NewEndpointRouter(descriptor, binding.Implementation, options)

	if err != nil {
		return nil, err
	}

	binding.router = router

	return binding, nil
}

// Descriptor returns the resolved descriptor.
func (binding *ServiceBinding) Descriptor() *ServiceDescriptor {
	return binding.descriptor
}

// Implementation realizes and returns the implementation instance. The factory runs exactly once, even under
// concurrent first access; every caller observes the same instance or the same construction error.
func (binding *ServiceBinding) Implementation() (interface{}, error) {
	return binding.impl.Load(binding.factory)
}

// Router returns the router dispatching to this binding's implementation.
func (binding *ServiceBinding) Router() Router {
	return binding.router
}
