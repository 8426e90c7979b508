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

// ServiceResolver finalizes a descriptor's runtime specific details, e.g. concrete network ACLs, before
// binding. Resolve must be deterministic for a given descriptor and host configuration, and must return a
// new descriptor rather than mutating its input.
type ServiceResolver interface {
	Resolve(descriptor *ServiceDescriptor) (*ServiceDescriptor, error)
}

// ServiceResolverFunc adapts a function to the ServiceResolver interface.
type ServiceResolverFunc func(descriptor *ServiceDescriptor) (*ServiceDescriptor, error)

func (f ServiceResolverFunc) Resolve(descriptor *ServiceDescriptor) (*ServiceDescriptor, error) {
	return f(descriptor)
}

// DefaultServiceResolver returns descriptors unchanged, except that services declaring no ACL entries
// receive DefaultACLs. It is used by ResolveAndBind when no resolver is supplied.
type DefaultServiceResolver struct {
	DefaultACLs []ACL
}

var _ ServiceResolver = &DefaultServiceResolver{}

func (resolver *DefaultServiceResolver) Resolve(descriptor *ServiceDescriptor) (*ServiceDescriptor, error) {
	resolved := descriptor.Clone()

	if len(resolved.ACLs) == 0 && len(resolver.DefaultACLs) > 0 {
		resolved.ACLs = make([]ACL, len(resolver.DefaultACLs))
		copy(resolved.ACLs, resolver.DefaultACLs)
	}

	return resolved, nil
}
