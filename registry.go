/*
	Copyright NetFoundry, Inc.

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
	"fmt"

	"github.com/sirupsen/logrus"
)

// ServiceFactory builds Server instances for a binding name from ServiceConfig options. Factories typically
// create a descriptor, call ResolveAndBind with the application's implementation factory, and wrap the
// result via ForService.
type ServiceFactory interface {
	// Binding returns the string that uniquely identifies this factory and the Server instances it produces.
	Binding() string

	// New builds a Server for one ServiceConfig occurrence. The options map is parsed by the factory; its
	// valid keys and values are defined by the factory, not by xbind components.
	New(hostConfig *HostConfig, options map[interface{}]interface{}) (*Server, error)

	// Validate is given the full InstanceConfig before any Host is built, so a factory may reject
	// configurations it cannot serve at startup rather than at dispatch time.
	Validate(config *InstanceConfig) error
}

// Registry describes a registry of binding to ServiceFactory registrations
type Registry interface {
	Add(factory ServiceFactory) error
	Get(binding string) ServiceFactory
}

// RegistryMap is a basic Registry implementation backed by a simple mapping of binding (string) to ServiceFactory instances
type RegistryMap struct {
	factories map[string]ServiceFactory
}

// NewRegistryMap creates a new RegistryMap
func NewRegistryMap() *RegistryMap {
	return &RegistryMap{
		factories: map[string]ServiceFactory{},
	}
}

// Add adds a factory to the registry. Errors if a previous factory with the same binding is registered.
func (registry RegistryMap) Add(factory ServiceFactory) error {
	logrus.Debugf("adding xbind factory with binding: %v", factory.Binding())
	if _, ok := registry.factories[factory.Binding()]; ok {
		return fmt.Errorf("binding [%s] already registered", factory.Binding())
	}

	registry.factories[factory.Binding()] = factory

	return nil
}

// Get retrieves a factory based on a binding or nil if no factory for the binding is registered
func (registry RegistryMap) Get(binding string) ServiceFactory {
	return registry.factories[binding]
}

// Registrar publishes ServiceInfo values to a service registry or locator. It is an external collaborator:
// xbind hands it the metadata of every hosted service at Build time and performs no discovery of its own.
type Registrar interface {
	Register(info ServiceInfo) error
}
