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
	"strings"

	"github.com/pkg/errors"
)

// ServiceConfig represents one hosted service by binding name. Each ServiceConfig is used against a Registry
// to locate the proper ServiceFactory to generate a Server. The options provided by this structure are parsed
// by the ServiceFactory; the valid keys and values are not defined by xbind components, but by that factory
// and its resulting Server's.
type ServiceConfig struct {
	binding string
	prefix  string
	options map[interface{}]interface{}
}

// Binding returns the string that uniquely identifies both the ServiceFactory and resulting Server instances
// that will be attached to some HostConfig and its resulting Host.
func (service *ServiceConfig) Binding() string {
	return service.binding
}

// Prefix returns the optional path prefix the service's composed router is mounted under. Empty means the
// router is consulted with request paths unaltered.
func (service *ServiceConfig) Prefix() string {
	return service.prefix
}

// Options returns the options associated with this ServiceConfig binding.
func (service *ServiceConfig) Options() map[interface{}]interface{} {
	return service.options
}

// Parse the configuration map for a ServiceConfig.
func (service *ServiceConfig) Parse(serviceConfigMap map[interface{}]interface{}) error {
	if bindingInterface, ok := serviceConfigMap["binding"]; ok {
		if binding, ok := bindingInterface.(string); ok {
			service.binding = binding
		} else {
			return errors.New("binding must be a string")
		}
	} else {
		return errors.New("binding is required")
	}

	if prefixInterface, ok := serviceConfigMap["prefix"]; ok {
		if prefix, ok := prefixInterface.(string); ok {
			service.prefix = prefix
		} else {
			return errors.New("prefix if declared must be a string")
		}
	} //no else optional

	if optionsInterface, ok := serviceConfigMap["options"]; ok {
		if optionsMap, ok := optionsInterface.(map[interface{}]interface{}); ok {
			service.options = optionsMap //leave to bindings to interpret further
		} else {
			return errors.New("options if declared must be a map")
		}
	} //no else optional

	return nil
}

// Validate this configuration object.
func (service *ServiceConfig) Validate() error {
	if service.Binding() == "" {
		return errors.New("binding must be specified")
	}

	if service.prefix != "" && !strings.HasPrefix(service.prefix, "/") {
		return errors.Errorf("prefix [%s] must begin with '/'", service.prefix)
	}

	return nil
}
