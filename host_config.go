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
	"fmt"

	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/identity"
	"github.com/pkg/errors"
)

// HostConfig is the configuration that will eventually be used to create a xbind.Host (which in turn houses
// all the components necessary to run one or more http.Server's over a set of descriptor bound Servers).
type HostConfig struct {
	DefaultHttpHandlerProviderImpl
	Name       string
	Services   []*ServiceConfig
	BindPoints []*BindPointConfig
	Options    HostOptions

	DefaultIdentity identity.Identity
	Identity        identity.Identity
}

// Parse parses a configuration map to set all relevant HostConfig values.
func (config *HostConfig) Parse(configMap map[interface{}]interface{}, pathContext string) error {
	//parse name, required, string
	if nameInterface, ok := configMap["name"]; ok {
		if name, ok := nameInterface.(string); ok {
			config.Name = name
		} else {
			return errors.New("name is required to be a string")
		}
	} else {
		return errors.New("name is required")
	}

	//parse services, require 1, object, defer
	if serviceInterface, ok := configMap["services"]; ok {
		if serviceArrayInterfaces, ok := serviceInterface.([]interface{}); ok {
			for i, serviceInterface := range serviceArrayInterfaces {
				if serviceMap, ok := serviceInterface.(map[interface{}]interface{}); ok {
					service := &ServiceConfig{}
					if err := service.Parse(serviceMap); err != nil {
						return fmt.Errorf("error parsing service configuration at index [%d]: %v", i, err)
					}

					config.Services = append(config.Services, service)
				} else {
					return fmt.Errorf("error parsing service configuration at index [%d]: not a map", i)
				}
			}
		} else {
			return errors.New("services section must be an array")
		}
	} else {
		return errors.New("services section is required")
	}

	//parse bindPoints
	if bindPointArrVal, ok := configMap["bindPoints"]; ok {
		if bindPointArr, ok := bindPointArrVal.([]interface{}); ok {
			for i, bp := range bindPointArr {
				if bpMap, ok := bp.(map[interface{}]interface{}); ok {
					bindPoint := &BindPointConfig{}
					if err := bindPoint.Parse(bpMap); err != nil {
						return errors.Wrapf(err, "error parsing bindPoint configuration at index [%d]", i)
					}

					config.BindPoints = append(config.BindPoints, bindPoint)
				} else {
					return fmt.Errorf("error parsing bindPoint configuration at index [%d]: not a map", i)
				}
			}
		} else {
			return errors.New("bindPoints must be an array")
		}
	} else {
		return errors.New("bindPoints is required")
	}

	//parse identity
	if identityInterface, ok := configMap["identity"]; ok {
		if identityMap, ok := identityInterface.(map[interface{}]interface{}); ok {
			if identityConfig, err := parseIdentityConfig(identityMap, pathContext+".identity"); err == nil {
				config.Identity, err = identity.LoadIdentity(*identityConfig)
				if err != nil {
					return fmt.Errorf("error loading identity: %v", err)
				}

				if err := config.Identity.WatchFiles(); err != nil {
					pfxlog.Logger().Warnf("could not enable file watching on bind point identity: %v", err)
				}
			} else {
				return fmt.Errorf("error parsing identity section: %v", err)
			}

		} else {
			return errors.New("identity section must be a map if defined")
		}

	} //no else, optional, will defer to default identity

	//parse options
	config.Options = HostOptions{}
	config.Options.Default()

	if optionsInterface, ok := configMap["options"]; ok {
		if optionMap, ok := optionsInterface.(map[interface{}]interface{}); ok {
			if err := config.Options.Parse(optionMap); err != nil {
				return fmt.Errorf("error parsing options section: %v", err)
			}
		} //no else, options are optional
	}

	return nil
}

// Validate all HostConfig values
func (config *HostConfig) Validate(registry Registry) error {
	if config.Name == "" {
		return errors.New("name must not be empty")
	}

	if len(config.Services) <= 0 {
		return errors.New("no services specified, must specify at least one")
	}

	for i, service := range config.Services {
		if err := service.Validate(); err != nil {
			return fmt.Errorf("invalid ServiceConfig at index [%d]: %v", i, err)
		}

		//check if binding is valid
		if binding := registry.Get(service.Binding()); binding == nil {
			return fmt.Errorf("invalid ServiceConfig at index [%d]: invalid binding %s", i, service.Binding())
		}
	}

	if len(config.BindPoints) <= 0 {
		return errors.New("no bindPoint specified, must specify at lest one")
	}

	for i, bindPoint := range config.BindPoints {
		if bindPoint != nil {
			if err := bindPoint.Validate(); err != nil {
				return fmt.Errorf("invalid bindPoint at index [%d]: %v", i, err)
			}
		} else {
			return errors.New("a nil bindPoint was processed")
		}
	}

	if config.Identity == nil {
		if config.DefaultIdentity == nil {
			return errors.New("no default identity specified and no identity specified")
		}

		config.Identity = config.DefaultIdentity
	}

	if err := config.Options.TlsVersionOptions.Validate(); err != nil {
		return fmt.Errorf("invalid TLS version option: %v", err)
	}

	if err := config.Options.TimeoutOptions.Validate(); err != nil {
		return fmt.Errorf("invalid timeout option: %v", err)
	}

	return nil
}
