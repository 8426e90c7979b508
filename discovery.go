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

	"github.com/pkg/errors"
)

// DefaultDiscoverySection is the root configuration key holding the service discovery lookup mapping.
const DefaultDiscoverySection = "discovery"

// LookupEntry describes how a discovery collaborator locates one service: the DNS name to look up and,
// optionally, the SRV port name and protocol to select among that name's records.
type LookupEntry struct {
	Lookup       string
	PortName     string
	PortProtocol string
}

// DiscoveryConfig maps service names to the lookups a discovery collaborator uses to locate them. xbind
// parses and validates the section but performs no resolution itself; the mapping is handed to the
// discovery collaborator alongside each hosted service's ServiceInfo.
type DiscoveryConfig struct {
	Lookups map[string]*LookupEntry
}

// Parse the configuration map for a DiscoveryConfig. Each key is a service name; each value is a map with a
// required "lookup" string and optional "port-name" and "port-protocol" strings.
func (config *DiscoveryConfig) Parse(configMap map[interface{}]interface{}) error {
	config.Lookups = map[string]*LookupEntry{}

	for nameVal, entryVal := range configMap {
		name, ok := nameVal.(string)

		if !ok {
			return fmt.Errorf("service name [%v] must be a string", nameVal)
		}

		entryMap, ok := entryVal.(map[interface{}]interface{})

		if !ok {
			return fmt.Errorf("entry for service [%s] must be a map", name)
		}

		entry := &LookupEntry{}

		if lookupVal, ok := entryMap["lookup"]; ok {
			if lookup, ok := lookupVal.(string); ok {
				entry.Lookup = lookup
			} else {
				return fmt.Errorf("lookup for service [%s] must be a string", name)
			}
		} else {
			return fmt.Errorf("lookup is required for service [%s]", name)
		}

		if portNameVal, ok := entryMap["port-name"]; ok && portNameVal != nil {
			if portName, ok := portNameVal.(string); ok {
				entry.PortName = portName
			} else {
				return fmt.Errorf("port-name for service [%s] if declared must be a string or null", name)
			}
		} //no else optional

		if portProtocolVal, ok := entryMap["port-protocol"]; ok && portProtocolVal != nil {
			if portProtocol, ok := portProtocolVal.(string); ok {
				entry.PortProtocol = portProtocol
			} else {
				return fmt.Errorf("port-protocol for service [%s] if declared must be a string or null", name)
			}
		} //no else optional

		config.Lookups[name] = entry
	}

	return nil
}

// Validate this configuration object.
func (config *DiscoveryConfig) Validate() error {
	for name, entry := range config.Lookups {
		if entry.Lookup == "" {
			return errors.Errorf("lookup for service [%s] must not be empty", name)
		}
	}

	return nil
}

// Lookup returns the entry for a service name or nil if none is configured.
func (config *DiscoveryConfig) Lookup(serviceName string) *LookupEntry {
	if config == nil || config.Lookups == nil {
		return nil
	}

	return config.Lookups[serviceName]
}
