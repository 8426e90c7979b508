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
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadConfigMap reads a YAML configuration file into the nested map[interface{}]interface{} form the Parse
// methods consume. Instance implementations that acquire configuration from other sources may skip this and
// hand LoadConfig an equivalent map directly.
func LoadConfigMap(path string) (map[interface{}]interface{}, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrapf(err, "could not read configuration file [%s]", path)
	}

	raw := map[string]interface{}{}

	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "could not parse configuration file [%s]", path)
	}

	return toInterfaceMap(raw), nil
}

func toInterfaceMap(stringMap map[string]interface{}) map[interface{}]interface{} {
	out := make(map[interface{}]interface{}, len(stringMap))

	for key, value := range stringMap {
		out[key] = normalizeValue(value)
	}

	return out
}

func normalizeValue(value interface{}) interface{} {
	switch val := value.(type) {
	case map[string]interface{}:
		return toInterfaceMap(val)
	case []interface{}:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	default:
		return value
	}
}
