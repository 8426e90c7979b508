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
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ServiceConfig(t *testing.T) {

	t.Run("binding, prefix, and options parse", func(t *testing.T) {
		service := &ServiceConfig{}

		err := service.Parse(map[interface{}]interface{}{
			"binding": "hello",
			"prefix":  "/api",
			"options": map[interface{}]interface{}{
				"greeting": "Hello",
			},
		})

		req := require.New(t)
		req.NoError(err)
		req.NoError(service.Validate())
		req.Equal("hello", service.Binding())
		req.Equal("/api", service.Prefix())
		req.Equal("Hello", service.Options()["greeting"])
	})

	t.Run("a missing binding is rejected", func(t *testing.T) {
		service := &ServiceConfig{}

		require.Error(t, service.Parse(map[interface{}]interface{}{}))
	})

	t.Run("a non-string binding is rejected", func(t *testing.T) {
		service := &ServiceConfig{}

		require.Error(t, service.Parse(map[interface{}]interface{}{"binding": 7}))
	})

	t.Run("a non-string prefix is rejected", func(t *testing.T) {
		service := &ServiceConfig{}

		require.Error(t, service.Parse(map[interface{}]interface{}{"binding": "hello", "prefix": 7}))
	})

	t.Run("a non-map options value is rejected", func(t *testing.T) {
		service := &ServiceConfig{}

		require.Error(t, service.Parse(map[interface{}]interface{}{"binding": "hello", "options": "nope"}))
	})

	t.Run("a prefix not beginning with slash fails validation", func(t *testing.T) {
		service := &ServiceConfig{}

		req := require.New(t)
		req.NoError(service.Parse(map[interface{}]interface{}{"binding": "hello", "prefix": "api"}))
		req.Error(service.Validate())
	})
}
