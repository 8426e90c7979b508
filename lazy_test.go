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
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_lazy(t *testing.T) {

	t.Run("the function runs exactly once under concurrent first access", func(t *testing.T) {
		var runs int32

		cell := &lazy[int]{}

		const accessors = 64

		results := make([]int, accessors)
		start := make(chan struct{})
		wait := sync.WaitGroup{}

		for i := 0; i < accessors; i++ {
			wait.Add(1)
			go func(idx int) {
				defer wait.Done()
				<-start
				value, err := cell.Load(func() (int, error) {
					atomic.AddInt32(&runs, 1)
					return 42, nil
				})
				require.NoError(t, err)
				results[idx] = value
			}(i)
		}

		close(start)
		wait.Wait()

		req := require.New(t)
		req.Equal(int32(1), atomic.LoadInt32(&runs))
		for _, value := range results {
			req.Equal(42, value)
		}
	})

	t.Run("later loads do not replace the first result", func(t *testing.T) {
		cell := &lazy[string]{}

		first, err := cell.Load(func() (string, error) { return "first", nil })

		req := require.New(t)
		req.NoError(err)
		req.Equal("first", first)

		second, err := cell.Load(func() (string, error) { return "second", nil })
		req.NoError(err)
		req.Equal("first", second)
	})
}
