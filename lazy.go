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

import "sync"

// lazy is a one shot initialization cell backing the deferred values in this package: the realized service
// implementation, a Server's composed router, and its ServiceInfo. Load runs fn exactly once, even under
// concurrent first access; every caller observes the same value and error.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) Load(fn func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = fn()
	})

	return l.value, l.err
}
