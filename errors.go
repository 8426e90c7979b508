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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/michaelquigley/pfxlog"
)

// BindingError reports a descriptor that cannot be bound to an implementation. It is fatal: ResolveAndBind
// returns it and no ServiceBinding is produced.
type BindingError struct {
	Service string
	Err     error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("could not bind service [%s]: %v", e.Service, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// ResolverError reports a ServiceResolver failure. It is fatal: no partially resolved binding is produced.
type ResolverError struct {
	Service string
	Err     error
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("could not resolve descriptor for service [%s]: %v", e.Service, e.Err)
}

func (e *ResolverError) Unwrap() error {
	return e.Err
}

// ClientError marks a per request failure caused by the caller, surfaced as the declared status. Request
// body decoding failures are the common case. Any other error returned by an EndpointFunc is treated as an
// implementation failure and surfaced as http.StatusInternalServerError.
type ClientError struct {
	Status int
	Err    error
}

func NewClientError(status int, err error) *ClientError {
	return &ClientError{Status: status, Err: err}
}

func (e *ClientError) Error() string {
	return e.Err.Error()
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

func asClientError(err error) (*ClientError, bool) {
	clientErr := &ClientError{}
	if errors.As(err, &clientErr) {
		return clientErr, true
	}
	return nil, false
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(&errorBody{Error: message}); err != nil {
		pfxlog.Logger().Errorf("error writing error response body: %v", err)
	}
}
