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
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Codec encodes endpoint results onto the wire and decodes request bodies. Endpoints without their own
// Codec use the router level default, which is JsonCodec unless RouterOptions says otherwise.
type Codec interface {
	ContentType() string
	Decode(reader io.Reader, v interface{}) error
	Encode(writer io.Writer, v interface{}) error
}

// DefaultCodec is used by endpoint routers when neither the endpoint nor the RouterOptions declare a codec.
var DefaultCodec Codec = JsonCodec{}

// JsonCodec reads and writes application/json bodies via encoding/json.
type JsonCodec struct{}

var _ Codec = JsonCodec{}

func (JsonCodec) ContentType() string {
	return "application/json"
}

func (JsonCodec) Decode(reader io.Reader, v interface{}) error {
	return json.NewDecoder(reader).Decode(v)
}

func (JsonCodec) Encode(writer io.Writer, v interface{}) error {
	return json.NewEncoder(writer).Encode(v)
}

// TextCodec reads and writes text/plain bodies. Results are written via their string form; decoding targets
// must be *string.
type TextCodec struct{}

var _ Codec = TextCodec{}

func (TextCodec) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (TextCodec) Decode(reader io.Reader, v interface{}) error {
	target, ok := v.(*string)

	if !ok {
		return errors.Errorf("text decoding requires a *string target, got [%T]", v)
	}

	data, err := io.ReadAll(reader)

	if err != nil {
		return err
	}

	*target = string(data)

	return nil
}

func (TextCodec) Encode(writer io.Writer, v interface{}) error {
	_, err := fmt.Fprint(writer, v)
	return err
}
