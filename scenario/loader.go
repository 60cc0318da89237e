/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package scenario

import (
	"io"
	"os"
	"reflect"

	"github.com/hyperledger-labs/meshbft/agent"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Load parses a YAML scenario. The YAML is first unmarshaled generically and
// then decoded onto the Scenario struct, so field types like orders get
// parsed from their string form.
func Load(r io.Reader) (*Scenario, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithMessage(err, "reading scenario")
	}

	var tree map[interface{}]interface{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, errors.WithMessage(err, "unmarshaling scenario yaml")
	}

	var s Scenario
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       orderDecodeHook,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(stringKeys(tree)); err != nil {
		return nil, errors.WithMessage(err, "decoding scenario")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile parses the YAML scenario at the given path.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "opening scenario %s", path)
	}
	defer f.Close()
	return Load(f)
}

// orderDecodeHook parses ATTACK/RETREAT strings into orders during decode.
func orderDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to == reflect.TypeOf(agent.Order(0)) && from.Kind() == reflect.String {
		return agent.ParseOrder(data.(string))
	}
	return data, nil
}

// stringKeys rewrites the map[interface{}]interface{} trees produced by
// yaml.v2 into map[string]interface{} trees mapstructure can walk.
func stringKeys(v interface{}) interface{} {
	switch value := v.(type) {
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(value))
		for k, inner := range value {
			key, ok := k.(string)
			if !ok {
				continue
			}
			converted[key] = stringKeys(inner)
		}
		return converted
	case []interface{}:
		converted := make([]interface{}, len(value))
		for i, inner := range value {
			converted[i] = stringKeys(inner)
		}
		return converted
	default:
		return v
	}
}
