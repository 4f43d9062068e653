// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yamlx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

func FromFileV3[T any](file string) (T, error) {
	var data T

	res, err := os.ReadFile(file)
	if err != nil {
		return data, fmt.Errorf("error while reading file from %s :%w", file, err)
	}

	if err := yaml.Unmarshal(res, &data); err != nil {
		return data, fmt.Errorf("error while unmarshalling file from %s :%w", file, err)
	}

	return data, nil
}

func UnmarshalV3(in []byte, out any) error {
	if err := yaml.Unmarshal(in, out); err != nil {
		return fmt.Errorf("error while unmarshalling yaml: %w", err)
	}

	return nil
}

func MarshalV3(in any) ([]byte, error) {
	out, err := yaml.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("error while marshalling yaml: %w", err)
	}

	return out, nil
}

// Convert re-encodes a loosely typed document into a typed struct using its yaml tags.
func Convert[T any](in any) (T, error) {
	var out T

	b, err := MarshalV3(in)
	if err != nil {
		return out, err
	}

	if err := UnmarshalV3(b, &out); err != nil {
		return out, err
	}

	return out, nil
}
