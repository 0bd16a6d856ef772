// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"errors"
	"strings"

	"github.com/gogpu/naga"
)

// Naga is a Backend compiling WGSL in process. WGSL has no preprocessor,
// so preprocessing without macros returns the source unchanged and any
// macro is an error.
type Naga struct{}

var nagaAttributes = map[Kind]string{
	Vertex:   "@vertex",
	Fragment: "@fragment",
	Compute:  "@compute",
}

// Preprocess implements Backend
func (Naga) Preprocess(source string, kind Kind, macros map[string]string) (string, error) {
	if len(macros) > 0 {
		return "", errors.New("naga: WGSL does not support macros")
	}
	return source, nil
}

// Compile implements Backend. Optimization and debug info are left to naga.
func (Naga) Compile(source string, kind Kind, level OptimizationLevel, debug bool) ([]uint32, error) {
	attr, ok := nagaAttributes[kind]
	if !ok {
		return nil, errors.New("naga: no WGSL entry point for " + kind.String() + " shaders")
	}
	if !strings.Contains(source, attr) {
		return nil, errors.New("naga: source has no " + attr + " entry point")
	}

	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	return Words(spirv)
}
