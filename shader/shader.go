// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader compiles shader source to SPIR-V in two phases,
// macro driven preprocessing and then optimizing compilation.
package shader

import "fmt"

// Kind is the pipeline stage a shader is written for
type Kind int

// Shader kinds
const (
	Vertex Kind = iota
	Fragment
	Compute
	Geometry
	TessControl
	TessEvaluation
)

var stages = [...]string{
	Vertex:         "vert",
	Fragment:       "frag",
	Compute:        "comp",
	Geometry:       "geom",
	TessControl:    "tesc",
	TessEvaluation: "tese",
}

var kindNames = [...]string{
	Vertex:         "vertex",
	Fragment:       "fragment",
	Compute:        "compute",
	Geometry:       "geometry",
	TessControl:    "tess control",
	TessEvaluation: "tess evaluation",
}

func (k Kind) valid() bool {
	return k >= 0 && int(k) < len(stages)
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Stage returns the short stage name used in file suffixes
func (k Kind) Stage() string {
	if !k.valid() {
		return ""
	}
	return stages[k]
}

// KindOf returns the kind for a short stage name
func KindOf(stage string) (Kind, bool) {
	for k, s := range stages {
		if s == stage {
			return Kind(k), true
		}
	}
	return 0, false
}

// OptimizationLevel selects how hard the compiler optimizes
type OptimizationLevel int

// Optimization levels, OptimizationNone is the default
const (
	OptimizationNone OptimizationLevel = iota
	OptimizationSize
	OptimizationPerformance
)

func (o OptimizationLevel) String() string {
	switch o {
	case OptimizationNone:
		return "none"
	case OptimizationSize:
		return "size"
	case OptimizationPerformance:
		return "performance"
	}
	return fmt.Sprintf("OptimizationLevel(%d)", int(o))
}

// ParseOptimizationLevel parses the names returned by String
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	for _, o := range []OptimizationLevel{OptimizationNone, OptimizationSize, OptimizationPerformance} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown optimization level %q", s)
}

// Backend does the actual work of a Compiler
type Backend interface {
	// Preprocess returns the source with macros defined and expanded
	Preprocess(source string, kind Kind, macros map[string]string) (string, error)

	// Compile translates source to SPIR-V words
	Compile(source string, kind Kind, level OptimizationLevel, debug bool) ([]uint32, error)
}

// Phases a CompileError can come from
const (
	PhasePreprocessing = "preprocessing"
	PhaseCompiling     = "compiling"
)

// CompileError carries the diagnostic of a failed phase
type CompileError struct {
	Phase   string
	Kind    Kind
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %s error (%s): %s", e.Phase, e.Kind, e.Message)
}

// Unwrap returns the backend error
func (e *CompileError) Unwrap() error {
	return e.Err
}
