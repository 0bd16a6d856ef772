// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	log "github.com/sirupsen/logrus"
)

// Configuration is used to configure a Compiler
type Configuration struct {
	// Backend defaults to glslc found on PATH
	Backend Backend

	// Log receives diagnostics, the standard logger is used when nil
	Log log.FieldLogger
}

// Compiler holds one shader through preprocessing and compilation.
// Source and bytecode are independent, compiling again does not require
// preprocessing again. A Compiler is not safe for concurrent use,
// separate Compilers are.
type Compiler struct {
	backend Backend
	log     log.FieldLogger

	source   string
	macros   map[string]string
	bytecode []uint32
}

// NewCompiler creates a compiler for source
func NewCompiler(source string, cfg Configuration) *Compiler {
	c := &Compiler{
		backend: cfg.Backend,
		log:     cfg.Log,
		source:  source,
	}
	if c.backend == nil {
		c.backend = &Glslc{}
	}
	if c.log == nil {
		c.log = log.StandardLogger()
	}
	return c
}

// Preprocess defines macros and preprocesses the source for kind. On success
// the source is replaced by the preprocessed text. On failure the diagnostic
// is logged and returned, the source is left as it was.
func (c *Compiler) Preprocess(macros map[string]string, kind Kind) error {
	defined := make(map[string]string, len(macros))
	for name, value := range macros {
		defined[name] = value
	}

	source, err := c.backend.Preprocess(c.source, kind, defined)
	if err != nil {
		return c.fail(PhasePreprocessing, kind, err)
	}
	c.source = source
	c.macros = defined
	return nil
}

// Compile compiles the current source. On success the bytecode is replaced,
// on failure the diagnostic is logged and returned, the bytecode is kept.
func (c *Compiler) Compile(kind Kind, level OptimizationLevel, debug bool) error {
	words, err := c.backend.Compile(c.source, kind, level, debug)
	if err != nil {
		return c.fail(PhaseCompiling, kind, err)
	}
	c.bytecode = words
	return nil
}

func (c *Compiler) fail(phase string, kind Kind, err error) error {
	cerr := &CompileError{Phase: phase, Kind: kind, Message: err.Error(), Err: err}
	if e, ok := err.(*CompileError); ok {
		cerr.Message = e.Message
	}
	c.log.WithFields(log.Fields{
		"kind":  kind.String(),
		"phase": phase,
	}).Errorf("Shader %s error!\n%s", phase, cerr.Message)
	return cerr
}

// ClearBytecode releases the bytecode
func (c *Compiler) ClearBytecode() {
	c.bytecode = nil
}

// Bytecode returns the SPIR-V words of the last successful compilation
func (c *Compiler) Bytecode() []uint32 {
	return c.bytecode
}

// BytecodeLength returns the number of words of bytecode
func (c *Compiler) BytecodeLength() int {
	return len(c.bytecode)
}

// Source returns the current source text
func (c *Compiler) Source() string {
	return c.source
}

// Macros returns the macros of the last successful preprocessing
func (c *Compiler) Macros() map[string]string {
	return c.macros
}
