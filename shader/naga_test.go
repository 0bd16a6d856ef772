// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader_test

import (
	"strings"
	"testing"

	"github.com/devblok/gsvk/shader"
)

func TestNagaCompile(t *testing.T) {
	c, _ := newCompiler(loadTestShader(t, "solid.wgsl"), shader.Naga{})

	if err := c.Preprocess(nil, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if err := c.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		if msg := err.Error(); strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("naga limitation: %v", err)
		}
		t.Fatal(err)
	}
	if c.BytecodeLength() == 0 || c.Bytecode()[0] != shader.Magic {
		t.Fatalf("unexpected bytecode of %d words", c.BytecodeLength())
	}
}

func TestNagaRejectsMacros(t *testing.T) {
	source := loadTestShader(t, "solid.wgsl")
	c, _ := newCompiler(source, shader.Naga{})
	if err := c.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment); err == nil {
		t.Fatal("expected an error")
	}
	if c.Source() != source {
		t.Fatal("source mutated on failure")
	}
}

func TestNagaEntryPoint(t *testing.T) {
	c, _ := newCompiler(loadTestShader(t, "solid.wgsl"), shader.Naga{})
	if err := c.Compile(shader.Vertex, shader.OptimizationNone, false); err == nil {
		t.Fatal("a fragment only module must not compile as a vertex shader")
	}
	if err := c.Compile(shader.Geometry, shader.OptimizationNone, false); err == nil {
		t.Fatal("WGSL has no geometry shaders")
	}
	if c.BytecodeLength() != 0 {
		t.Fatal("failed compile produced bytecode")
	}
}
