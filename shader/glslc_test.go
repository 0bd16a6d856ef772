// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader_test

import (
	"errors"
	"testing"

	"github.com/devblok/gsvk/shader"
	"github.com/gobuffalo/packr"
)

var testShaders packr.Box

func init() {
	testShaders = packr.NewBox("./testdata")
}

func loadTestShader(t *testing.T, name string) string {
	t.Helper()
	source, err := testShaders.FindString(name)
	if err != nil {
		t.Fatal(err)
	}
	return source
}

func glslc(t *testing.T) *shader.Glslc {
	t.Helper()
	g := &shader.Glslc{}
	if !g.Available() {
		t.Skip("glslc is not installed")
	}
	return g
}

func TestGlslcSmoke(t *testing.T) {
	c, _ := newCompiler(loadTestShader(t, "smoke.frag"), glslc(t))

	if err := c.Preprocess(nil, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if err := c.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	if c.BytecodeLength() == 0 || c.Bytecode()[0] != shader.Magic {
		t.Fatalf("unexpected bytecode of %d words", c.BytecodeLength())
	}
}

func TestGlslcMacroTakesEffect(t *testing.T) {
	g := glslc(t)
	source := loadTestShader(t, "macro.frag")

	with, _ := newCompiler(source, g)
	if err := with.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if with.Source() == source {
		t.Fatal("preprocessing must replace the source")
	}
	if err := with.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	if with.BytecodeLength() == 0 {
		t.Fatal("expected bytecode")
	}

	without, _ := newCompiler(source, g)
	if err := without.Preprocess(nil, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	err := without.Compile(shader.Fragment, shader.OptimizationNone, false)
	var cerr *shader.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected the unguarded branch to fail, got %v", err)
	}
}

func TestGlslcInvalidSourceKeepsBytecode(t *testing.T) {
	g := glslc(t)
	c, hook := newCompiler(loadTestShader(t, "smoke.frag"), g)
	if err := c.Compile(shader.Fragment, shader.OptimizationPerformance, true); err != nil {
		t.Fatal(err)
	}
	before := c.BytecodeLength()

	invalid, _ := newCompiler(loadTestShader(t, "invalid.frag"), g)
	if err := invalid.Compile(shader.Fragment, shader.OptimizationNone, false); err == nil {
		t.Fatal("invalid source compiled")
	}
	if invalid.BytecodeLength() != 0 {
		t.Fatal("failed compile produced bytecode")
	}

	if err := c.Compile(shader.Vertex, shader.OptimizationNone, false); err == nil {
		t.Fatal("a fragment shader must not compile as a vertex shader")
	}
	if c.BytecodeLength() != before {
		t.Fatal("bytecode changed on failure")
	}
	if len(hook.AllEntries()) == 0 {
		t.Fatal("diagnostic not logged")
	}
}

func TestGlslcOptimizationLevels(t *testing.T) {
	g := glslc(t)
	source := loadTestShader(t, "smoke.frag")
	for _, level := range []shader.OptimizationLevel{shader.OptimizationNone, shader.OptimizationSize, shader.OptimizationPerformance} {
		c, _ := newCompiler(source, g)
		if err := c.Compile(shader.Fragment, level, false); err != nil {
			t.Fatalf("%v: %v", level, err)
		}
	}

	plain, _ := newCompiler(source, g)
	debug, _ := newCompiler(source, g)
	if err := plain.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	if err := debug.Compile(shader.Fragment, shader.OptimizationNone, true); err != nil {
		t.Fatal(err)
	}
	if debug.BytecodeLength() <= plain.BytecodeLength() {
		t.Fatalf("debug info must grow the module: %d <= %d", debug.BytecodeLength(), plain.BytecodeLength())
	}
}

func TestGlslcMissingExecutable(t *testing.T) {
	g := &shader.Glslc{Path: "/nonexistent/glslc"}
	if g.Available() {
		t.Fatal("a missing executable is not available")
	}
	c, _ := newCompiler("void main() {}", g)
	if err := c.Compile(shader.Fragment, shader.OptimizationNone, false); err == nil {
		t.Fatal("expected an error")
	}
}
