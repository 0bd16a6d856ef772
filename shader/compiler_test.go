// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/devblok/gsvk/shader"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// undeclared lists the identifiers fakeBackend rejects when they survive
// conditional compilation
var undeclared = []string{"missing_symbol"}

// fakeBackend expands macros by prepending #define lines. It honours
// #ifdef, #ifndef, #else and #endif and compiles to a module holding
// one word per remaining source line.
type fakeBackend struct {
	failPreprocess error
	failCompile    error

	kind  shader.Kind
	level shader.OptimizationLevel
	debug bool
}

func (f *fakeBackend) Preprocess(source string, kind shader.Kind, macros map[string]string) (string, error) {
	if f.failPreprocess != nil {
		return "", f.failPreprocess
	}
	f.kind = kind
	var b strings.Builder
	for name, value := range macros {
		b.WriteString("#define " + name + " " + value + "\n")
	}
	b.WriteString(source)
	lines, err := expand(b.String())
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

func (f *fakeBackend) Compile(source string, kind shader.Kind, level shader.OptimizationLevel, debug bool) ([]uint32, error) {
	if f.failCompile != nil {
		return nil, f.failCompile
	}
	f.kind, f.level, f.debug = kind, level, debug

	lines, err := expand(source)
	if err != nil {
		return nil, err
	}
	words := []uint32{shader.Magic}
	for idx, line := range lines {
		for _, symbol := range undeclared {
			if strings.Contains(line, symbol) {
				return nil, fmt.Errorf("0:%d: '%s' : undeclared identifier", idx+1, symbol)
			}
		}
		words = append(words, 0)
	}
	return words, nil
}

// expand drops the lines excluded by conditional directives
func expand(source string) ([]string, error) {
	defined := map[string]bool{}
	var (
		kept   []string
		active = []bool{true}
	)
	for _, line := range strings.Split(source, "\n") {
		fields := strings.Fields(line)
		directive := ""
		if len(fields) > 0 && strings.HasPrefix(fields[0], "#") {
			directive = fields[0]
		}
		top := active[len(active)-1]

		switch directive {
		case "#ifdef", "#ifndef":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%s without a name", directive)
			}
			active = append(active, top && defined[fields[1]] == (directive == "#ifdef"))
		case "#else":
			if len(active) == 1 {
				return nil, errors.New("#else without #ifdef")
			}
			active[len(active)-1] = active[len(active)-2] && !top
		case "#endif":
			if len(active) == 1 {
				return nil, errors.New("#endif without #ifdef")
			}
			active = active[:len(active)-1]
		default:
			if !top {
				continue
			}
			if directive == "#define" && len(fields) > 1 {
				defined[fields[1]] = true
			}
			kept = append(kept, line)
		}
	}
	if len(active) != 1 {
		return nil, errors.New("unterminated #ifdef")
	}
	return kept, nil
}

func newCompiler(source string, backend shader.Backend) (*shader.Compiler, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return shader.NewCompiler(source, shader.Configuration{Backend: backend, Log: logger}), hook
}

func TestCompilerPreprocess(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newCompiler("void main() {}", backend)

	if err := c.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if c.Source() != "#define FOO 1\nvoid main() {}" {
		t.Fatalf("source not replaced: %q", c.Source())
	}
	if backend.kind != shader.Fragment {
		t.Fatalf("unexpected kind %v", backend.kind)
	}
	if c.Macros()["FOO"] != "1" {
		t.Fatalf("unexpected macros %v", c.Macros())
	}
}

func TestCompilerPreprocessFreshMacros(t *testing.T) {
	c, _ := newCompiler("x", &fakeBackend{})
	macros := map[string]string{"A": "1"}
	if err := c.Preprocess(macros, shader.Vertex); err != nil {
		t.Fatal(err)
	}
	macros["B"] = "2"
	if _, ok := c.Macros()["B"]; ok {
		t.Fatal("macros must be copied")
	}
	if err := c.Preprocess(nil, shader.Vertex); err != nil {
		t.Fatal(err)
	}
	if len(c.Macros()) != 0 {
		t.Fatalf("macros of an earlier run leaked: %v", c.Macros())
	}
}

func TestCompilerPreprocessFailure(t *testing.T) {
	c, hook := newCompiler("original", &fakeBackend{failPreprocess: errors.New("1:1: bad directive")})

	err := c.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment)
	var cerr *shader.CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a CompileError, got %v", err)
	}
	if cerr.Phase != shader.PhasePreprocessing || cerr.Kind != shader.Fragment || cerr.Message != "1:1: bad directive" {
		t.Fatalf("unexpected error %+v", cerr)
	}
	if c.Source() != "original" {
		t.Fatalf("source mutated on failure: %q", c.Source())
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != log.ErrorLevel || !strings.Contains(entry.Message, "Shader preprocessing error!\n1:1: bad directive") {
		t.Fatalf("diagnostic not logged: %+v", entry)
	}
}

func TestCompilerCompile(t *testing.T) {
	backend := &fakeBackend{}
	c, _ := newCompiler("a\nb", backend)

	if c.BytecodeLength() != 0 || c.Bytecode() != nil {
		t.Fatal("bytecode before compile")
	}
	if err := c.Compile(shader.Compute, shader.OptimizationPerformance, true); err != nil {
		t.Fatal(err)
	}
	if c.BytecodeLength() != 3 || c.Bytecode()[0] != shader.Magic {
		t.Fatalf("unexpected bytecode %v", c.Bytecode())
	}
	if backend.kind != shader.Compute || backend.level != shader.OptimizationPerformance || !backend.debug {
		t.Fatalf("options not forwarded: %+v", backend)
	}
}

func TestCompilerCompileFailureKeepsBytecode(t *testing.T) {
	backend := &fakeBackend{}
	c, hook := newCompiler("a", backend)
	if err := c.Compile(shader.Vertex, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	before := c.Bytecode()

	backend.failCompile = errors.New("0:3: syntax error")
	err := c.Compile(shader.Vertex, shader.OptimizationNone, false)
	var cerr *shader.CompileError
	if !errors.As(err, &cerr) || cerr.Phase != shader.PhaseCompiling {
		t.Fatalf("expected a compiling CompileError, got %v", err)
	}
	if !errors.Is(err, backend.failCompile) {
		t.Fatal("backend error must be wrapped")
	}
	if len(c.Bytecode()) != len(before) || &c.Bytecode()[0] != &before[0] {
		t.Fatal("bytecode changed on failure")
	}
	if !strings.Contains(hook.LastEntry().Message, "Shader compiling error!") {
		t.Fatalf("unexpected diagnostic %q", hook.LastEntry().Message)
	}
}

func TestCompilerMacroTakesEffect(t *testing.T) {
	source := loadTestShader(t, "macro.frag")

	with, _ := newCompiler(source, &fakeBackend{})
	if err := with.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(with.Source(), "missing_symbol") || strings.Contains(with.Source(), "#ifdef") {
		t.Fatalf("guarded branch survived preprocessing:\n%s", with.Source())
	}
	if err := with.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	if with.BytecodeLength() == 0 {
		t.Fatal("expected bytecode")
	}

	without, hook := newCompiler(source, &fakeBackend{})
	if err := without.Preprocess(nil, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	err := without.Compile(shader.Fragment, shader.OptimizationNone, false)
	var cerr *shader.CompileError
	if !errors.As(err, &cerr) || cerr.Phase != shader.PhaseCompiling {
		t.Fatalf("expected the unguarded branch to fail, got %v", err)
	}
	if !strings.Contains(cerr.Message, "missing_symbol") {
		t.Fatalf("unexpected diagnostic %q", cerr.Message)
	}
	if without.BytecodeLength() != 0 {
		t.Fatal("failed compile produced bytecode")
	}
	if !strings.Contains(hook.LastEntry().Message, "Shader compiling error!") {
		t.Fatalf("diagnostic not logged: %q", hook.LastEntry().Message)
	}
}

func TestCompilerUnpreprocessedSourceFails(t *testing.T) {
	c, _ := newCompiler(loadTestShader(t, "macro.frag"), &fakeBackend{})
	if err := c.Compile(shader.Fragment, shader.OptimizationNone, false); err == nil {
		t.Fatal("compiled without FOO defined")
	}
	if c.BytecodeLength() != 0 {
		t.Fatal("failed compile produced bytecode")
	}

	if err := c.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if err := c.Compile(shader.Fragment, shader.OptimizationNone, false); err != nil {
		t.Fatal(err)
	}
	before := c.BytecodeLength()

	if err := c.Preprocess(nil, shader.Fragment); err != nil {
		t.Fatal(err)
	}
	if c.BytecodeLength() != before {
		t.Fatal("preprocessing must not touch bytecode")
	}
}

func TestCompilerUnbalancedConditional(t *testing.T) {
	c, _ := newCompiler("#ifdef FOO\nvoid main() {}", &fakeBackend{})
	err := c.Preprocess(map[string]string{"FOO": "1"}, shader.Fragment)
	var cerr *shader.CompileError
	if !errors.As(err, &cerr) || cerr.Phase != shader.PhasePreprocessing {
		t.Fatalf("expected a preprocessing CompileError, got %v", err)
	}
	if c.Source() != "#ifdef FOO\nvoid main() {}" {
		t.Fatal("source mutated on failure")
	}
}

func TestCompilerClearBytecode(t *testing.T) {
	c, _ := newCompiler("a", &fakeBackend{})
	if err := c.Compile(shader.Fragment, shader.OptimizationSize, false); err != nil {
		t.Fatal(err)
	}
	c.ClearBytecode()
	if c.BytecodeLength() != 0 {
		t.Fatalf("expected no bytecode, got %d words", c.BytecodeLength())
	}
	if err := c.Compile(shader.Fragment, shader.OptimizationSize, false); err != nil {
		t.Fatal("compiling again must not need preprocessing")
	}
	if c.BytecodeLength() == 0 {
		t.Fatal("no bytecode after compiling again")
	}
}

func TestCompilerDefaultBackend(t *testing.T) {
	c := shader.NewCompiler("", shader.Configuration{})
	if c.Source() != "" {
		t.Fatal("unexpected source")
	}
}

func TestKindStages(t *testing.T) {
	for _, k := range []shader.Kind{shader.Vertex, shader.Fragment, shader.Compute, shader.Geometry, shader.TessControl, shader.TessEvaluation} {
		back, ok := shader.KindOf(k.Stage())
		if !ok || back != k {
			t.Fatalf("%v: stage %q did not map back", k, k.Stage())
		}
	}
	if _, ok := shader.KindOf("spv"); ok {
		t.Fatal("spv is not a stage")
	}
	if shader.Kind(42).Stage() != "" {
		t.Fatal("unknown kinds have no stage")
	}
}

func TestParseOptimizationLevel(t *testing.T) {
	for _, o := range []shader.OptimizationLevel{shader.OptimizationNone, shader.OptimizationSize, shader.OptimizationPerformance} {
		parsed, err := shader.ParseOptimizationLevel(o.String())
		if err != nil || parsed != o {
			t.Fatalf("%v did not parse back: %v", o, err)
		}
	}
	if _, err := shader.ParseOptimizationLevel("fast"); err == nil {
		t.Fatal("expected an error")
	}
}
