// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"bytes"
	"errors"
	"os/exec"
	"sort"
	"strings"
)

// Language is the source language handed to glslc
type Language string

// Source languages
const (
	GLSL Language = "glsl"
	HLSL Language = "hlsl"
)

// DefaultGlslc is the name of the shaderc command line compiler
const DefaultGlslc = "glslc"

// Glslc is a Backend running the shaderc command line compiler
type Glslc struct {
	// Path of the executable, DefaultGlslc is looked up on PATH when empty
	Path string

	// Language defaults to GLSL
	Language Language

	// TargetEnv is passed as --target-env when set, e.g. vulkan1.0
	TargetEnv string
}

// Available tells whether the executable can be found
func (g *Glslc) Available() bool {
	_, err := exec.LookPath(g.path())
	return err == nil
}

func (g *Glslc) path() string {
	if g.Path == "" {
		return DefaultGlslc
	}
	return g.Path
}

func (g *Glslc) baseArgs(kind Kind) ([]string, error) {
	if !kind.valid() {
		return nil, errors.New("glslc: unknown shader kind " + kind.String())
	}
	lang := g.Language
	if lang == "" {
		lang = GLSL
	}
	args := []string{"-x", string(lang), "-fshader-stage=" + kind.Stage()}
	if g.TargetEnv != "" {
		args = append(args, "--target-env="+g.TargetEnv)
	}
	return args, nil
}

// Preprocess implements Backend
func (g *Glslc) Preprocess(source string, kind Kind, macros map[string]string) (string, error) {
	args, err := g.baseArgs(kind)
	if err != nil {
		return "", err
	}
	args = append(args, "-E")
	args = append(args, defineArgs(macros)...)

	out, err := g.run(source, args)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compile implements Backend
func (g *Glslc) Compile(source string, kind Kind, level OptimizationLevel, debug bool) ([]uint32, error) {
	args, err := g.baseArgs(kind)
	if err != nil {
		return nil, err
	}
	switch level {
	case OptimizationSize:
		args = append(args, "-Os")
	case OptimizationPerformance:
		args = append(args, "-O")
	default:
		args = append(args, "-O0")
	}
	if debug {
		args = append(args, "-g")
	}

	out, err := g.run(source, args)
	if err != nil {
		return nil, err
	}
	return Words(out)
}

// run feeds source on stdin and returns what was written to stdout
func (g *Glslc) run(source string, args []string) ([]byte, error) {
	args = append(args, "-o", "-", "-")
	cmd := exec.Command(g.path(), args...)
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, errors.New("glslc: " + err.Error())
	}
	return stdout.Bytes(), nil
}

func defineArgs(macros map[string]string) []string {
	names := make([]string, 0, len(macros))
	for name := range macros {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]string, 0, len(names))
	for _, name := range names {
		if value := macros[name]; value != "" {
			args = append(args, "-D"+name+"="+value)
		} else {
			args = append(args, "-D"+name)
		}
	}
	return args
}
