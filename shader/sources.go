// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const glslSuffix = ".glsl"

// Source is a shader file found on disk
type Source struct {
	Path string
	Name string
	Kind Kind
}

// FindSources walks dir for shader sources named name.<stage> or
// name.<stage>.glsl, where stage is one of the short stage names.
// Other files are skipped. Sources are sorted by path.
func FindSources(dir string) ([]Source, error) {
	var sources []Source
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}

		nodes := strings.Split(strings.TrimSuffix(f.Name(), glslSuffix), ".")
		if len(nodes) != 2 || nodes[0] == "" {
			return nil
		}

		kind, ok := KindOf(nodes[1])
		if !ok {
			return nil
		}
		sources = append(sources, Source{
			Path: path,
			Name: nodes[0],
			Kind: kind,
		})
		return nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})
	return sources, nil
}

// Load reads the source text
func (s Source) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutputName is the file name of the compiled module, name.<stage>.spv
func (s Source) OutputName() string {
	return s.Name + "." + s.Kind.Stage() + ".spv"
}
