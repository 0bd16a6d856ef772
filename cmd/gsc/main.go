// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devblok/gsvk/shader"
	"github.com/devblok/gsvk/shadercache"
	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
)

// macroFlag collects repeated -D NAME=VALUE flags
type macroFlag map[string]string

func (m macroFlag) String() string {
	pairs := make([]string, 0, len(m))
	for name, value := range m {
		pairs = append(pairs, name+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (m macroFlag) Set(s string) error {
	name, value, _ := strings.Cut(s, "=")
	if name == "" {
		return errors.New("macro name is empty")
	}
	m[name] = value
	return nil
}

var (
	macros   = macroFlag{}
	srcDir   = flag.String("src", "", "Compile every shader source under the given folder")
	dstFile  = flag.String("out", "shaders.gsc", "Destination archive")
	spvDir   = flag.String("spv", "", "Also write loose .spv modules into the given folder")
	list     = flag.String("list", "", "List and verify the given archive")
	level    = flag.String("O", "performance", "Optimization level: none, size or performance")
	debug    = flag.Bool("g", false, "Emit debug info")
	glslc    = flag.String("glslc", envy.Get("GSVK_SHADER_COMPILER", shader.DefaultGlslc), "Path to glslc")
	parallel = flag.Int("j", 4, "Shaders compiled at once")
	force    = flag.Bool("force", false, "Overwrite the destination archive")
)

func init() {
	flag.Var(macros, "D", "Define a macro as NAME=VALUE, may be repeated")
}

func main() {
	flag.Parse()

	if *srcDir != "" && *list != "" {
		log.Fatal("only one operation at a time")
	}

	switch {
	case *srcDir != "":
		if err := compileAll(); err != nil {
			log.WithError(err).Fatal("compile")
		}
	case *list != "":
		if err := listArchive(*list); err != nil {
			log.WithError(err).Fatal("list")
		}
	default:
		flag.PrintDefaults()
	}
}

func compileAll() error {
	optimization, err := shader.ParseOptimizationLevel(*level)
	if err != nil {
		return err
	}
	if !*force {
		if _, err := os.Stat(*dstFile); err == nil {
			return errors.New("destination file exists, will not overwrite")
		}
	}
	if *spvDir != "" {
		if err := os.MkdirAll(*spvDir, 0755); err != nil {
			return err
		}
	}

	sources, err := shader.FindSources(*srcDir)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no shader sources under %s", *srcDir)
	}

	backend := &shader.Glslc{Path: *glslc}
	if !backend.Available() {
		return fmt.Errorf("%s not found", *glslc)
	}

	builder := shadercache.NewBuilder(shadercache.Header{
		Compiler:    *glslc,
		DateCreated: time.Now().Unix(),
	})

	var (
		wg     sync.WaitGroup
		mutex  sync.Mutex
		failed int
		tokens = make(chan struct{}, max(*parallel, 1))
	)
	for _, src := range sources {
		wg.Add(1)
		go func(src shader.Source) {
			defer wg.Done()
			tokens <- struct{}{}
			defer func() { <-tokens }()

			entry := log.WithField("shader", src.Path)
			if err := compileOne(builder, backend, src, optimization); err != nil {
				entry.WithError(err).Error("failed")
				mutex.Lock()
				failed++
				mutex.Unlock()
				return
			}
			entry.Debug("compiled")
		}(src)
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d shaders failed", failed, len(sources))
	}

	dst, err := os.Create(*dstFile)
	if err != nil {
		return err
	}
	defer dst.Close()

	num, err := builder.WriteTo(dst)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"archive": *dstFile,
		"modules": builder.Len(),
		"bytes":   num,
	}).Info("archive written")
	return nil
}

func compileOne(builder *shadercache.Builder, backend shader.Backend, src shader.Source, optimization shader.OptimizationLevel) error {
	text, err := src.Load()
	if err != nil {
		return err
	}

	compiler := shader.NewCompiler(text, shader.Configuration{Backend: backend})
	if err := compiler.Preprocess(macros, src.Kind); err != nil {
		return err
	}
	if err := compiler.Compile(src.Kind, optimization, *debug); err != nil {
		return err
	}

	key := shadercache.Key(text, shadercache.Options{
		Kind:         src.Kind,
		Optimization: optimization,
		Debug:        *debug,
		Macros:       macros,
	})
	if err := builder.Add(key, src.OutputName(), compiler.Bytecode()); err != nil {
		if errors.Is(err, shadercache.ErrDuplicate) {
			log.WithField("shader", src.Path).Warn("identical shader already compiled")
			return nil
		}
		return err
	}

	if *spvDir != "" {
		path := filepath.Join(*spvDir, src.OutputName())
		if err := os.WriteFile(path, shader.Bytes(compiler.Bytecode()), 0644); err != nil {
			return err
		}
	}
	return nil
}

func listArchive(path string) error {
	f, err := shadercache.OpenFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header := f.Header()
	fmt.Printf("compiler %s, created %s, version %d\n",
		header.Compiler, time.Unix(header.DateCreated, 0).Format(time.RFC3339), header.Version)

	var broken int
	for _, e := range f.Entries() {
		status := "ok"
		if _, err := f.Lookup(e.Key); err != nil {
			status = err.Error()
			broken++
		}
		fmt.Printf("%-32s %8d %8d %s %s\n", e.Name, e.Size, e.CompressedSize, e.Key[:min(12, len(e.Key))], status)
	}
	if broken > 0 {
		return fmt.Errorf("%d broken entries", broken)
	}
	return nil
}
