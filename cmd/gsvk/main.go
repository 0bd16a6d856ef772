// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"

	"github.com/devblok/gsvk/core"
	"github.com/devblok/gsvk/device"
	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	runtime.LockOSThread()
}

var (
	configFile = flag.String("config", "", "dotenv file with GSVK_ settings")
	debug      = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	adapter    = flag.String("adapter", "", "Adapter to run on as vendor:device in hex, overrides the configuration")
	verbose    = flag.Bool("v", false, "Log debug output")
	width      = flag.Int("width", 640, "Initial window width")
	height     = flag.Int("height", 480, "Initial window height")
)

// sdlWindow creates surfaces for an SDL window
type sdlWindow struct {
	window *sdl.Window
	driver *device.VulkanDriver
}

func (w sdlWindow) CreateSurface(instance device.Instance) (device.Surface, error) {
	surface, err := w.window.VulkanCreateSurface(w.driver.VkInstance(instance))
	if err != nil {
		return 0, err
	}
	return device.SurfaceFromPointer(surface), nil
}

func loadConfiguration() core.Configuration {
	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	cfg, err := core.LoadConfiguration(files...)
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	if *debug {
		cfg.Instance.Validation = true
	}
	if *adapter != "" {
		cfg.Adapter = *adapter
	}
	return cfg
}

func main() {
	flag.Parse()
	if level, err := log.ParseLevel(envy.Get("GSVK_LOG_LEVEL", "info")); err == nil {
		log.SetLevel(level)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	cfg := loadConfiguration()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.WithError(err).Fatal("sdl.Init()")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		log.WithError(err).Fatal("sdl.VulkanLoadLibrary()")
	}
	defer sdl.VulkanUnloadLibrary()

	driver, err := device.NewVulkanDriver(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		log.WithError(err).Fatal("device.NewVulkanDriver()")
	}

	window, err := sdl.CreateWindow("GSdx Vulkan",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(*width),
		int32(*height),
		sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		log.WithError(err).Fatal("sdl.CreateWindow()")
	}
	defer window.Destroy()

	gsDevice := core.NewGSDeviceVK(driver, cfg)
	if err := gsDevice.Create(sdlWindow{window: window, driver: driver}); err != nil {
		log.WithError(err).Error("device bring-up failed")
		os.Exit(1)
	}
	defer gsDevice.Destroy()

	if err := gsDevice.Reset(*width, *height); err != nil {
		log.WithError(err).Error("initial reset failed")
		return
	}

	/* Event loop */
	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.WindowEvent:
				if et.Event != sdl.WINDOWEVENT_SIZE_CHANGED || et.Data1 <= 0 || et.Data2 <= 0 {
					continue
				}
				if err := gsDevice.Reset(int(et.Data1), int(et.Data2)); err != nil {
					log.WithError(err).Error("reset failed")
					return
				}
			case *sdl.KeyboardEvent:
				if et.Keysym.Sym == sdl.K_ESCAPE {
					return
				}
			case *sdl.QuitEvent:
				return
			}
		}
		sdl.Delay(16)
	}
}
