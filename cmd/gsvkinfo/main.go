// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/devblok/gsvk/core"
	"github.com/devblok/gsvk/device"
	log "github.com/sirupsen/logrus"
)

var (
	debug  = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	pretty = flag.Bool("pretty", false, "Indent the output")
)

func main() {
	flag.Parse()

	driver, err := device.NewVulkanDriver(nil)
	if err != nil {
		log.WithError(err).Fatal("device.NewVulkanDriver()")
	}

	cfg := core.DefaultConfiguration()
	cfg.Instance.Validation = *debug

	instance, err := core.CreateInstance(driver, cfg.Instance)
	if err != nil {
		log.WithError(err).Fatal("core.CreateInstance()")
	}
	defer instance.Destroy()

	devices, err := instance.PhysicalDevices()
	if err != nil {
		log.WithError(err).Error("enumerating physical devices")
		return
	}

	var out []byte
	if *pretty {
		out, err = json.MarshalIndent(core.RankDevices(devices), "", "  ")
	} else {
		out, err = json.Marshal(core.RankDevices(devices))
	}
	if err != nil {
		log.WithError(err).Error("json.Marshal()")
		return
	}
	fmt.Fprintf(os.Stdout, "%s\n", out)
}
