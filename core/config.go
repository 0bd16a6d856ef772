// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devblok/gsvk/device"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Configuration keys read by LoadConfiguration
const (
	EnvAdapter    = "GSVK_ADAPTER"
	EnvValidation = "GSVK_VALIDATION"
	EnvLayers     = "GSVK_LAYERS"
)

// DefaultAdapter selects the adapter by score
const DefaultAdapter = "default"

// DefaultValidationLayers is the layer policy used when none is configured
var DefaultValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

// DefaultApplicationInfo identifies the renderer to the driver
var DefaultApplicationInfo = device.ApplicationInfo{
	Name:          "GSdxVulkan",
	Version:       device.MakeVersion(1, 0, 0),
	EngineName:    "GSdxVulkanEngine",
	EngineVersion: device.MakeVersion(1, 0, 0),
	APIVersion:    device.MakeVersion(1, 0, 0),
}

// Configuration defines a device configuration setting
type Configuration struct {
	Instance InstanceConfiguration

	// Adapter is either DefaultAdapter or an adapter id as
	// formatted by AdapterID.String
	Adapter string

	// Log receives bring-up diagnostics, the standard logger is used when nil
	Log log.FieldLogger
}

// InstanceConfiguration is used to configure the instance
type InstanceConfiguration struct {
	Application device.ApplicationInfo

	// Validation enables the validation layers named by Layers
	Validation bool

	// Layers is the validation layer policy, every entry is enabled
	// when an available layer name starts with it
	Layers []string
}

// DefaultConfiguration returns the configuration used when nothing is set
func DefaultConfiguration() Configuration {
	return Configuration{
		Instance: InstanceConfiguration{
			Application: DefaultApplicationInfo,
			Layers:      append([]string(nil), DefaultValidationLayers...),
		},
		Adapter: DefaultAdapter,
	}
}

// LoadConfiguration reads the given dotenv files on top of the default
// configuration, later files win. Values in the environment win over files.
func LoadConfiguration(files ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	values := map[string]string{}
	for _, file := range files {
		env, err := godotenv.Read(file)
		if err != nil {
			return cfg, fmt.Errorf("godotenv.Read(%s): %w", file, err)
		}
		for k, v := range env {
			values[k] = v
		}
	}
	lookup := func(key string) string {
		return strings.TrimSpace(envy.Get(key, values[key]))
	}

	if adapter := lookup(EnvAdapter); adapter != "" {
		if _, err := ParseAdapterID(adapter); err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvAdapter, err)
		}
		cfg.Adapter = adapter
	}

	if validation := lookup(EnvValidation); validation != "" {
		enabled, err := strconv.ParseBool(validation)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", EnvValidation, err)
		}
		cfg.Instance.Validation = enabled
	}

	if layers := lookup(EnvLayers); layers != "" {
		cfg.Instance.Layers = cfg.Instance.Layers[:0]
		for _, layer := range strings.Split(layers, ",") {
			if layer = strings.TrimSpace(layer); layer != "" {
				cfg.Instance.Layers = append(cfg.Instance.Layers, layer)
			}
		}
	}

	return cfg, nil
}

func (c Configuration) logger() log.FieldLogger {
	if c.Log == nil {
		return log.StandardLogger()
	}
	return c.Log
}
