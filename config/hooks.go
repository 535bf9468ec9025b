package config

import "fmt"

type Hooks struct {
	Enabled bool    `mapstructure:"enabled"`
	Modules Modules `mapstructure:"modules"`
}

// Modules mapping provides module specific configuration, format: map[vendor_name]map[module_name]interface{}
// actual configuration parsing performed by modules
type Modules map[string]map[string]interface{}

func (cfg *Hooks) validate(errs []error) []error {
	for vendor, modules := range cfg.Modules {
		for name, moduleCfg := range modules {
			if moduleCfg == nil {
				continue
			}
			if _, ok := moduleCfg.(map[string]interface{}); !ok {
				errs = append(errs, fmt.Errorf("hooks.modules.%s.%s must be an object", vendor, name))
			}
		}
	}
	return errs
}
