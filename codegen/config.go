package codegen

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the shape of an optional hemc.yaml project file
// (SPEC_FULL.md AMBIENT STACK "Configuration"). CLI flags always win over
// file values — the same override order urfave/cli/v3 already gives flags
// over their declared defaults, extended one layer further.
type FileConfig struct {
	Optimize    *bool   `yaml:"optimize"`
	StackCheck  *bool   `yaml:"stack_check"`
	Sandbox     *bool   `yaml:"sandbox"`
	SandboxRoot *string `yaml:"sandbox_root"`
}

// LoadConfig reads path if it exists, returning a zero-value FileConfig
// (all fields nil, meaning "unset") when the file is absent — a missing
// hemc.yaml is not an error, since the file itself is entirely optional.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Options converts cfg into Context Options, to be applied before any
// flag-derived Option so flags still win when both are present.
func (cfg FileConfig) Options() []Option {
	var opts []Option
	if cfg.Optimize != nil {
		opts = append(opts, WithOptimize(*cfg.Optimize))
	}
	if cfg.StackCheck != nil {
		opts = append(opts, WithStackCheck(*cfg.StackCheck))
	}
	if cfg.Sandbox != nil && *cfg.Sandbox {
		root := "."
		if cfg.SandboxRoot != nil {
			root = *cfg.SandboxRoot
		}
		opts = append(opts, WithSandbox(root))
	}
	return opts
}
