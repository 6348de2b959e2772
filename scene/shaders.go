package scene

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ShaderProgram describes one known technique program: its lighting model
// and the parameter defaults merged into materials before the document's
// own values apply.
type ShaderProgram struct {
	Lighting string               `yaml:"lighting"`
	Defaults map[string][]float32 `yaml:"defaults"`
}

// ShaderRegistry maps technique program names to shader defaults. The
// loader receives one explicitly at construction instead of reaching into
// process-wide state.
type ShaderRegistry struct {
	Fallback string                    `yaml:"fallback"`
	Programs map[string]*ShaderProgram `yaml:"programs"`
}

// DefaultShaderRegistry covers the common-profile lighting models legacy
// documents reference by name.
func DefaultShaderRegistry() *ShaderRegistry {
	return &ShaderRegistry{
		Fallback: "lambert",
		Programs: map[string]*ShaderProgram{
			"constant": {
				Lighting: "constant",
				Defaults: map[string][]float32{
					"emission": {0, 0, 0, 1},
				},
			},
			"lambert": {
				Lighting: "lambert",
				Defaults: map[string][]float32{
					"diffuse": {0.8, 0.8, 0.8, 1},
					"ambient": {0.2, 0.2, 0.2, 1},
				},
			},
			"phong": {
				Lighting: "phong",
				Defaults: map[string][]float32{
					"diffuse":   {0.8, 0.8, 0.8, 1},
					"ambient":   {0.2, 0.2, 0.2, 1},
					"specular":  {0.2, 0.2, 0.2, 1},
					"shininess": {64},
				},
			},
			"blinn": {
				Lighting: "blinn",
				Defaults: map[string][]float32{
					"diffuse":   {0.8, 0.8, 0.8, 1},
					"ambient":   {0.2, 0.2, 0.2, 1},
					"specular":  {0.2, 0.2, 0.2, 1},
					"shininess": {64},
				},
			},
		},
	}
}

func LoadShaderRegistry(r io.Reader) (*ShaderRegistry, error) {
	reg := &ShaderRegistry{}
	if err := yaml.NewDecoder(r).Decode(reg); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode shader registry")
	}
	if reg.Programs == nil {
		return nil, errors.New("Shader registry has no programs")
	}
	return reg, nil
}

func LoadShaderRegistryFile(path string) (*ShaderRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open shader registry %q", path)
	}
	defer f.Close()
	return LoadShaderRegistry(f)
}

// Program resolves a technique program name, falling back to the
// registry's fallback entry for unknown names. May return nil when even
// the fallback is unknown.
func (r *ShaderRegistry) Program(name string) *ShaderProgram {
	if r == nil {
		return nil
	}
	if p, ok := r.Programs[name]; ok {
		return p
	}
	return r.Programs[r.Fallback]
}
