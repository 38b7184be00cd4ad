package svm

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/YuminosukeSato/linearsvm/liblinear"
	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

// fileConfig is the YAML shape of Config. solver may be a LIBLINEAR name
// or its native number.
type fileConfig struct {
	Solver string `yaml:"solver"`
	Config `yaml:",inline"`
}

// ParseConfig reads a YAML document such as
//
//	solver: L2R_LR
//	c: 0.5
//	tolerance: 0.001
//
// Keys that are absent keep their DefaultConfig values; unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	fc := fileConfig{Config: DefaultConfig()}
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return Config{}, perrors.Mark(perrors.Wrap(err, "parse config"), perrors.ErrInvalidInput)
	}
	cfg := fc.Config
	if fc.Solver != "" {
		st, err := liblinear.ParseSolverType(fc.Solver)
		if err != nil {
			return Config{}, err
		}
		cfg.Solver = st
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, perrors.Mark(perrors.Wrapf(err, "read config %s", path), perrors.ErrInvalidInput)
	}
	return ParseConfig(data)
}

// MarshalConfig renders cfg as YAML accepted by ParseConfig.
func MarshalConfig(cfg Config) ([]byte, error) {
	fc := fileConfig{Solver: cfg.Solver.String(), Config: cfg}
	if !cfg.Solver.Valid() {
		fc.Solver = strconv.Itoa(int(cfg.Solver))
	}
	out, err := yaml.Marshal(fc)
	if err != nil {
		return nil, perrors.WithStack(err)
	}
	return out, nil
}
