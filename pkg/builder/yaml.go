package builder

import (
	"github.com/Ouakat/SaaS-Delivery-sub001/internal/config"
)

// FromYAML loads a configuration file into a builder so it can be amended
// in code before the server starts.
func FromYAML(path string, envFiles []string) (*Builder, error) {
	if len(envFiles) > 0 {
		config.LoadEnvFiles(envFiles)
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:         cfg,
		middlewares: nil,
	}, nil
}
