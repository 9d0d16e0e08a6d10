//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/locomotion/internal/config"
)

// InitializeRuntime assembles the sandbox from its configuration.
func InitializeRuntime(cfg *config.Config) (*Runtime, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
