package practice

import (
	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/memory"
	"github.com/abhisek/adaptiq/internal/selection"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/spacedrep"
	"github.com/abhisek/adaptiq/internal/weakspot"
)

// Config bundles the tunables of every scheduling component.
type Config struct {
	SpacedRep  spacedrep.Config  `mapstructure:"spacedrep"`
	Memory     memory.Config     `mapstructure:"memory"`
	Difficulty difficulty.Config `mapstructure:"difficulty"`
	WeakSpot   weakspot.Config   `mapstructure:"weakspot"`
	Selection  selection.Config  `mapstructure:"selection"`
	Session    session.Config    `mapstructure:"session"`
}

// DefaultConfig returns every component's defaults.
func DefaultConfig() Config {
	return Config{
		SpacedRep:  spacedrep.DefaultConfig(),
		Memory:     memory.DefaultConfig(),
		Difficulty: difficulty.DefaultConfig(),
		WeakSpot:   weakspot.DefaultConfig(),
		Selection:  selection.DefaultConfig(),
		Session:    session.DefaultConfig(),
	}
}
