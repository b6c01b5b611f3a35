package bot

import (
	"fmt"
	"math/rand"
	"time"

	"sgbridge/internal/domain"
)

// Strategy levels selectable via configuration.
const (
	LevelStandard = "standard"
	LevelRandom   = "random"
)

// NewBrain creates a strategy of the given level. A nil rng selects a
// time-seeded source; tests inject a seeded one.
func NewBrain(level string, rng *rand.Rand) (domain.Strategy, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case LevelStandard, "":
		return &StandardBrain{rng: rng}, nil
	case LevelRandom:
		return &RandomBrain{rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
