package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// IDPrefix marks automated seat identifiers.
const IDPrefix = "bot:"

// Identity is a display profile for an automated seat.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

var defaultIdentities = []Identity{
	{ID: IDPrefix + "1", Name: "AI Player 1", Level: LevelStandard},
	{ID: IDPrefix + "2", Name: "AI Player 2", Level: LevelStandard},
	{ID: IDPrefix + "3", Name: "AI Player 3", Level: LevelStandard},
	{ID: IDPrefix + "4", Name: "AI Player 4", Level: LevelRandom},
}

var (
	identities []Identity
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities replaces the built-in roster with profiles from a JSON
// file. Loading is optional; without it the defaults apply.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var loaded []Identity
		if err := json.Unmarshal(data, &loaded); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		if len(loaded) > 0 {
			identities = loaded
		}
	})
	return loadErr
}

// IdentityForSeat returns the roster profile for a seat index, cycling if
// the roster is shorter than the table.
func IdentityForSeat(seat int) Identity {
	roster := identities
	if len(roster) == 0 {
		roster = defaultIdentities
	}
	return roster[((seat%len(roster))+len(roster))%len(roster)]
}

// IsBot reports whether the given player id belongs to an automated seat.
func IsBot(playerID string) bool {
	return strings.HasPrefix(playerID, IDPrefix)
}
