package catalog

import "fmt"

// Team is one club from the authoritative canonical team catalog.
type Team struct {
	TeamID string
	Name   string
}

func (t Team) Validate() error {
	if t.TeamID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// TeamLabel is one distinct team label observed in a provider's data,
// with the provider's own team id when the provider has one.
type TeamLabel struct {
	Label     string
	ForeignID string
}

// Player is one player row from a provider catalog. The same shape is
// used for the target records being resolved. Position may be empty.
type Player struct {
	NativeID  string
	Name      string
	TeamLabel string
	Position  string
}

func (p Player) Validate() error {
	if p.NativeID == "" {
		return fmt.Errorf("player native id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
