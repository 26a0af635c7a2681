package battle

import "errors"

// Sentinel errors for staging and resolution.
var (
	//nolint:staticcheck // user-visible message is fixed.
	ErrCombatantsFull      = errors.New("Combatant list is full, cannot add more combatants.")
	ErrNotEnoughCombatants = errors.New("two combatants must be prepped for a battle")
)
