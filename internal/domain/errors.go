package domain

import "errors"

// Rule violations are deterministic rejections: a failed action leaves the
// game exactly as it was.
var (
	ErrIllegalTurn  = errors.New("not the active player")
	ErrIllegalPhase = errors.New("action not valid in current phase")
	ErrIllegalBid   = errors.New("bid is malformed or not higher than the current bid")
	ErrIllegalCard  = errors.New("card is not in hand or violates play rules")
	ErrGameFull     = errors.New("all four seats are taken")
)
