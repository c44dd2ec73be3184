package events

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form of one delivered event: a type discriminator
// plus the typed payload.
type Envelope struct {
	Type  string          `json:"type"`
	Event json.RawMessage `json:"event"`
}

// Decode turns an envelope into its concrete event. Unknown types are an
// error so a feed schema drift fails loudly instead of silently skipping.
func Decode(env Envelope) (Event, error) {
	var (
		ev  Event
		err error
	)
	switch env.Type {
	case "ReserveInitialized":
		ev, err = unmarshal[ReserveInitialized](env.Event)
	case "ReserveDataUpdated":
		ev, err = unmarshal[ReserveDataUpdated](env.Event)
	case "Deposit":
		ev, err = unmarshal[Deposit](env.Event)
	case "Withdraw":
		ev, err = unmarshal[Withdraw](env.Event)
	case "Borrow":
		ev, err = unmarshal[Borrow](env.Event)
	case "Repay":
		ev, err = unmarshal[Repay](env.Event)
	case "Liquidate":
		ev, err = unmarshal[Liquidate](env.Event)
	case "CollateralConfigurationChanged":
		ev, err = unmarshal[CollateralConfigurationChanged](env.Event)
	case "BorrowingChanged":
		ev, err = unmarshal[BorrowingChanged](env.Event)
	case "ReserveActivationChanged":
		ev, err = unmarshal[ReserveActivationChanged](env.Event)
	case "ReserveFactorChanged":
		ev, err = unmarshal[ReserveFactorChanged](env.Event)
	case "CollateralUsageChanged":
		ev, err = unmarshal[CollateralUsageChanged](env.Event)
	case "Paused":
		ev, err = unmarshal[Paused](env.Event)
	case "Unpaused":
		ev, err = unmarshal[Unpaused](env.Event)
	case "PriceOracleUpdated":
		ev, err = unmarshal[PriceOracleUpdated](env.Event)
	default:
		return nil, fmt.Errorf("events: unknown event type %q", env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("events: decode %s: %w", env.Type, err)
	}
	return ev, nil
}

func unmarshal[T Event](raw json.RawMessage) (T, error) {
	var ev T
	err := json.Unmarshal(raw, &ev)
	return ev, err
}
