package zigbee

import (
	"encoding/json"
	"fmt"
)

// OnOffState is the zigbee2mqtt on/off wire value.
type OnOffState string

// Wire values for OnOffState.
const (
	StateOn  OnOffState = "ON"
	StateOff OnOffState = "OFF"
)

// StateFor returns the wire value for a boolean.
func StateFor(on bool) OnOffState {
	if on {
		return StateOn
	}
	return StateOff
}

// Bool reports whether the state means on.
func (s OnOffState) Bool() bool {
	return s == StateOn
}

// OnOffMessage is the {"state":"ON"} body shared by state reports and
// {topic}/set commands.
type OnOffMessage struct {
	State OnOffState `json:"state"`
}

// Action values remotes and wall modules publish in their reports.
const (
	actionOn               = "on"
	actionOff              = "off"
	actionToggle           = "toggle"
	actionBrightnessMoveUp = "brightness_move_up"
	actionOnPress          = "on_press"
	actionOffPress         = "off_press"
)

// parsePayload unmarshals a zigbee2mqtt JSON report into v. Report
// structs use pointer fields so absent keys stay distinguishable from
// zero values.
func parsePayload(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}
