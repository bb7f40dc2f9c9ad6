package wizard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAction is returned by ParseAction for an unrecognised type.
var ErrUnknownAction = errors.New("unknown action type")

// Envelope is the wire form of an action: {"type": ..., "payload": {...}}.
type Envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var decoders = map[ActionType]func(json.RawMessage) (Action, error){
	ActionSetPlan:               decodeAs[SetPlan],
	ActionConfirmPlan:           decodeAs[ConfirmPlan],
	ActionSelectTemplate:        decodeAs[SelectTemplate],
	ActionSetPalette:            decodeAs[SetPalette],
	ActionSetCustomColor:        decodeAs[SetCustomColor],
	ActionSetFont:               decodeAs[SetFont],
	ActionSetButtonShape:        decodeAs[SetButtonShape],
	ActionSetSectionVariant:     decodeAs[SetSectionVariant],
	ActionSetMotion:             decodeAs[SetMotion],
	ActionToggleSection:         decodeAs[ToggleSection],
	ActionMoveSection:           decodeAs[MoveSection],
	ActionAddServiceCard:        decodeAs[AddServiceCard],
	ActionRemoveServiceCard:     decodeAs[RemoveServiceCard],
	ActionUpdateServiceCard:     decodeAs[UpdateServiceCard],
	ActionToggleContactChannel:  decodeAs[ToggleContactChannel],
	ActionSetChannelValue:       decodeAs[SetChannelValue],
	ActionSetFloatingEnabled:    decodeAs[SetFloatingEnabled],
	ActionToggleFloatingChannel: decodeAs[ToggleFloatingChannel],
	ActionToggleAddOn:           decodeAs[ToggleAddOn],
	ActionSetContent:            decodeAs[SetContent],
	ActionSetBusinessField:      decodeAs[SetBusinessField],
	ActionSetImage:              decodeAs[SetImage],
	ActionNextStep:              decodeAs[NextStep],
	ActionPrevStep:              decodeAs[PrevStep],
	ActionGoToStep:              decodeAs[GoToStep],
}

// ParseAction decodes an envelope into a typed Action. Unknown payload fields
// are rejected.
func ParseAction(env Envelope) (Action, error) {
	decode, ok := decoders[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	a, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
	}
	return a, nil
}

// EncodeAction is the inverse of ParseAction.
func EncodeAction(a Action) (Envelope, error) {
	payload, err := json.Marshal(a)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", a.Type(), err)
	}
	return Envelope{Type: a.Type(), Payload: payload}, nil
}

func decodeAs[T Action](raw json.RawMessage) (Action, error) {
	var a T
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return a, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	return a, nil
}
