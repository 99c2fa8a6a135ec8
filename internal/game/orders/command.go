package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// Action is the verb of a command
type Action string

const (
	ActionTarget      Action = "target"
	ActionClearTarget Action = "clear_target"
	ActionStop        Action = "stop"
)

func (a Action) valid() bool {
	switch a {
	case ActionTarget, ActionClearTarget, ActionStop:
		return true
	}
	return false
}

// Command is one parsed order. For ActionTarget exactly one of TargetUnit
// and TargetPos is set.
type Command struct {
	UnitID     core.UnitID
	Action     Action
	TargetUnit *core.UnitID
	TargetPos  *core.Coordinate
}

func (c Command) String() string {
	switch {
	case c.TargetUnit != nil:
		return fmt.Sprintf("%s %s -> %s", c.UnitID, c.Action, *c.TargetUnit)
	case c.TargetPos != nil:
		return fmt.Sprintf("%s %s -> %s", c.UnitID, c.Action, *c.TargetPos)
	default:
		return fmt.Sprintf("%s %s", c.UnitID, c.Action)
	}
}

// Wire member names are matched exactly. encoding/json alone would also
// accept "ID" or "PosX" and keep the last of repeated members.
var (
	commandKeys  = []string{"id", "action", "target"}
	positionKeys = []string{"posx", "posy"}
)

// ParseCommand decodes one raw command of the form
//
//	{"id": "<unit>", "action": "target"|"clear_target"|"stop",
//	 "target": "<unit>" | {"posx": int, "posy": int}}
//
// Only structure is checked here; ownership and visibility are the
// Validator's job.
func ParseCommand(raw json.RawMessage) (Command, error) {
	members, err := decodeObject(raw, commandKeys)
	if err != nil {
		return Command{}, err
	}
	id, hasID, err := stringMember(members, "id")
	if err != nil {
		return Command{}, err
	}
	action, hasAction, err := stringMember(members, "action")
	if err != nil {
		return Command{}, err
	}
	if !hasID || !hasAction {
		return Command{}, fmt.Errorf("%w: id and action are required", ErrMalformedCommand)
	}

	cmd := Command{UnitID: core.UnitID(id), Action: Action(action)}
	if !cmd.Action.valid() {
		return cmd, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if cmd.Action != ActionTarget {
		return cmd, nil
	}

	target := bytes.TrimSpace(members["target"])
	if isNull(target) {
		return cmd, ErrMissingTarget
	}
	switch target[0] {
	case '"':
		var tid string
		if err := json.Unmarshal(target, &tid); err != nil {
			return cmd, fmt.Errorf("%w: target: %v", ErrMalformedCommand, err)
		}
		unit := core.UnitID(tid)
		cmd.TargetUnit = &unit
	case '{':
		pos, err := decodeObject(target, positionKeys)
		if err != nil {
			return cmd, fmt.Errorf("target: %w", err)
		}
		x, hasX, err := intMember(pos, "posx")
		if err != nil {
			return cmd, err
		}
		y, hasY, err := intMember(pos, "posy")
		if err != nil {
			return cmd, err
		}
		if !hasX || !hasY {
			return cmd, fmt.Errorf("%w: target position needs posx and posy", ErrMalformedCommand)
		}
		c := core.NewCoordinate(x, y)
		cmd.TargetPos = &c
	default:
		return cmd, fmt.Errorf("%w: target must be a unit id or a position", ErrMalformedCommand)
	}
	return cmd, nil
}

// decodeObject splits a JSON object into its members. A repeated member,
// or one whose name matches a key of keys only when case is ignored, is
// malformed. Other unknown members are ignored.
func decodeObject(raw []byte, keys []string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedCommand)
	}

	members := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
		name, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, name, err)
		}
		if _, dup := members[name]; dup {
			return nil, fmt.Errorf("%w: repeated member %q", ErrMalformedCommand, name)
		}
		for _, key := range keys {
			if name != key && strings.EqualFold(name, key) {
				return nil, fmt.Errorf("%w: member %q must be spelled %q", ErrMalformedCommand, name, key)
			}
		}
		members[name] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object", ErrMalformedCommand)
	}
	return members, nil
}

func isNull(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// stringMember reads an optional string member; null counts as absent
func stringMember(members map[string]json.RawMessage, key string) (string, bool, error) {
	raw, ok := members[key]
	if !ok || isNull(raw) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", true, fmt.Errorf("%w: %s: %v", ErrMalformedCommand, key, err)
	}
	return s, true, nil
}

// intMember reads an optional integer member; null counts as absent
func intMember(members map[string]json.RawMessage, key string) (int, bool, error) {
	raw, ok := members[key]
	if !ok || isNull(raw) {
		return 0, false, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, true, fmt.Errorf("%w: target: %s: %v", ErrMalformedCommand, key, err)
	}
	return n, true, nil
}

// MarshalJSON encodes the command in its wire form
func (c Command) MarshalJSON() ([]byte, error) {
	wire := map[string]interface{}{
		"id":     string(c.UnitID),
		"action": string(c.Action),
	}
	switch {
	case c.TargetUnit != nil:
		wire["target"] = string(*c.TargetUnit)
	case c.TargetPos != nil:
		wire["target"] = map[string]int{"posx": c.TargetPos.X, "posy": c.TargetPos.Y}
	}
	return json.Marshal(wire)
}

// EncodeCommands converts parsed commands back into raw wire messages
func EncodeCommands(cmds []Command) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(cmds))
	for _, c := range cmds {
		data, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}
