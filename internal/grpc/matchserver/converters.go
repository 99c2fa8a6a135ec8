package matchserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
)

// requiredString reads a non-empty string field
func requiredString(req *structpb.Struct, field string) (string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", field)
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || s.StringValue == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a non-empty string", field)
	}
	return s.StringValue, nil
}

// optionalString reads a string field, returning "" when absent
func optionalString(req *structpb.Struct, field string) (string, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "%s must be a string", field)
	}
	return s.StringValue, nil
}

// sideFromRequest reads the integral side field and checks it names a player
func sideFromRequest(req *structpb.Struct) (core.Side, error) {
	v, ok := req.GetFields()["side"]
	if !ok {
		return core.NoSide, status.Error(codes.InvalidArgument, "side is required")
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return core.NoSide, status.Error(codes.InvalidArgument, "side must be an integer")
	}
	side := core.Side(n.NumberValue)
	if !side.Valid() {
		return core.NoSide, status.Errorf(codes.InvalidArgument, "invalid side: %v", n.NumberValue)
	}
	return side, nil
}

// commandsFromRequest returns each element of the commands list as raw
// JSON so the order validator sees exactly what the client sent
func commandsFromRequest(req *structpb.Struct) ([]json.RawMessage, error) {
	v, ok := req.GetFields()["commands"]
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "commands must be a list")
	}

	raw := make([]json.RawMessage, 0, len(list.ListValue.GetValues()))
	for i, item := range list.ListValue.GetValues() {
		data, err := protojson.Marshal(item)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "command %d: %v", i, err)
		}
		raw = append(raw, json.RawMessage(data))
	}
	return raw, nil
}

// toStruct converts any JSON-encodable value into a structpb.Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func convertResult(res orders.Result) map[string]interface{} {
	errs := make([]interface{}, 0, len(res.Errors))
	for _, rej := range res.Errors {
		errs = append(errs, map[string]interface{}{
			"index": rej.Index,
			"error": rej.Error(),
		})
	}
	return map[string]interface{}{
		"accepted":  len(res.Accepted),
		"truncated": res.Truncated,
		"errors":    errs,
	}
}

// engineError maps engine errors onto gRPC status codes
func engineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrInvalidSide):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrGameOver),
		errors.Is(err, game.ErrNotRunning),
		errors.Is(err, game.ErrTurnNotBegun),
		errors.Is(err, game.ErrTurnInProgress):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("engine failure: %v", err))
	}
}
