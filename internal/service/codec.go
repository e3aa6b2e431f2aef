package service

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// decodeMsg reads a structpb request body into v. A nil message leaves v
// untouched.
func decodeMsg(msg *structpb.Struct, v any) error {
	if msg == nil {
		return nil
	}
	data, err := protojson.Marshal(msg)
	if err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("failed to read request: %w", err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("malformed request: %w", err))
	}
	return nil
}

// encodeMsg converts a response value into a structpb message.
func encodeMsg(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to encode response: %w", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to encode response: %w", err))
	}
	return out, nil
}

func respond(v any) (*connect.Response[structpb.Struct], error) {
	msg, err := encodeMsg(v)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(msg), nil
}
