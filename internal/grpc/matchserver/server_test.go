package matchserver

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const bufSize = 1024 * 1024

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, maxMatches int) (*MatchServiceClient, func()) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	RegisterMatchServiceServer(s, NewServer(NewMatchManager(maxMatches, nil, zerolog.Nop()), zerolog.Nop()))

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		s.Stop()
		lis.Close()
	}
	return NewMatchServiceClient(conn), cleanup
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func createMatch(t *testing.T, client *MatchServiceClient) string {
	t.Helper()
	resp, err := client.CreateMatch(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	id := resp.GetFields()["match_id"].GetStringValue()
	require.NotEmpty(t, id)
	return id
}

func TestCreateMatch(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()

	resp, err := client.CreateMatch(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.GetFields()["match_id"].GetStringValue())
	assert.Equal(t, float64(0), resp.GetFields()["turn"].GetNumberValue())

	other := createMatch(t, client)
	assert.NotEqual(t, resp.GetFields()["match_id"].GetStringValue(), other)
}

func TestCreateMatch_AtCapacity(t *testing.T) {
	client, cleanup := setupTestServer(t, 1)
	defer cleanup()

	createMatch(t, client)
	_, err := client.CreateMatch(context.Background(), &structpb.Struct{})
	require.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestSubmitOrders_FullTurn(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()
	ctx := context.Background()
	id := createMatch(t, client)

	state, err := client.GetState(ctx, mustStruct(t, map[string]interface{}{"match_id": id, "side": 0}))
	require.NoError(t, err)
	fortCell := state.GetFields()["map"].GetListValue().GetValues()[0].GetListValue().GetValues()[0].GetListValue().GetValues()
	require.Len(t, fortCell, 4)
	soldier := fortCell[1].GetStructValue().GetFields()
	require.Equal(t, "Soldier", soldier["type"].GetStringValue())
	soldierID := soldier["id"].GetStringValue()

	resp, err := client.SubmitOrders(ctx, mustStruct(t, map[string]interface{}{
		"match_id": id,
		"side":     0,
		"commands": []interface{}{
			map[string]interface{}{
				"id":     soldierID,
				"action": "target",
				"target": map[string]interface{}{"posx": 3, "posy": 0},
			},
			map[string]interface{}{"id": "ghost", "action": "stop"},
			"not a command",
		},
	}))
	require.NoError(t, err)
	fields := resp.GetFields()
	assert.Equal(t, float64(1), fields["accepted"].GetNumberValue())
	errs := fields["errors"].GetListValue().GetValues()
	require.Len(t, errs, 2)
	assert.Equal(t, float64(1), errs[0].GetStructValue().GetFields()["index"].GetNumberValue())
	assert.Equal(t, float64(2), errs[1].GetStructValue().GetFields()["index"].GetNumberValue())
	assert.False(t, fields["evaluated"].GetBoolValue())

	resp, err = client.SubmitOrders(ctx, mustStruct(t, map[string]interface{}{"match_id": id, "side": 1}))
	require.NoError(t, err)
	fields = resp.GetFields()
	assert.True(t, fields["evaluated"].GetBoolValue())
	assert.Equal(t, float64(0), fields["turn"].GetNumberValue())
	assert.Equal(t, float64(1), fields["current_turn"].GetNumberValue())
	assert.False(t, fields["finished"].GetBoolValue())
	assert.Equal(t, float64(-1), fields["winner"].GetNumberValue())

	state, err = client.GetState(ctx, mustStruct(t, map[string]interface{}{"match_id": id, "side": 0}))
	require.NoError(t, err)
	assert.Equal(t, float64(1), state.GetFields()["turn"].GetNumberValue())
	moved := state.GetFields()["map"].GetListValue().GetValues()[0].GetListValue().GetValues()[1].GetListValue().GetValues()
	require.Len(t, moved, 1)
	assert.Equal(t, soldierID, moved[0].GetStructValue().GetFields()["id"].GetStringValue())
}

func TestSubmitOrders_Errors(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()
	ctx := context.Background()
	id := createMatch(t, client)

	tests := []struct {
		name string
		req  map[string]interface{}
		code codes.Code
	}{
		{"missing match id", map[string]interface{}{"side": 0}, codes.InvalidArgument},
		{"missing side", map[string]interface{}{"match_id": id}, codes.InvalidArgument},
		{"side out of range", map[string]interface{}{"match_id": id, "side": 2}, codes.InvalidArgument},
		{"fractional side", map[string]interface{}{"match_id": id, "side": 0.5}, codes.InvalidArgument},
		{"commands not a list", map[string]interface{}{"match_id": id, "side": 0, "commands": "stop"}, codes.InvalidArgument},
		{"unknown match", map[string]interface{}{"match_id": "nope", "side": 0}, codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.SubmitOrders(ctx, mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestSubmitOrders_TwicePerTurn(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()
	ctx := context.Background()
	id := createMatch(t, client)

	req := mustStruct(t, map[string]interface{}{"match_id": id, "side": 0})
	_, err := client.SubmitOrders(ctx, req)
	require.NoError(t, err)
	_, err = client.SubmitOrders(ctx, req)
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestGetState(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()
	id := createMatch(t, client)

	state, err := client.GetState(context.Background(), mustStruct(t, map[string]interface{}{"match_id": id, "side": 1}))
	require.NoError(t, err)
	fields := state.GetFields()
	assert.Equal(t, float64(1), fields["player_id"].GetNumberValue())
	assert.False(t, fields["finished"].GetBoolValue())
	rows := fields["map"].GetListValue().GetValues()
	require.Len(t, rows, 21)
	assert.Len(t, rows[0].GetListValue().GetValues(), 36)

	// the side 0 fort is outside side 1's vision
	_, isNull := rows[0].GetListValue().GetValues()[0].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)

	_, err = client.GetState(context.Background(), mustStruct(t, map[string]interface{}{"match_id": "nope", "side": 1}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestResumeMatch_NothingRecorded(t *testing.T) {
	client, cleanup := setupTestServer(t, 0)
	defer cleanup()

	_, err := client.ResumeMatch(context.Background(), mustStruct(t, map[string]interface{}{"match_id": "gone"}))
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}
