package matchserver

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/replay"
)

// Server implements MatchServiceServer on top of a MatchManager
type Server struct {
	matches     *MatchManager
	idempotency *IdempotencyManager
	logger      zerolog.Logger
}

// NewServer creates a match server
func NewServer(matches *MatchManager, logger zerolog.Logger) *Server {
	return &Server{
		matches:     matches,
		idempotency: NewIdempotencyManager(),
		logger:      logger.With().Str("component", "MatchServer").Logger(),
	}
}

// Matches exposes the underlying manager
func (s *Server) Matches() *MatchManager { return s.matches }

// StartCleanup removes expired matches in the background until ctx is done
func (s *Server) StartCleanup(ctx context.Context) {
	go s.matches.RunCleanup(ctx, s.idempotency.Forget)
}

// CreateMatch creates a match with turn 0 ready for orders
func (s *Server) CreateMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	matchID, turn, err := s.matches.CreateMatch(ctx)
	if err != nil {
		return nil, statusFromError(err)
	}

	s.logger.Info().Str("match_id", matchID).Msg("Creating new match")
	return structpb.NewStruct(map[string]interface{}{
		"match_id": matchID,
		"turn":     turn,
	})
}

// ResumeMatch reloads a recorded match
func (s *Server) ResumeMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	matchID, err := requiredString(req, "match_id")
	if err != nil {
		return nil, err
	}
	turn, err := s.matches.ResumeMatch(ctx, matchID)
	if err != nil {
		return nil, statusFromError(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"match_id": matchID,
		"turn":     turn,
	})
}

// SubmitOrders applies one side's command batch for the current turn
func (s *Server) SubmitOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	matchID, err := requiredString(req, "match_id")
	if err != nil {
		return nil, err
	}
	side, err := sideFromRequest(req)
	if err != nil {
		return nil, err
	}
	key, err := optionalString(req, "idempotency_key")
	if err != nil {
		return nil, err
	}

	if cached := s.idempotency.Check(matchID, side, key); cached != nil {
		s.logger.Debug().
			Str("match_id", matchID).
			Int("side", int(side)).
			Str("idempotency_key", key).
			Msg("Returning cached response for idempotent request")
		return cached, nil
	}

	raw, err := commandsFromRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := s.matches.SubmitOrders(ctx, matchID, side, raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("match_id", matchID).Int("side", int(side)).Msg("Orders refused")
		return nil, statusFromError(err)
	}

	body := convertResult(out.Result)
	body["turn"] = out.Turn
	body["current_turn"] = out.CurrentTurn
	body["evaluated"] = out.Evaluated
	body["finished"] = out.Finished
	body["winner"] = int(out.Winner)

	resp, err := structpb.NewStruct(body)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	s.idempotency.Store(matchID, side, key, resp)

	s.logger.Info().
		Str("match_id", matchID).
		Int("side", int(side)).
		Int("turn", out.Turn).
		Int("accepted", len(out.Result.Accepted)).
		Int("rejected", len(out.Result.Errors)).
		Bool("evaluated", out.Evaluated).
		Msg("Orders submitted")
	return resp, nil
}

// GetState returns the requesting side's fog-filtered view
func (s *Server) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	matchID, err := requiredString(req, "match_id")
	if err != nil {
		return nil, err
	}
	side, err := sideFromRequest(req)
	if err != nil {
		return nil, err
	}

	view, err := s.matches.State(matchID, side)
	if err != nil {
		return nil, statusFromError(err)
	}
	resp, err := toStruct(view)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode view: %v", err)
	}
	return resp, nil
}

// statusFromError maps manager and engine errors onto gRPC status codes
func statusFromError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, os.ErrNotExist):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAtCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, ErrAlreadySubmitted),
		errors.Is(err, game.ErrInvalidSnapshot),
		errors.Is(err, replay.ErrInvalidGameID):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return engineError(err)
	}
}
