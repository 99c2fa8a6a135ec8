package replay

import (
	"context"

	"github.com/mitchelldurbincs/mobai/internal/game"
)

// Record snapshots e between turns and appends the frame to store
func Record(ctx context.Context, store Store, e *game.Engine) error {
	snap, err := e.Snapshot()
	if err != nil {
		return err
	}
	frame, err := NewFrame(snap)
	if err != nil {
		return err
	}
	return store.Write(ctx, frame)
}

// Restore rebuilds an engine from the last frame of a recorded game
func Restore(ctx context.Context, store Store, gameID string, cfg game.GameConfig) (*game.Engine, error) {
	frames, err := store.Read(ctx, gameID, 0)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, game.ErrInvalidSnapshot
	}
	snap, err := frames[len(frames)-1].Decode()
	if err != nil {
		return nil, err
	}
	return game.RestoreEngine(ctx, cfg, snap)
}
