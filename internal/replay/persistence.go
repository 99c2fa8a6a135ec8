package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game"
)

var (
	// ErrStoreClosed is returned when a closed store is used
	ErrStoreClosed = errors.New("replay store closed")
	// ErrInvalidStoreType is returned when an unknown store type is configured
	ErrInvalidStoreType = errors.New("invalid replay store type")
	// ErrInvalidGameID is returned for ids that cannot name a replay file
	ErrInvalidGameID = errors.New("invalid game id for replay")
)

// StoreType selects the replay backend
type StoreType string

const (
	// StoreTypeNone disables recording
	StoreTypeNone StoreType = "none"
	// StoreTypeFile writes one JSON-lines file per game
	StoreTypeFile StoreType = "file"
)

// maxFrameSize bounds a single snapshot line when reading back
const maxFrameSize = 16 * 1024 * 1024

// Config contains configuration for the replay store
type Config struct {
	Type    StoreType
	BaseDir string
}

// DefaultConfig returns a configuration with recording disabled
func DefaultConfig() Config {
	return Config{
		Type:    StoreTypeNone,
		BaseDir: "replays",
	}
}

// Frame is the recorded state of one game at a turn boundary
type Frame struct {
	GameID     string          `json:"game_id"`
	Turn       int             `json:"turn"`
	RecordedAt time.Time       `json:"recorded_at"`
	Snapshot   json.RawMessage `json:"snapshot"`
}

// NewFrame encodes snap as a frame
func NewFrame(snap *game.Snapshot) (Frame, error) {
	data, err := game.MarshalSnapshot(snap)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return Frame{
		GameID:     snap.GameID,
		Turn:       snap.Turn,
		RecordedAt: time.Now(),
		Snapshot:   data,
	}, nil
}

// Decode returns the snapshot stored in the frame
func (f Frame) Decode() (*game.Snapshot, error) {
	return game.UnmarshalSnapshot(f.Snapshot)
}

// Store persists replay frames
type Store interface {
	// Write appends frames, each to its game's replay
	Write(ctx context.Context, frames ...Frame) error

	// Read returns up to limit frames of a game in recording order; limit
	// <= 0 reads all
	Read(ctx context.Context, gameID string, limit int) ([]Frame, error)

	// Delete removes a game's replay
	Delete(ctx context.Context, gameID string) error

	// Close cleanly shuts down the store
	Close() error

	// Stats returns store statistics
	Stats() Stats
}

// Stats contains statistics about replay operations
type Stats struct {
	FramesWritten int64
	FramesRead    int64
	BytesWritten  int64
	WriteErrors   int64
	ReadErrors    int64
	LastWriteTime time.Time
}

// FileStore writes one JSON-lines file per game under BaseDir
type FileStore struct {
	config Config
	logger zerolog.Logger

	mu     sync.Mutex
	stats  Stats
	files  map[string]*os.File
	closed bool
}

// NewFileStore creates a file-backed store, creating BaseDir if needed
func NewFileStore(config Config, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create replay directory: %w", err)
	}
	return &FileStore{
		config: config,
		logger: logger.With().Str("component", "ReplayStore").Logger(),
		files:  make(map[string]*os.File),
	}, nil
}

func (fs *FileStore) path(gameID string) (string, error) {
	if gameID == "" || strings.ContainsAny(gameID, `/\`) || gameID == "." || gameID == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}
	return filepath.Join(fs.config.BaseDir, "replay_"+gameID+".jsonl"), nil
}

// fileFor returns the open append handle of a game. Callers hold fs.mu.
func (fs *FileStore) fileFor(gameID string) (*os.File, error) {
	if f, ok := fs.files[gameID]; ok {
		return f, nil
	}
	path, err := fs.path(gameID)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	fs.files[gameID] = f
	fs.logger.Info().Str("game_id", gameID).Str("filename", path).Msg("Opened replay file")
	return f, nil
}

// Write appends frames to their games' files and syncs them
func (fs *FileStore) Write(ctx context.Context, frames ...Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return ErrStoreClosed
	}

	touched := make(map[*os.File]struct{})
	for _, frame := range frames {
		f, err := fs.fileFor(frame.GameID)
		if err != nil {
			fs.stats.WriteErrors++
			return err
		}

		data, err := json.Marshal(frame)
		if err != nil {
			fs.stats.WriteErrors++
			return fmt.Errorf("failed to marshal frame: %w", err)
		}

		n, err := f.Write(append(data, '\n'))
		if err != nil {
			fs.stats.WriteErrors++
			return fmt.Errorf("failed to write frame: %w", err)
		}
		touched[f] = struct{}{}
		fs.stats.FramesWritten++
		fs.stats.BytesWritten += int64(n)
	}

	for f := range touched {
		if err := f.Sync(); err != nil {
			fs.logger.Warn().Err(err).Str("filename", f.Name()).Msg("Failed to sync replay file")
		}
	}
	fs.stats.LastWriteTime = time.Now()

	fs.logger.Debug().Int("frames", len(frames)).Msg("Wrote replay frames")
	return nil
}

// Read loads frames of gameID from its file
func (fs *FileStore) Read(ctx context.Context, gameID string, limit int) ([]Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path, err := fs.path(gameID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		fs.stats.ReadErrors++
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer file.Close()

	var frames []Frame
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	for scanner.Scan() {
		if limit > 0 && len(frames) >= limit {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			fs.stats.ReadErrors++
			return nil, fmt.Errorf("failed to unmarshal frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		fs.stats.ReadErrors++
		return nil, fmt.Errorf("error reading replay: %w", err)
	}

	fs.stats.FramesRead += int64(len(frames))
	return frames, nil
}

// Delete closes and removes the replay file of gameID
func (fs *FileStore) Delete(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path, err := fs.path(gameID)
	if err != nil {
		return err
	}
	if f, ok := fs.files[gameID]; ok {
		if err := f.Close(); err != nil {
			fs.logger.Warn().Err(err).Str("game_id", gameID).Msg("Failed to close replay file")
		}
		delete(fs.files, gameID)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove replay: %w", err)
	}
	return nil
}

// Close closes every open replay file
func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil
	}
	fs.closed = true

	var errs []error
	for id, f := range fs.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close replay %s: %w", id, err))
		}
	}
	fs.files = nil
	return errors.Join(errs...)
}

// Stats returns store statistics
func (fs *FileStore) Stats() Stats {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.stats
}

// NullStore discards every frame
type NullStore struct{}

func (NullStore) Write(ctx context.Context, frames ...Frame) error { return nil }

func (NullStore) Read(ctx context.Context, gameID string, limit int) ([]Frame, error) {
	return nil, nil
}

func (NullStore) Delete(ctx context.Context, gameID string) error { return nil }

func (NullStore) Close() error { return nil }

func (NullStore) Stats() Stats { return Stats{} }

// NewStore creates a replay store based on configuration
func NewStore(config Config, logger zerolog.Logger) (Store, error) {
	switch config.Type {
	case StoreTypeNone, "":
		return NullStore{}, nil
	case StoreTypeFile:
		return NewFileStore(config, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, config.Type)
	}
}
