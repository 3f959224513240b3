package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oshokin/lockable/internal/config"
	domain "github.com/oshokin/lockable/internal/domain/lock"
)

// Repository defines persistence operations for the guard state.
type Repository interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
}

// FileRepository persists the guard state to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// actorRecord is the on-disk form of domain.Actor.
type actorRecord struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
}

// stateRecord is the on-disk form of domain.State.
type stateRecord struct {
	Timestamp *time.Time   `json:"timestamp,omitempty"`
	Admin     actorRecord  `json:"admin"`
	LastActor *actorRecord `json:"last_actor,omitempty"`
	IsLocked  bool         `json:"is_locked"`
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var record stateRecord
	if err = json.Unmarshal(contents, &record); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromRecord(&record), nil
}

// Save writes the state to disk. The file is replaced atomically so a crash
// mid-write never leaves a truncated snapshot behind.
func (r *FileRepository) Save(_ context.Context, state *domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(toRecord(state), "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}

// fromRecord converts the on-disk record into the domain State model.
func fromRecord(record *stateRecord) *domain.State {
	state := &domain.State{
		Admin: domain.Actor{
			Hostname: record.Admin.Hostname,
			Username: record.Admin.Username,
		},
		IsLocked: record.IsLocked,
	}

	if record.Timestamp != nil {
		state.Timestamp = *record.Timestamp
	}

	if record.LastActor != nil {
		state.LastActor = &domain.Actor{
			Hostname: record.LastActor.Hostname,
			Username: record.LastActor.Username,
		}
	}

	return state
}

// toRecord converts the domain State model into the on-disk record.
func toRecord(state *domain.State) *stateRecord {
	record := &stateRecord{
		Admin: actorRecord{
			Hostname: state.Admin.Hostname,
			Username: state.Admin.Username,
		},
		IsLocked: state.IsLocked,
	}

	if !state.Timestamp.IsZero() {
		ts := state.Timestamp
		record.Timestamp = &ts
	}

	if state.LastActor != nil {
		record.LastActor = &actorRecord{
			Hostname: state.LastActor.Hostname,
			Username: state.LastActor.Username,
		}
	}

	return record
}
