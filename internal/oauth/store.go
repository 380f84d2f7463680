package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Store keeps the session state in a local file and, when a blob store is
// configured, mirrors it there so a fresh host can pick the session up.
type Store struct {
	path string
	blob BlobStore
	log  logr.Logger
	now  func() time.Time

	// base is the updated_at of the state last loaded or saved.
	base time.Time
}

// NewStore returns a Store for path. blob may be nil.
func NewStore(path string, blob BlobStore, log logr.Logger) *Store {
	return &Store{path: path, blob: blob, log: log, now: time.Now}
}

// Load returns the newer of the local state and the blob mirror. A mirror
// that wins is written back to the local file. With a readable local file,
// an unreachable mirror is logged and ignored.
func (s *Store) Load(ctx context.Context) (State, error) {
	local, localErr := LoadState(s.path)
	if localErr != nil && !errors.Is(localErr, ErrStateNotFound) {
		return State{}, localErr
	}
	if localErr == nil {
		s.base = local.UpdatedAt
	}
	if s.blob == nil {
		return local, localErr
	}

	remote, err := s.blob.Load(ctx)
	switch {
	case errors.Is(err, ErrBlobNotFound):
		return local, localErr
	case err != nil:
		remotePersistOK.Set(0)
		if localErr == nil {
			s.log.Error(err, "read mirrored token state, using local copy")
			return local, nil
		}
		return State{}, fmt.Errorf("load blob state: %w", err)
	}
	if localErr == nil && !remote.UpdatedAt.After(local.UpdatedAt) {
		s.base = local.UpdatedAt
		return local, nil
	}
	if err := WriteState(s.path, remote); err != nil {
		return State{}, err
	}
	s.base = remote.UpdatedAt
	s.log.Info("restored token state from blob storage", "path", s.path, "updated_at", remote.UpdatedAt)
	return remote, nil
}

// Save persists state locally and mirrors it. A mirror failure is logged
// and reported through metrics but does not fail the save, and neither does
// a mirror that another host already updated.
func (s *Store) Save(ctx context.Context, state State) error {
	if state.RefreshToken == "" {
		return fmt.Errorf("refusing to persist empty refresh_token")
	}
	state.SchemaVersion = SchemaVersion
	state.UpdatedAt = s.now().UTC()
	if err := WriteState(s.path, state); err != nil {
		persistFailure.Inc()
		return fmt.Errorf("persist state: %w", err)
	}
	if s.blob == nil {
		return nil
	}

	err := s.blob.Save(ctx, state, s.base)
	switch {
	case errors.Is(err, ErrBlobNewer):
		remoteConflicts.Inc()
		s.log.Info("blob storage holds a newer token state, not overwriting", "reason", err.Error())
	case err != nil:
		remotePersistOK.Set(0)
		s.log.Error(err, "mirror token state to blob storage")
	default:
		remotePersistOK.Set(1)
		s.base = state.UpdatedAt
	}
	return nil
}
