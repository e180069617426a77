package checkpoint

import (
	"errors"
	"fmt"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"io/fs"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/utils"
	"os"
	"path/filepath"
)

const tmpSuffix = ".tmp"

// Checkpointer is what a campaign needs from checkpoint storage.
type Checkpointer interface {
	Checkpoint(l *list.LinkedList, state *models.CampaignState, progressPath string) error
	Resume(progressPath string) (*list.LinkedList, *models.CampaignState, error)
	Remove(state *models.CampaignState, progressPath string) error
}

// Store persists the list artifact and the progress artifact of a campaign.
type Store struct {
	fs     afero.Fs
	logger hclog.Logger
}

var _ Checkpointer = &Store{}

func NewStore(logger hclog.Logger, fs afero.Fs) *Store {
	return &Store{
		fs:     fs,
		logger: logger.Named("checkpoint"),
	}
}

func (s *Store) SaveList(l *list.LinkedList, path string) error {
	_, err := s.saveList(l, path)
	return err
}

func (s *Store) RestoreList(path string) (*list.LinkedList, error) {
	data, err := s.read(path, "list")
	if err != nil {
		return nil, err
	}
	l, err := DecodeList(data)
	if err != nil {
		return nil, fmt.Errorf("restore list from %s: %w", path, err)
	}
	s.logger.Debug("restored list", "path", path, "records", l.Len())
	return l, nil
}

// SaveProgress refuses states that RestoreProgress would reject.
func (s *Store) SaveProgress(state *models.CampaignState, path string) error {
	if err := CheckProgress(state); err != nil {
		return utils.WrapError(utils.UsageError, err, "progress for %s", path)
	}
	return s.write(path, EncodeProgress(state, nil))
}

// RestoreProgress reads a progress artifact. The restored state is always
// marked as resuming.
func (s *Store) RestoreProgress(path string) (*models.CampaignState, error) {
	state, _, err := s.restoreProgress(path)
	return state, err
}

// Checkpoint writes the list artifact, then a progress artifact whose trailer
// pins the list artifact just written.
func (s *Store) Checkpoint(l *list.LinkedList, state *models.CampaignState, progressPath string) error {
	if err := CheckProgress(state); err != nil {
		return utils.WrapError(utils.UsageError, err, "progress for %s", progressPath)
	}
	listData, err := s.saveList(l, state.CheckpointPath)
	if err != nil {
		return err
	}
	trailer := NewTrailer(listData, l.Len())
	if err := s.write(progressPath, EncodeProgress(state, trailer)); err != nil {
		return err
	}
	s.logger.Debug("checkpoint written",
		"progress", progressPath,
		"list", state.CheckpointPath,
		"records", l.Len(),
		"done", state.LastCompletedIteration,
	)
	return nil
}

// Resume restores both artifacts. Either one missing is fatal; so is a list
// artifact that does not match the one the progress artifact was written with.
func (s *Store) Resume(progressPath string) (*list.LinkedList, *models.CampaignState, error) {
	state, trailer, err := s.restoreProgress(progressPath)
	if err != nil {
		return nil, nil, err
	}

	listData, err := s.read(state.CheckpointPath, "list")
	if err != nil {
		return nil, nil, err
	}
	l, err := DecodeList(listData)
	if err != nil {
		return nil, nil, fmt.Errorf("restore list from %s: %w", state.CheckpointPath, err)
	}

	if trailer != nil {
		if err := trailer.Verify(listData, l.Len()); err != nil {
			return nil, nil, fmt.Errorf("%s and %s are out of sync: %w", progressPath, state.CheckpointPath, err)
		}
	} else {
		s.logger.Warn("progress artifact has no integrity trailer, list artifact is not verified", "progress", progressPath)
	}

	s.logger.Info("restored checkpoint",
		"done", state.LastCompletedIteration,
		"count", state.TotalIterations,
		"records", l.Len(),
	)
	return l, state, nil
}

// Remove deletes both artifacts and any leftover temporary files.
func (s *Store) Remove(state *models.CampaignState, progressPath string) error {
	paths := []string{progressPath, progressPath + tmpSuffix}
	if state != nil && state.CheckpointPath != "" {
		paths = append(paths, state.CheckpointPath, state.CheckpointPath+tmpSuffix)
	}
	for _, path := range paths {
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

// Exists reports whether a progress artifact is present at progressPath.
func (s *Store) Exists(progressPath string) (bool, error) {
	return afero.Exists(s.fs, progressPath)
}

func (s *Store) saveList(l *list.LinkedList, path string) ([]byte, error) {
	if path == "" {
		return nil, utils.NewError(utils.UsageError, "no list artifact path")
	}
	data := EncodeList(l)
	if err := s.write(path, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) restoreProgress(path string) (*models.CampaignState, *Trailer, error) {
	data, err := s.read(path, "progress")
	if err != nil {
		return nil, nil, err
	}
	state, trailer, err := DecodeProgress(data)
	if err != nil {
		return nil, nil, fmt.Errorf("restore progress from %s: %w", path, err)
	}
	return state, trailer, nil
}

func (s *Store) read(path string, artifact string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, utils.WrapError(utils.MissingArtifactError, err, "%s artifact %s", artifact, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s artifact %s: %w", artifact, path, err)
	}
	return data, nil
}

// write replaces path through a temporary file so a crash never leaves a
// partially written artifact under the real name.
func (s *Store) write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		exists, err := afero.DirExists(s.fs, dir)
		if err != nil {
			return err
		}
		if !exists {
			if err := s.fs.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
		}
	}

	tmp := path + tmpSuffix
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
