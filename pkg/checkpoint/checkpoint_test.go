package checkpoint

import (
	"errors"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/utils"
	"testing"
)

func newTestStore() (*Store, afero.Fs) {
	fs := afero.NewMemMapFs()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "checkpoint-test",
		Level: hclog.LevelFromString("DEBUG"),
	})
	return NewStore(logger, fs), fs
}

func fakeList(t *testing.T, n int) *list.LinkedList {
	t.Helper()
	l := list.New()
	for i := 0; i < n; i++ {
		job, err := models.NewJob(gofakeit.Int32(), gofakeit.Sentence(gofakeit.Number(0, 12)))
		require.NoError(t, err)
		l.AddAtRear(job)
	}
	return l
}

func testState() *models.CampaignState {
	return &models.CampaignState{
		NextID:                 1234,
		TotalIterations:        20000,
		LastCompletedIteration: 9999,
		Seed:                   4000000000,
		LastDraw:               8674665223082153551,
		CheckpointPath:         "runs/list.bin",
	}
}

func TestStore_ListRoundTrip(t *testing.T) {
	gofakeit.Seed(11)
	store, _ := newTestStore()

	for _, n := range []int{0, 1, 2, 17, 500} {
		l := fakeList(t, n)
		require.NoError(t, store.SaveList(l, "list.bin"))

		restored, err := store.RestoreList("list.bin")
		require.NoError(t, err)
		assert.Equal(t, l.Jobs(), restored.Jobs(), "n=%d", n)
		assert.Nil(t, restored.Validate())
	}
}

func TestStore_ListLayout(t *testing.T) {
	store, fs := newTestStore()
	job, err := models.NewJob(-2, "ab")
	require.NoError(t, err)
	l := list.New()
	l.AddAtRear(job)

	require.NoError(t, store.SaveList(l, "list.bin"))
	data, err := afero.ReadFile(fs, "list.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff, 2, 0, 0, 0, 'a', 'b'}, data)

	exists, err := afero.Exists(fs, "list.bin.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_RestoreListCorrupt(t *testing.T) {
	store, fs := newTestStore()
	valid := EncodeList(fakeList(t, 3))

	cases := map[string][]byte{
		"truncated header":   valid[:5],
		"truncated info":     valid[:len(valid)-1],
		"negative length":    {1, 0, 0, 0, 0xff, 0xff, 0xff, 0xff},
		"length past end":    {1, 0, 0, 0, 9, 0, 0, 0, 'x'},
		"length over limit":  {1, 0, 0, 0, 0, 0, 0, 0x7f},
		"trailing odd bytes": append(append([]byte{}, valid...), 1, 2, 3),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, afero.WriteFile(fs, "bad.bin", data, 0o644))
			_, err := store.RestoreList("bad.bin")
			assert.True(t, errors.Is(err, utils.ErrCorruptArtifact), "got %v", err)
		})
	}
}

func TestStore_RestoreListMissing(t *testing.T) {
	store, _ := newTestStore()
	_, err := store.RestoreList("nope.bin")
	assert.True(t, errors.Is(err, utils.ErrMissingArtifact))
}

func TestStore_ProgressRoundTrip(t *testing.T) {
	store, _ := newTestStore()

	for _, resuming := range []bool{false, true} {
		state := testState()
		state.IsResuming = resuming
		require.NoError(t, store.SaveProgress(state, "progress.bin"))

		restored, err := store.RestoreProgress("progress.bin")
		require.NoError(t, err)

		expected := *state
		expected.IsResuming = true
		assert.Equal(t, &expected, restored)
	}
}

func TestStore_SaveProgressRejectsUnreadableState(t *testing.T) {
	cases := map[string]func(state *models.CampaignState){
		"done past count":    func(state *models.CampaignState) { state.TotalIterations, state.LastCompletedIteration = 10, 12 },
		"done before start":  func(state *models.CampaignState) { state.LastCompletedIteration = -2 },
		"negative count":     func(state *models.CampaignState) { state.TotalIterations, state.LastCompletedIteration = -1, -1 },
		"empty list path":    func(state *models.CampaignState) { state.CheckpointPath = "" },
		"terminator only":    func(state *models.CampaignState) { state.CheckpointPath = "\x00" },
		"list path too long": func(state *models.CampaignState) { state.CheckpointPath = gofakeit.LetterN(5000) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			store, fs := newTestStore()
			state := testState()
			mutate(state)

			err := store.SaveProgress(state, "progress.save")
			assert.True(t, errors.Is(err, utils.ErrUsage), "got %v", err)
			err = store.Checkpoint(list.New(), state, "progress.save")
			assert.True(t, errors.Is(err, utils.ErrUsage), "got %v", err)

			exists, err := afero.Exists(fs, "progress.save")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}

	t.Run("should restore every boundary state it saves", func(t *testing.T) {
		store, _ := newTestStore()
		for _, done := range []int32{-1, 0, 19999} {
			state := testState()
			state.LastCompletedIteration = done
			require.NoError(t, store.SaveProgress(state, "progress.save"))

			restored, err := store.RestoreProgress("progress.save")
			require.NoError(t, err)
			assert.Equal(t, done, restored.LastCompletedIteration)
			assert.Equal(t, state.TotalIterations, restored.TotalIterations)
		}
	})
}

func TestStore_ProgressLegacyTerminator(t *testing.T) {
	state := testState()
	state.CheckpointPath = "list.bin\x00"
	data := EncodeProgress(state, nil)

	restored, trailer, err := DecodeProgress(data)
	require.NoError(t, err)
	assert.Nil(t, trailer)
	assert.Equal(t, "list.bin", restored.CheckpointPath)
}

func TestStore_RestoreProgressCorrupt(t *testing.T) {
	store, fs := newTestStore()
	state := testState()
	bare := EncodeProgress(state, nil)
	withTrailer := EncodeProgress(state, NewTrailer(nil, 0))

	flipped := append([]byte{}, withTrailer...)
	flipped[0] ^= 0xff

	badDone := testState()
	badDone.LastCompletedIteration = badDone.TotalIterations

	cases := map[string][]byte{
		"empty":              {},
		"truncated scalars":  bare[:10],
		"truncated path":     bare[:30],
		"missing restart":    bare[:len(bare)-2],
		"garbage after flag": append(append([]byte{}, bare...), 1, 2),
		"checksum mismatch":  flipped,
		"done past count":    EncodeProgress(badDone, nil),
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, afero.WriteFile(fs, "bad.save", data, 0o644))
			_, err := store.RestoreProgress("bad.save")
			assert.True(t, errors.Is(err, utils.ErrCorruptArtifact), "got %v", err)
		})
	}
}

func TestStore_CheckpointAndResume(t *testing.T) {
	gofakeit.Seed(3)

	t.Run("should restore both artifacts", func(t *testing.T) {
		store, _ := newTestStore()
		l := fakeList(t, 40)
		state := testState()

		require.NoError(t, store.Checkpoint(l, state, "progress.save"))
		restoredList, restoredState, err := store.Resume("progress.save")
		require.NoError(t, err)

		assert.Equal(t, l.Jobs(), restoredList.Jobs())
		assert.True(t, restoredState.IsResuming)
		assert.Equal(t, state.NextID, restoredState.NextID)
		assert.Equal(t, state.LastDraw, restoredState.LastDraw)
		assert.Equal(t, state.CheckpointPath, restoredState.CheckpointPath)
	})

	t.Run("should fail when the progress artifact is missing", func(t *testing.T) {
		store, _ := newTestStore()
		require.NoError(t, store.SaveList(fakeList(t, 2), "runs/list.bin"))
		_, _, err := store.Resume("progress.save")
		assert.True(t, errors.Is(err, utils.ErrMissingArtifact))
	})

	t.Run("should fail when the list artifact is missing", func(t *testing.T) {
		store, fs := newTestStore()
		state := testState()
		require.NoError(t, store.Checkpoint(fakeList(t, 2), state, "progress.save"))
		require.NoError(t, fs.Remove(state.CheckpointPath))

		_, _, err := store.Resume("progress.save")
		assert.True(t, errors.Is(err, utils.ErrMissingArtifact))
	})

	t.Run("should fail when the list was rewritten without progress", func(t *testing.T) {
		store, _ := newTestStore()
		state := testState()
		require.NoError(t, store.Checkpoint(fakeList(t, 5), state, "progress.save"))

		// a crash between the two writes of the next checkpoint
		require.NoError(t, store.SaveList(fakeList(t, 6), state.CheckpointPath))

		_, _, err := store.Resume("progress.save")
		assert.True(t, errors.Is(err, utils.ErrCorruptArtifact))
	})

	t.Run("should accept a legacy pair without trailer", func(t *testing.T) {
		store, _ := newTestStore()
		state := testState()
		l := fakeList(t, 3)
		require.NoError(t, store.SaveList(l, state.CheckpointPath))
		require.NoError(t, store.SaveProgress(state, "progress.save"))

		restoredList, _, err := store.Resume("progress.save")
		require.NoError(t, err)
		assert.Equal(t, l.Jobs(), restoredList.Jobs())
	})
}

func TestStore_Remove(t *testing.T) {
	store, fs := newTestStore()
	state := testState()
	require.NoError(t, store.Checkpoint(fakeList(t, 2), state, "progress.save"))

	exists, err := store.Exists("progress.save")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Remove(state, "progress.save"))
	for _, path := range []string{"progress.save", state.CheckpointPath} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}

	// removing again is not an error
	assert.NoError(t, store.Remove(state, "progress.save"))
}
