package checkpoint

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"jobfuzz/pkg/constants"
	"jobfuzz/pkg/list"
	"jobfuzz/pkg/models"
	"jobfuzz/pkg/utils"
	"strings"
)

// trailerSize is magic + version + list records + list crc + progress crc.
const trailerSize = 4 + 4 + 4 + 4 + 4

// Trailer is the optional integrity block appended after the restart flag of
// a progress artifact. It binds the progress artifact to the exact list
// artifact written in the same checkpoint.
type Trailer struct {
	Version     uint32
	ListRecords uint32
	ListCRC     uint32
}

func NewTrailer(listData []byte, records int) *Trailer {
	return &Trailer{
		Version:     constants.TrailerVersion,
		ListRecords: uint32(records),
		ListCRC:     crc32.ChecksumIEEE(listData),
	}
}

// Verify checks that listData is the list artifact the trailer was written for.
func (t *Trailer) Verify(listData []byte, records int) error {
	if t.ListRecords != uint32(records) {
		return utils.NewError(utils.CorruptArtifactError, "list artifact holds %d records, progress artifact expects %d", records, t.ListRecords)
	}
	if sum := crc32.ChecksumIEEE(listData); sum != t.ListCRC {
		return utils.NewError(utils.CorruptArtifactError, "list artifact checksum %08x, progress artifact expects %08x", sum, t.ListCRC)
	}
	return nil
}

// EncodeList writes every job in forward order as id, info length, info.
func EncodeList(l *list.LinkedList) []byte {
	buf := new(bytes.Buffer)
	l.Each(func(_ list.Handle, job models.Job) bool {
		// writes into a bytes.Buffer cannot fail
		_ = utils.WriteInt32(buf, job.ID())
		_ = utils.WriteLengthPrefixed(buf, []byte(job.Info()))
		return true
	})
	return buf.Bytes()
}

// DecodeList rebuilds a list by appending every record at the rear.
func DecodeList(b []byte) (*list.LinkedList, error) {
	l := list.New()
	r := utils.NewByteReader(b)
	for r.Remaining() > 0 {
		record := l.Len()
		id, err := r.ReadInt32()
		if err != nil {
			return nil, corrupt(err, "record %d id", record)
		}
		infoLength, err := r.ReadInt32()
		if err != nil {
			return nil, corrupt(err, "record %d info length", record)
		}
		if infoLength < 0 || infoLength > constants.MaxJobInfoLength {
			return nil, utils.NewError(utils.CorruptArtifactError, "record %d info length %d is out of bounds", record, infoLength)
		}
		info, err := r.ReadBytes(int(infoLength))
		if err != nil {
			return nil, corrupt(err, "record %d info", record)
		}
		job, err := models.NewJob(id, string(info))
		if err != nil {
			return nil, corrupt(err, "record %d", record)
		}
		l.AddAtRear(job)
	}
	return l, nil
}

// CheckProgress reports the first field of state that a progress artifact
// cannot carry. Decoding applies the same checks.
func CheckProgress(state *models.CampaignState) error {
	path := strings.TrimSuffix(state.CheckpointPath, "\x00")
	if path == "" {
		return errors.New("empty list artifact path")
	}
	if len(state.CheckpointPath) > constants.MaxCheckpointPathLength {
		return fmt.Errorf("list artifact path is %d bytes, limit is %d", len(state.CheckpointPath), constants.MaxCheckpointPathLength)
	}
	if state.TotalIterations < 0 {
		return fmt.Errorf("negative iteration count %d", state.TotalIterations)
	}
	if state.LastCompletedIteration < -1 || state.LastCompletedIteration >= state.TotalIterations {
		return fmt.Errorf("completed iteration %d outside -1..%d", state.LastCompletedIteration, state.TotalIterations-1)
	}
	return nil
}

// EncodeProgress lays out the campaign state fields in artifact order.
// A nil trailer produces the bare legacy layout.
func EncodeProgress(state *models.CampaignState, trailer *Trailer) []byte {
	buf := new(bytes.Buffer)
	_ = utils.WriteInt32(buf, state.NextID)
	_ = utils.WriteInt32(buf, state.TotalIterations)
	_ = utils.WriteInt32(buf, state.LastCompletedIteration)
	_ = utils.WriteUint32(buf, state.Seed)
	_ = utils.WriteInt64(buf, state.LastDraw)
	_ = utils.WriteLengthPrefixed(buf, []byte(state.CheckpointPath))
	restart := int32(0)
	if state.IsResuming {
		restart = 1
	}
	_ = utils.WriteInt32(buf, restart)

	if trailer != nil {
		buf.WriteString(constants.TrailerMagic)
		_ = utils.WriteUint32(buf, trailer.Version)
		_ = utils.WriteUint32(buf, trailer.ListRecords)
		_ = utils.WriteUint32(buf, trailer.ListCRC)
		_ = utils.WriteUint32(buf, crc32.ChecksumIEEE(buf.Bytes()))
	}
	return buf.Bytes()
}

// DecodeProgress reads a progress artifact. The returned state always has
// IsResuming set, whatever flag was stored. The trailer is nil for legacy
// artifacts.
func DecodeProgress(b []byte) (*models.CampaignState, *Trailer, error) {
	r := utils.NewByteReader(b)
	state := &models.CampaignState{}
	var err error

	if state.NextID, err = r.ReadInt32(); err != nil {
		return nil, nil, corrupt(err, "id counter")
	}
	if state.TotalIterations, err = r.ReadInt32(); err != nil {
		return nil, nil, corrupt(err, "iteration count")
	}
	if state.LastCompletedIteration, err = r.ReadInt32(); err != nil {
		return nil, nil, corrupt(err, "completed iteration")
	}
	if state.Seed, err = r.ReadUint32(); err != nil {
		return nil, nil, corrupt(err, "seed")
	}
	if state.LastDraw, err = r.ReadInt64(); err != nil {
		return nil, nil, corrupt(err, "last draw")
	}
	pathLength, err := r.ReadInt32()
	if err != nil {
		return nil, nil, corrupt(err, "path length")
	}
	if pathLength < 0 || pathLength > constants.MaxCheckpointPathLength {
		return nil, nil, utils.NewError(utils.CorruptArtifactError, "path length %d is out of bounds", pathLength)
	}
	path, err := r.ReadBytes(int(pathLength))
	if err != nil {
		return nil, nil, corrupt(err, "path")
	}
	// older writers counted the C string terminator
	path = bytes.TrimSuffix(path, []byte{0})
	state.CheckpointPath = string(path)
	if _, err := r.ReadInt32(); err != nil {
		return nil, nil, corrupt(err, "restart flag")
	}
	state.IsResuming = true

	if err := CheckProgress(state); err != nil {
		return nil, nil, utils.WrapError(utils.CorruptArtifactError, err, "progress artifact")
	}

	if r.Remaining() == 0 {
		return state, nil, nil
	}
	trailer, err := decodeTrailer(b, r)
	if err != nil {
		return nil, nil, err
	}
	return state, trailer, nil
}

func decodeTrailer(b []byte, r *utils.ByteReader) (*Trailer, error) {
	if r.Remaining() != trailerSize {
		return nil, utils.NewError(utils.CorruptArtifactError, "%d unexpected bytes after restart flag", r.Remaining())
	}
	covered := r.Offset() + trailerSize - 4
	magic, _ := r.ReadBytes(len(constants.TrailerMagic))
	if string(magic) != constants.TrailerMagic {
		return nil, utils.NewError(utils.CorruptArtifactError, "bad trailer magic %q", magic)
	}
	trailer := &Trailer{}
	trailer.Version, _ = r.ReadUint32()
	trailer.ListRecords, _ = r.ReadUint32()
	trailer.ListCRC, _ = r.ReadUint32()
	sum, _ := r.ReadUint32()

	if trailer.Version != constants.TrailerVersion {
		return nil, utils.NewError(utils.CorruptArtifactError, "unsupported trailer version %d", trailer.Version)
	}
	if want := crc32.ChecksumIEEE(b[:covered]); sum != want {
		return nil, utils.NewError(utils.CorruptArtifactError, "progress artifact checksum %08x, computed %08x", sum, want)
	}
	return trailer, nil
}

func corrupt(err error, format string, args ...any) error {
	if errors.Is(err, utils.ErrShortRead) {
		return utils.WrapError(utils.CorruptArtifactError, err, "truncated "+format, args...)
	}
	return utils.WrapError(utils.CorruptArtifactError, err, format, args...)
}
