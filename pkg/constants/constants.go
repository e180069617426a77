package constants

const ConfigFileName = "jobfuzz.yml"
const DefaultProgressFile = ".jobfuzz.save"
const DefaultListFile = ".jobfuzz.list"
const DefaultJobInfo = "some info"
const DefaultInitialJobInfo = "args"
const DefaultCheckpointInterval = 10000
const DefaultSeed = 1
const MaxJobInfoLength = 1 << 16
const MaxCheckpointPathLength = 4096
const EnvPrefix = "JOBFUZZ"

// TrailerMagic tags the optional integrity trailer of a progress artifact.
const TrailerMagic = "JFCK"
const TrailerVersion = 1

type Mutation int32

const (
	MutationAddFront Mutation = iota
	MutationAddRear
	MutationRemoveFront
	MutationRemoveRear
	MutationRemoveAt
	MutationReverse
)

// NumMutations is the modulus applied to each draw.
const NumMutations = 6

func (m Mutation) String() string {
	switch m {
	case MutationAddFront:
		return "add-front"
	case MutationAddRear:
		return "add-rear"
	case MutationRemoveFront:
		return "remove-front"
	case MutationRemoveRear:
		return "remove-rear"
	case MutationRemoveAt:
		return "remove-at-position"
	case MutationReverse:
		return "reverse"
	}
	return "unknown"
}
