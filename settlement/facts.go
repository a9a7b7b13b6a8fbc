package settlement

// Source is the side of the transaction
type Source byte

const (
	SourceInput = Source(iota)
	SourceOutput
)

type (
	// TxFacts is what the settlement rule needs to know about the transaction.
	// Load errors are expected to be *Error, such as ErrIndexOutOfBound
	TxFacts interface {
		// AnyInputLockedBy says whether some input is locked exactly by the serialized lock
		AnyInputLockedBy(lock []byte) bool
		// FindSelfInInputs is the index of the first input locked by the running lock itself.
		// Must fail with ErrNotFound if there is none
		FindSelfInInputs() (int, error)
		LoadCapacity(index int, src Source) (uint64, error)
		LoadLock(index int, src Source) ([]byte, error)
	}

	// Environment is provided by the host which runs the lock
	Environment interface {
		TxFacts
		LoadSelfArgs() ([]byte, error)
	}
)

func (s Source) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceOutput:
		return "output"
	}
	return "unknown source"
}
