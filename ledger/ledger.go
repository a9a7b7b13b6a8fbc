package ledger

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/settlement"
	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/unitrie/common"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

type (
	// LockProgram decides if the script group may be consumed
	LockProgram func(env settlement.Environment) error

	// Ledger is the set of live cells in memory. It runs lock programs of consumed cells
	// on each transaction. Locks with unknown code are not checked: signatures are out of scope
	Ledger struct {
		store    CellStore
		programs map[[lockscript.CodeHashSize]byte]LockProgram
		log      *zap.SugaredLogger
	}

	Option func(*Ledger)
)

var (
	ErrInputNotFound     = errors.New("input not found")
	ErrRepeatingInput    = errors.New("repeating input")
	ErrNoInputs          = errors.New("transaction has no inputs")
	ErrCapacityExceeded  = errors.New("outputs capacity exceeds inputs capacity")
	ErrOutputAlreadyLive = errors.New("output already exists")
)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// WithLockProgram runs the program for locks with the code hash
func WithLockProgram(codeHash [lockscript.CodeHashSize]byte, prog LockProgram) Option {
	return func(l *Ledger) {
		l.programs[codeHash] = prog
	}
}

func WithStore(store CellStore) Option {
	return func(l *Ledger) {
		l.store = store
	}
}

func New(opts ...Option) *Ledger {
	ret := &Ledger{
		programs: make(map[[lockscript.CodeHashSize]byte]LockProgram),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.store == nil {
		ret.store = common.NewInMemoryKVStore()
	}
	if ret.log == nil {
		ret.log = zap.NewNop().Sugar()
	}
	ret.log = ret.log.Named("ledger")
	return ret
}

// Genesis adds cells without consuming anything. Returns the transaction which produced them
func (l *Ledger) Genesis(outputs []CellOutput, outputsData ...[]byte) *Transaction {
	tx := &Transaction{
		Outputs:     outputs,
		OutputsData: outputsData,
	}
	txid := tx.ID()
	for i := range tx.Outputs {
		op := NewOutPoint(txid, uint32(i))
		easyfl.Assert(len(l.store.Get(op.Bytes())) == 0, "Genesis: %v: %s", ErrOutputAlreadyLive, op)
		l.store.Set(op.Bytes(), tx.OutputCell(i).Bytes())
	}
	l.log.Debugf("genesis %s: %d cells", txid, len(outputs))
	return tx
}

func (l *Ledger) GetCell(op OutPoint) (*Cell, bool) {
	data := l.store.Get(op.Bytes())
	if len(data) == 0 {
		return nil, false
	}
	ret, err := CellFromBytes(data)
	easyfl.AssertNoError(err)
	return ret, true
}

// ValidationContext resolves inputs of the transaction against live cells
func (l *Ledger) ValidationContext(tx *Transaction) (*TxContext, error) {
	if len(tx.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	consumed := make([]*Cell, len(tx.Inputs))
	seen := make(map[OutPoint]struct{})
	for i, op := range tx.Inputs {
		if _, repeating := seen[op]; repeating {
			return nil, fmt.Errorf("%w: %s", ErrRepeatingInput, op)
		}
		seen[op] = struct{}{}
		c, ok := l.GetCell(op)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, op)
		}
		consumed[i] = c
	}
	return NewTxContext(tx, consumed), nil
}

// Validate checks capacities and runs lock programs of all script groups. Does not change the ledger
func (l *Ledger) Validate(tx *Transaction) error {
	ctx, err := l.ValidationContext(tx)
	if err != nil {
		return err
	}
	if err = checkCapacity(ctx); err != nil {
		return err
	}
	for _, g := range ctx.ScriptGroups() {
		prog, ok := l.programs[g.Lock.CodeHash]
		if !ok {
			continue
		}
		if err = prog(ctx.Environment(g)); err != nil {
			l.log.Debugf("lock %s of inputs %v failed with code %d: %v", g.Lock, g.InputIndices, settlement.ExitCode(err), err)
			return fmt.Errorf("lock of inputs %v: %w", g.InputIndices, err)
		}
	}
	return nil
}

// AddTransaction validates the transaction, consumes its inputs and adds its outputs
func (l *Ledger) AddTransaction(tx *Transaction) error {
	if err := l.Validate(tx); err != nil {
		return err
	}
	txid := tx.ID()
	for _, op := range tx.Inputs {
		l.store.Set(op.Bytes(), nil)
	}
	for i := range tx.Outputs {
		l.store.Set(NewOutPoint(txid, uint32(i)).Bytes(), tx.OutputCell(i).Bytes())
	}
	l.log.Debugf("added %s: %d inputs, %d outputs", txid, len(tx.Inputs), len(tx.Outputs))
	return nil
}

func checkCapacity(ctx *TxContext) error {
	in := uint128.Zero
	for i := range ctx.consumed {
		in = in.Add64(ctx.consumed[i].Output.Capacity)
	}
	out := uint128.Zero
	for i := range ctx.tx.Outputs {
		out = out.Add64(ctx.tx.Outputs[i].Capacity)
	}
	if out.Cmp(in) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrCapacityExceeded, out, in)
	}
	return nil
}

func indexOutOfBound(index int, src settlement.Source) error {
	return fmt.Errorf("%w: %s #%d", settlement.ErrIndexOutOfBound, src, index)
}
