package txbuilder

import (
	"errors"
	"fmt"

	"github.com/lunfardo314/easydex/ledger"
	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easyfl"
	"lukechampine.com/uint128"
)

type (
	CellReader interface {
		GetCell(op ledger.OutPoint) (*ledger.Cell, bool)
	}

	TransactionBuilder struct {
		reader   CellReader
		consumed []*ledger.Cell
		tx       *ledger.Transaction
	}
)

var (
	ErrNotEnoughCapacity = errors.New("not enough capacity")
	ErrChangeTooBig      = errors.New("change does not fit into one cell")
)

func NewTransactionBuilder(reader CellReader) *TransactionBuilder {
	return &TransactionBuilder{
		reader:   reader,
		consumed: make([]*ledger.Cell, 0),
		tx: &ledger.Transaction{
			Inputs:      make([]ledger.OutPoint, 0),
			Outputs:     make([]ledger.CellOutput, 0),
			OutputsData: make([][]byte, 0),
		},
	}
}

// Consume adds live cells as inputs
func (b *TransactionBuilder) Consume(ops ...ledger.OutPoint) error {
	for _, op := range ops {
		c, ok := b.reader.GetCell(op)
		if !ok {
			return fmt.Errorf("%w: %s", ledger.ErrInputNotFound, op)
		}
		b.consumed = append(b.consumed, c)
		b.tx.Inputs = append(b.tx.Inputs, op)
	}
	return nil
}

// Produce adds the output and returns its index
func (b *TransactionBuilder) Produce(out ledger.CellOutput, data []byte) int {
	easyfl.Assert(out.Lock != nil, "Produce: output must have lock")
	b.tx.Outputs = append(b.tx.Outputs, out)
	b.tx.OutputsData = append(b.tx.OutputsData, data)
	return len(b.tx.Outputs) - 1
}

func (b *TransactionBuilder) Consumed(idx int) *ledger.Cell {
	return b.consumed[idx]
}

func (b *TransactionBuilder) ConsumedCapacity() uint128.Uint128 {
	ret := uint128.Zero
	for _, c := range b.consumed {
		ret = ret.Add64(c.Output.Capacity)
	}
	return ret
}

func (b *TransactionBuilder) ProducedCapacity() uint128.Uint128 {
	ret := uint128.Zero
	for i := range b.tx.Outputs {
		ret = ret.Add64(b.tx.Outputs[i].Capacity)
	}
	return ret
}

// ProduceChange sends all capacity left to the lock. Nothing is produced when nothing is left
func (b *TransactionBuilder) ProduceChange(lock *lockscript.Script) error {
	in, out := b.ConsumedCapacity(), b.ProducedCapacity()
	if out.Cmp(in) > 0 {
		return fmt.Errorf("%w: consumed %s, produced %s", ErrNotEnoughCapacity, in, out)
	}
	change := in.Sub(out)
	if change.IsZero() {
		return nil
	}
	if change.Hi != 0 {
		return fmt.Errorf("%w: %s", ErrChangeTooBig, change)
	}
	b.Produce(ledger.NewCellOutput(change.Lo, lock), nil)
	return nil
}

func (b *TransactionBuilder) Transaction() *ledger.Transaction {
	return b.tx
}
