package ledger

import (
	"bytes"

	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/settlement"
	"github.com/lunfardo314/unitrie/common"
)

// TxContext is a transaction with resolved inputs: everything a lock can see
type TxContext struct {
	tx       *Transaction
	consumed []*Cell
	// cached serialized locks
	inputLocks  [][]byte
	outputLocks [][]byte
}

// ScriptGroup is the set of inputs with the same lock. The lock runs once per group
type ScriptGroup struct {
	Lock         *lockscript.Script
	InputIndices []int
}

func NewTxContext(tx *Transaction, consumed []*Cell) *TxContext {
	ret := &TxContext{
		tx:          tx,
		consumed:    consumed,
		inputLocks:  make([][]byte, len(consumed)),
		outputLocks: make([][]byte, len(tx.Outputs)),
	}
	for i, c := range consumed {
		ret.inputLocks[i] = c.Output.Lock.Bytes()
	}
	for i := range tx.Outputs {
		ret.outputLocks[i] = tx.Outputs[i].Lock.Bytes()
	}
	return ret
}

func (c *TxContext) Transaction() *Transaction {
	return c.tx
}

func (c *TxContext) ConsumedCell(idx int) *Cell {
	return c.consumed[idx]
}

// ScriptGroups in the order of the first input in the group
func (c *TxContext) ScriptGroups() []*ScriptGroup {
	ret := make([]*ScriptGroup, 0)
	byLock := make(map[string]*ScriptGroup)
	for i, lock := range c.inputLocks {
		g, ok := byLock[string(lock)]
		if !ok {
			g = &ScriptGroup{Lock: c.consumed[i].Output.Lock}
			byLock[string(lock)] = g
			ret = append(ret, g)
		}
		g.InputIndices = append(g.InputIndices, i)
	}
	return ret
}

// Environment is what the lock of the group sees when it runs
func (c *TxContext) Environment(g *ScriptGroup) settlement.Environment {
	return &groupEnv{
		ctx:  c,
		self: g.Lock,
	}
}

// groupEnv implements settlement.Environment for one script group
type groupEnv struct {
	ctx  *TxContext
	self *lockscript.Script
}

func (e *groupEnv) LoadSelfArgs() ([]byte, error) {
	return common.Concat(e.self.Args), nil
}

func (e *groupEnv) AnyInputLockedBy(lock []byte) bool {
	for _, l := range e.ctx.inputLocks {
		if bytes.Equal(l, lock) {
			return true
		}
	}
	return false
}

func (e *groupEnv) FindSelfInInputs() (int, error) {
	self := e.self.Bytes()
	for i, l := range e.ctx.inputLocks {
		if bytes.Equal(l, self) {
			return i, nil
		}
	}
	return 0, settlement.ErrNotFound
}

func (e *groupEnv) LoadCapacity(index int, src settlement.Source) (uint64, error) {
	out, err := e.output(index, src)
	if err != nil {
		return 0, err
	}
	return out.Capacity, nil
}

func (e *groupEnv) LoadLock(index int, src settlement.Source) ([]byte, error) {
	locks := e.ctx.inputLocks
	if src == settlement.SourceOutput {
		locks = e.ctx.outputLocks
	}
	if index < 0 || index >= len(locks) {
		return nil, indexOutOfBound(index, src)
	}
	return common.Concat(locks[index]), nil
}

func (e *groupEnv) output(index int, src settlement.Source) (*CellOutput, error) {
	switch src {
	case settlement.SourceInput:
		if index >= 0 && index < len(e.ctx.consumed) {
			return &e.ctx.consumed[index].Output, nil
		}
	case settlement.SourceOutput:
		if index >= 0 && index < len(e.ctx.tx.Outputs) {
			return &e.ctx.tx.Outputs[index], nil
		}
	}
	return nil, indexOutOfBound(index, src)
}
