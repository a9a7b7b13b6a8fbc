package ledger

import (
	"errors"
	"testing"

	"github.com/lunfardo314/easydex/dexargs"
	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/settlement"
	"github.com/lunfardo314/easydex/util/testutil"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
)

var (
	plainCode = lockscript.Hash([]byte("plain"))
	dexCode   = lockscript.Hash([]byte("dex"))
	failCode  = lockscript.Hash([]byte("always fails"))
)

func plainLock(name string) *lockscript.Script {
	return lockscript.New(plainCode, lockscript.HashTypeType, []byte(name))
}

func TestSerialization(t *testing.T) {
	udt := lockscript.New(lockscript.Hash([]byte("udt")), lockscript.HashTypeData1, []byte("udt args"))
	t.Run("out point", func(t *testing.T) {
		op := NewOutPoint(TransactionID{1, 2, 3}, 7)
		back, err := OutPointFromBytes(op.Bytes())
		require.NoError(t, err)
		require.EqualValues(t, op, back)
		_, err = OutPointFromBytes(op.Bytes()[1:])
		require.Error(t, err)
		t.Logf("%s", op)
	})
	t.Run("cell", func(t *testing.T) {
		c := &Cell{Output: NewCellOutput(1337, plainLock("a")).WithType(udt), Data: []byte{1, 2, 3}}
		back, err := CellFromBytes(c.Bytes())
		require.NoError(t, err)
		require.EqualValues(t, c.Bytes(), back.Bytes())
		require.True(t, lockscript.Equal(udt, back.Output.Type))
		require.EqualValues(t, 1337, back.Output.Capacity)
		t.Logf("%s", back)
	})
	t.Run("cell without type", func(t *testing.T) {
		c := &Cell{Output: NewCellOutput(1, plainLock("a"))}
		back, err := CellFromBytes(c.Bytes())
		require.NoError(t, err)
		require.Nil(t, back.Output.Type)
		require.EqualValues(t, 0, len(back.Data))
	})
	t.Run("transaction", func(t *testing.T) {
		tx := &Transaction{
			Inputs:      []OutPoint{NewOutPoint(TransactionID{1}, 0), NewOutPoint(TransactionID{2}, 5)},
			Outputs:     []CellOutput{NewCellOutput(10, plainLock("a")), NewCellOutput(20, plainLock("b")).WithType(udt)},
			OutputsData: [][]byte{nil, []byte("amount")},
		}
		back, err := TransactionFromBytes(tx.Bytes())
		require.NoError(t, err)
		require.EqualValues(t, tx.Bytes(), back.Bytes())
		require.EqualValues(t, tx.ID(), back.ID())
		require.EqualValues(t, tx.Inputs, back.Inputs)
		require.EqualValues(t, "amount", string(back.OutputsData[1]))
	})
	t.Run("missing outputs data", func(t *testing.T) {
		tx1 := &Transaction{Outputs: []CellOutput{NewCellOutput(10, plainLock("a"))}}
		tx2 := &Transaction{Outputs: []CellOutput{NewCellOutput(10, plainLock("a"))}, OutputsData: [][]byte{{}}}
		require.EqualValues(t, tx1.ID(), tx2.ID())
	})
}

type fixture struct {
	l       *Ledger
	genesis *Transaction
	alice   *lockscript.Script
	bob     *lockscript.Script
}

func newFixture(opts ...Option) *fixture {
	ret := &fixture{
		alice: plainLock("alice"),
		bob:   plainLock("bob"),
	}
	opts = append(opts, WithLogger(testutil.NewSimpleLogger(true)))
	ret.l = New(opts...)
	ret.genesis = ret.l.Genesis([]CellOutput{
		NewCellOutput(1000, ret.alice),
		NewCellOutput(2000, ret.bob),
	})
	return ret
}

func TestLedger(t *testing.T) {
	t.Run("genesis", func(t *testing.T) {
		f := newFixture()
		c, ok := f.l.GetCell(f.genesis.OutPoint(1))
		require.True(t, ok)
		require.EqualValues(t, 2000, c.Output.Capacity)
		require.True(t, lockscript.Equal(f.bob, c.Output.Lock))
	})
	t.Run("transfer", func(t *testing.T) {
		f := newFixture()
		tx := &Transaction{
			Inputs:  []OutPoint{f.genesis.OutPoint(0)},
			Outputs: []CellOutput{NewCellOutput(600, f.bob), NewCellOutput(400, f.alice)},
		}
		require.NoError(t, f.l.AddTransaction(tx))
		_, ok := f.l.GetCell(f.genesis.OutPoint(0))
		require.False(t, ok)
		c, ok := f.l.GetCell(tx.OutPoint(0))
		require.True(t, ok)
		require.EqualValues(t, 600, c.Output.Capacity)

		// double spend
		err := f.l.AddTransaction(tx)
		require.ErrorIs(t, err, ErrInputNotFound)
	})
	t.Run("no inputs", func(t *testing.T) {
		f := newFixture()
		err := f.l.AddTransaction(&Transaction{Outputs: []CellOutput{NewCellOutput(1, f.bob)}})
		require.ErrorIs(t, err, ErrNoInputs)
	})
	t.Run("repeating input", func(t *testing.T) {
		f := newFixture()
		err := f.l.AddTransaction(&Transaction{Inputs: []OutPoint{f.genesis.OutPoint(0), f.genesis.OutPoint(0)}})
		require.ErrorIs(t, err, ErrRepeatingInput)
	})
	t.Run("capacity exceeded", func(t *testing.T) {
		f := newFixture()
		err := f.l.AddTransaction(&Transaction{
			Inputs:  []OutPoint{f.genesis.OutPoint(0)},
			Outputs: []CellOutput{NewCellOutput(1001, f.bob)},
		})
		require.ErrorIs(t, err, ErrCapacityExceeded)
	})
	t.Run("failing lock program is not applied", func(t *testing.T) {
		errFail := errors.New("locked forever")
		f := newFixture(WithLockProgram(failCode, func(settlement.Environment) error {
			return errFail
		}))
		locked := lockscript.New(failCode, lockscript.HashTypeData, nil)
		tx := &Transaction{
			Inputs:  []OutPoint{f.genesis.OutPoint(0)},
			Outputs: []CellOutput{NewCellOutput(1000, locked)},
		}
		require.NoError(t, f.l.AddTransaction(tx))
		err := f.l.AddTransaction(&Transaction{
			Inputs:  []OutPoint{tx.OutPoint(0)},
			Outputs: []CellOutput{NewCellOutput(1000, f.alice)},
		})
		require.ErrorIs(t, err, errFail)
		_, ok := f.l.GetCell(tx.OutPoint(0))
		require.True(t, ok)
	})
}

func TestScriptGroups(t *testing.T) {
	f := newFixture()
	tx := &Transaction{
		Inputs:  []OutPoint{f.genesis.OutPoint(0), f.genesis.OutPoint(1)},
		Outputs: []CellOutput{NewCellOutput(1500, f.alice), NewCellOutput(1500, f.alice)},
	}
	require.NoError(t, f.l.AddTransaction(tx))
	tx2 := &Transaction{
		Inputs:  []OutPoint{tx.OutPoint(1), tx.OutPoint(0)},
		Outputs: []CellOutput{NewCellOutput(3000, f.bob)},
	}
	ctx, err := f.l.ValidationContext(tx2)
	require.NoError(t, err)
	groups := ctx.ScriptGroups()
	require.EqualValues(t, 1, len(groups))
	require.EqualValues(t, []int{0, 1}, groups[0].InputIndices)

	env := ctx.Environment(groups[0])
	args, err := env.LoadSelfArgs()
	require.NoError(t, err)
	require.EqualValues(t, "alice", string(args))
	idx, err := env.FindSelfInInputs()
	require.NoError(t, err)
	require.EqualValues(t, 0, idx)
	require.True(t, env.AnyInputLockedBy(f.alice.Bytes()))
	require.False(t, env.AnyInputLockedBy(f.bob.Bytes()))

	capacity, err := env.LoadCapacity(0, settlement.SourceOutput)
	require.NoError(t, err)
	require.EqualValues(t, 3000, capacity)
	lock, err := env.LoadLock(0, settlement.SourceOutput)
	require.NoError(t, err)
	require.EqualValues(t, f.bob.Bytes(), lock)

	_, err = env.LoadCapacity(1, settlement.SourceOutput)
	require.ErrorIs(t, err, settlement.ErrIndexOutOfBound)
	_, err = env.LoadLock(2, settlement.SourceInput)
	require.ErrorIs(t, err, settlement.ErrIndexOutOfBound)
	_, err = env.LoadCapacity(-1, settlement.SourceInput)
	require.ErrorIs(t, err, settlement.ErrIndexOutOfBound)
}

func TestDexLockProgram(t *testing.T) {
	seller := plainLock("seller")
	buyer := plainLock("buyer")

	setup := func(payment uint64) (*fixture, *Transaction) {
		f := newFixture(WithLockProgram(dexCode, func(env settlement.Environment) error {
			return settlement.Run(env)
		}))
		args := dexargs.NewBuilder(seller, dexargs.ModeNFT, uint128.From64(payment)).Bytes()
		offer := &Transaction{
			Inputs:  []OutPoint{f.genesis.OutPoint(0)},
			Outputs: []CellOutput{NewCellOutput(1000, lockscript.New(dexCode, lockscript.HashTypeType, args))},
		}
		require.NoError(t, f.l.AddTransaction(offer))
		return f, offer
	}
	t.Run("settled", func(t *testing.T) {
		f, offer := setup(1500)
		take := &Transaction{
			Inputs:  []OutPoint{offer.OutPoint(0), f.genesis.OutPoint(1)},
			Outputs: []CellOutput{NewCellOutput(1500, seller), NewCellOutput(1500, buyer)},
		}
		require.NoError(t, f.l.AddTransaction(take))
	})
	t.Run("underpaid", func(t *testing.T) {
		f, offer := setup(1500)
		take := &Transaction{
			Inputs:  []OutPoint{offer.OutPoint(0), f.genesis.OutPoint(1)},
			Outputs: []CellOutput{NewCellOutput(1499, seller), NewCellOutput(1501, buyer)},
		}
		err := f.l.AddTransaction(take)
		require.ErrorIs(t, err, settlement.ErrAmountMismatch)
		require.EqualValues(t, settlement.CodeAmountMismatch, settlement.ExitCode(err))
	})
}
