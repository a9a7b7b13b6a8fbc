package utxodb

import (
	"testing"

	"github.com/lunfardo314/easydex/ledger"
	"github.com/stretchr/testify/require"
)

func TestUTXODB(t *testing.T) {
	t.Run("origin", func(t *testing.T) {
		u := NewUTXODB(true)
		require.EqualValues(t, u.Supply(), u.Balance(u.FaucetLock()))
		require.EqualValues(t, 1, u.NumCells(u.FaucetLock()))
	})
	t.Run("locks", func(t *testing.T) {
		u := NewUTXODB()
		require.EqualValues(t, u.GenerateLock(1).Bytes(), u.GenerateLock(1).Bytes())
		require.NotEqualValues(t, u.GenerateLock(1).Bytes(), u.GenerateLock(2).Bytes())
		require.EqualValues(t, SighashCodeHash, u.GenerateLock(3).CodeHash)
	})
	t.Run("faucet", func(t *testing.T) {
		u := NewUTXODB(true)
		lock := u.GenerateLock(1)
		require.NoError(t, u.TokensFromFaucet(lock))
		require.EqualValues(t, TokensFromFaucetDefault, u.Balance(lock))
		require.NoError(t, u.TokensFromFaucet(lock, 100))
		require.EqualValues(t, TokensFromFaucetDefault+100, u.Balance(lock))
		require.EqualValues(t, 2, u.NumCells(lock))
		require.EqualValues(t, u.Supply()-TokensFromFaucetDefault-100, u.Balance(u.FaucetLock()))
		require.EqualValues(t, 1, u.NumCells(u.FaucetLock()))
	})
	t.Run("transfer", func(t *testing.T) {
		u := NewUTXODB(true)
		alice, bob := u.GenerateLock(1), u.GenerateLock(2)
		require.NoError(t, u.TokensFromFaucet(alice, 1000))
		require.NoError(t, u.Transfer(alice, bob, 300))
		require.EqualValues(t, 700, u.Balance(alice))
		require.EqualValues(t, 300, u.Balance(bob))

		require.NoError(t, u.Transfer(alice, bob, 700))
		require.EqualValues(t, 0, u.Balance(alice))
		require.EqualValues(t, 0, u.NumCells(alice))
		require.EqualValues(t, 1000, u.Balance(bob))
		require.EqualValues(t, 2, u.NumCells(bob))

		err := u.Transfer(bob, alice, 1001)
		require.Error(t, err)
		require.EqualValues(t, 1000, u.Balance(bob))
	})
	t.Run("index follows the ledger", func(t *testing.T) {
		u := NewUTXODB()
		lock := u.GenerateLock(7)
		require.NoError(t, u.TokensFromFaucet(lock, 10))
		ops := u.CellsOf(lock)
		require.EqualValues(t, 1, len(ops))
		c, ok := u.GetCell(ops[0])
		require.True(t, ok)
		require.EqualValues(t, 10, c.Output.Capacity)

		tx := &ledger.Transaction{Inputs: []ledger.OutPoint{ops[0]}, Outputs: []ledger.CellOutput{ledger.NewCellOutput(11, lock)}}
		require.ErrorIs(t, u.AddTransaction(tx), ledger.ErrCapacityExceeded)
		require.EqualValues(t, ops, u.CellsOf(lock))
	})
}
