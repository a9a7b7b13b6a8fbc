package utxodb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/lunfardo314/easydex/ledger"
	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/settlement"
	"github.com/lunfardo314/easydex/txbuilder"
	"github.com/lunfardo314/easydex/util/testutil"
	"github.com/lunfardo314/easyfl"
	"go.uber.org/zap"
)

// UTXODB is an in-memory ledger with the dex lock, a faucet and an index of cells by lock

type UTXODB struct {
	ledger     *ledger.Ledger
	index      map[string]map[ledger.OutPoint]struct{}
	faucetLock *lockscript.Script
	supply     uint64
	log        *zap.SugaredLogger
}

const (
	// for determinism
	deterministicSeed       = "1234567890987654321"
	supplyForTesting        = uint64(1_000_000_000_000)
	TokensFromFaucetDefault = uint64(1_000_000)
)

// SighashCodeHash is the code of plain locks. Signatures are not checked by the ledger
var SighashCodeHash = lockscript.Hash([]byte("easydex: sighash lock"))

func NewUTXODB(trace ...bool) *UTXODB {
	var log *zap.SugaredLogger
	if len(trace) > 0 && trace[0] {
		log = testutil.NewSimpleLogger(true, "utxodb")
	} else {
		log = zap.NewNop().Sugar()
	}
	ret := &UTXODB{
		ledger: ledger.New(
			ledger.WithLogger(log),
			txbuilder.WithDexLock(settlement.WithLogger(log.Named("dex"))),
		),
		index:  make(map[string]map[ledger.OutPoint]struct{}),
		supply: supplyForTesting,
		log:    log,
	}
	ret.faucetLock = ret.GenerateLock(0xffff)
	genesis := ret.ledger.Genesis([]ledger.CellOutput{ledger.NewCellOutput(supplyForTesting, ret.faucetLock)})
	ret.indexOutputs(genesis)
	return ret
}

func (u *UTXODB) Supply() uint64 {
	return u.supply
}

func (u *UTXODB) Ledger() *ledger.Ledger {
	return u.ledger
}

func (u *UTXODB) FaucetLock() *lockscript.Script {
	return u.faucetLock
}

// GenerateLock makes deterministic plain lock number n
func (u *UTXODB) GenerateLock(n uint16) *lockscript.Script {
	var u16 [2]byte
	binary.BigEndian.PutUint16(u16[:], n)
	h := lockscript.Hash160([]byte(deterministicSeed), u16[:])
	return lockscript.New(SighashCodeHash, lockscript.HashTypeType, h[:])
}

func (u *UTXODB) GetCell(op ledger.OutPoint) (*ledger.Cell, bool) {
	return u.ledger.GetCell(op)
}

// AddTransaction validates transaction, updates the ledger and the index
func (u *UTXODB) AddTransaction(tx *ledger.Transaction) error {
	consumed := make([]*ledger.Cell, len(tx.Inputs))
	for i, op := range tx.Inputs {
		consumed[i], _ = u.ledger.GetCell(op)
	}
	if err := u.ledger.AddTransaction(tx); err != nil {
		return err
	}
	for i, op := range tx.Inputs {
		delete(u.index[string(consumed[i].Output.Lock.Bytes())], op)
	}
	u.indexOutputs(tx)
	return nil
}

func (u *UTXODB) indexOutputs(tx *ledger.Transaction) {
	txid := tx.ID()
	for i := range tx.Outputs {
		key := string(tx.Outputs[i].Lock.Bytes())
		if _, ok := u.index[key]; !ok {
			u.index[key] = make(map[ledger.OutPoint]struct{})
		}
		u.index[key][ledger.NewOutPoint(txid, uint32(i))] = struct{}{}
	}
}

// CellsOf returns out points of all cells locked by the lock, sorted
func (u *UTXODB) CellsOf(lock *lockscript.Script) []ledger.OutPoint {
	ret := make([]ledger.OutPoint, 0)
	for op := range u.index[string(lock.Bytes())] {
		ret = append(ret, op)
	}
	sort.Slice(ret, func(i, j int) bool {
		return bytes.Compare(ret[i].Bytes(), ret[j].Bytes()) < 0
	})
	return ret
}

func (u *UTXODB) account(lock *lockscript.Script) (uint64, int) {
	ops := u.CellsOf(lock)
	balance := uint64(0)
	for _, op := range ops {
		c, ok := u.ledger.GetCell(op)
		easyfl.Assert(ok, "inconsistent index: %s", op)
		balance += c.Output.Capacity
	}
	return balance, len(ops)
}

func (u *UTXODB) Balance(lock *lockscript.Script) uint64 {
	ret, _ := u.account(lock)
	return ret
}

func (u *UTXODB) NumCells(lock *lockscript.Script) int {
	_, ret := u.account(lock)
	return ret
}

// TokensFromFaucet sends capacity to the lock, TokensFromFaucetDefault by default
func (u *UTXODB) TokensFromFaucet(lock *lockscript.Script, howMany ...uint64) error {
	amount := TokensFromFaucetDefault
	if len(howMany) > 0 && howMany[0] > 0 {
		amount = howMany[0]
	}
	return u.Transfer(u.faucetLock, lock, amount)
}

// Transfer moves capacity from all cells of one lock to the other. Change goes back
func (u *UTXODB) Transfer(from, to *lockscript.Script, amount uint64) error {
	b := txbuilder.NewTransactionBuilder(u)
	if err := b.Consume(u.CellsOf(from)...); err != nil {
		return err
	}
	b.Produce(ledger.NewCellOutput(amount, to), nil)
	if err := b.ProduceChange(from); err != nil {
		return fmt.Errorf("UTXODB transfer: %w", err)
	}
	return u.AddTransaction(b.Transaction())
}
