package txbuilder

import (
	"github.com/lunfardo314/easydex/ledger"
	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easydex/settlement"
)

// DexLockCodeHash identifies the dex lock program in the ledger
var DexLockCodeHash = lockscript.Hash([]byte("easydex: dex lock"))

// DexLock is the dex lock with the encoded dexargs
func DexLock(args []byte) *lockscript.Script {
	return lockscript.New(DexLockCodeHash, lockscript.HashTypeType, args)
}

func IsDexLock(s *lockscript.Script) bool {
	return s.CodeHash == DexLockCodeHash
}

// DexLockProgram runs the settlement rule as a ledger lock program
func DexLockProgram(opts ...settlement.Option) ledger.LockProgram {
	return func(env settlement.Environment) error {
		return settlement.Run(env, opts...)
	}
}

// WithDexLock registers the dex lock program in the ledger
func WithDexLock(opts ...settlement.Option) ledger.Option {
	return ledger.WithLockProgram(DexLockCodeHash, DexLockProgram(opts...))
}
