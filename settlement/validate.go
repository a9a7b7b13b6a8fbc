package settlement

import (
	"bytes"
	"fmt"

	"github.com/lunfardo314/easydex/dexargs"
	"go.uber.org/zap"
	"lukechampine.com/uint128"
)

/*
 The settlement rule is a sequence of steps. Each step either fails, which is terminal,
 or names the next step:

 ownerOverride --(owner input present)--------------------------> done (VerdictOwnerOverride)
       |
       v
 locate --> destination --> amount --> done (VerdictSettled)

 - ownerOverride: the owner authorizes the spend by its own lock on another input
 - locate: index of the first input locked by the dex lock itself. Output with the same index is the payment
 - destination: the payment output must be locked by the owner lock, byte by byte
 - amount: depends on mode. NFT: payment <= output capacity.
   UDT: payment + input capacity <= output capacity, the sum is 128 bit and must not overflow.
   Other modes are not checked
*/

type Verdict byte

const (
	VerdictRejected = Verdict(iota)
	VerdictOwnerOverride
	VerdictSettled
)

type step byte

const (
	stepOwnerOverride = step(iota)
	stepLocate
	stepDestination
	stepAmount
	stepDone
)

type validation struct {
	args    *dexargs.Args
	facts   TxFacts
	log     *zap.SugaredLogger
	owner   []byte
	index   int
	verdict Verdict
}

// Validate applies the settlement rule to the decoded args
func Validate(args *dexargs.Args, facts TxFacts, opts ...Option) (Verdict, error) {
	o := makeOptions(opts)
	v := &validation{
		args:  args,
		facts: facts,
		log:   o.log,
		owner: args.OwnerLock(),
		index: -1,
	}
	for st := stepOwnerOverride; st != stepDone; {
		next, err := v.run(st)
		if err != nil {
			v.log.Debugf("rejected at %s: %v", st, err)
			return VerdictRejected, err
		}
		v.log.Debugf("%s -> %s", st, next)
		st = next
	}
	v.log.Debugf("accepted: %s", v.verdict)
	return v.verdict, nil
}

func (v *validation) run(st step) (step, error) {
	switch st {
	case stepOwnerOverride:
		return v.ownerOverride()
	case stepLocate:
		return v.locate()
	case stepDestination:
		return v.destination()
	case stepAmount:
		return v.amount()
	}
	return stepDone, fmt.Errorf("settlement: unexpected step %s", st)
}

func (v *validation) ownerOverride() (step, error) {
	if v.facts.AnyInputLockedBy(v.owner) {
		v.verdict = VerdictOwnerOverride
		return stepDone, nil
	}
	return stepLocate, nil
}

func (v *validation) locate() (step, error) {
	idx, err := v.facts.FindSelfInInputs()
	if err != nil {
		return stepDone, err
	}
	v.index = idx
	return stepDestination, nil
}

func (v *validation) destination() (step, error) {
	lock, err := v.facts.LoadLock(v.index, SourceOutput)
	if err != nil {
		return stepDone, err
	}
	if !bytes.Equal(v.owner, lock) {
		return stepDone, failf(ErrOwnerLockMismatch, "output #%d", v.index)
	}
	return stepAmount, nil
}

func (v *validation) amount() (step, error) {
	inCap, err := v.facts.LoadCapacity(v.index, SourceInput)
	if err != nil {
		return stepDone, err
	}
	outCap, err := v.facts.LoadCapacity(v.index, SourceOutput)
	if err != nil {
		return stepDone, err
	}
	switch v.args.Mode {
	case dexargs.ModeNFT:
		// input capacity is not counted for the unique item
		if v.args.Payment.Cmp64(outCap) > 0 {
			return stepDone, failf(ErrAmountMismatch, "NFT: payment %s > output capacity %d", v.args.Payment, outCap)
		}
	case dexargs.ModeUDT:
		total, ok := checkedAdd(v.args.Payment, uint128.From64(inCap))
		if !ok {
			return stepDone, failf(ErrOverflow, "payment %s + input capacity %d", v.args.Payment, inCap)
		}
		if total.Cmp64(outCap) > 0 {
			return stepDone, failf(ErrAmountMismatch, "UDT: payment %s + input capacity %d > output capacity %d", v.args.Payment, inCap, outCap)
		}
	default:
		v.log.Debugf("mode %s: amount is not checked", v.args.Mode)
	}
	v.verdict = VerdictSettled
	return stepDone, nil
}

func checkedAdd(a, b uint128.Uint128) (uint128.Uint128, bool) {
	ret := a.AddWrap(b)
	return ret, ret.Cmp(a) >= 0
}

func (s step) String() string {
	switch s {
	case stepOwnerOverride:
		return "ownerOverride"
	case stepLocate:
		return "locate"
	case stepDestination:
		return "destination"
	case stepAmount:
		return "amount"
	case stepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", byte(s))
}

func (v Verdict) String() string {
	switch v {
	case VerdictRejected:
		return "rejected"
	case VerdictOwnerOverride:
		return "owner override"
	case VerdictSettled:
		return "settled"
	}
	return fmt.Sprintf("verdict(%d)", byte(v))
}
