package dexargs

import (
	"github.com/lunfardo314/easydex/lockscript"
	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/unitrie/common"
	"lukechampine.com/uint128"
)

// Builder produces arguments which Decode maps back to the same Args. A receiver is kept
// by Decode only if the options are long enough, see ReceiverRecognized
type Builder struct {
	owner       *lockscript.Script
	mode        Mode
	payment     uint128.Uint128
	receiver    *lockscript.Script
	fingerprint *[FingerprintSize]byte
}

func NewBuilder(owner *lockscript.Script, mode Mode, payment uint128.Uint128) *Builder {
	easyfl.Assert(owner != nil, "dexargs.NewBuilder: owner lock is required")
	return &Builder{
		owner:   owner,
		mode:    mode,
		payment: payment,
	}
}

func (b *Builder) WithReceiver(receiver *lockscript.Script) *Builder {
	b.receiver = receiver
	return b
}

func (b *Builder) WithFingerprint(fp [FingerprintSize]byte) *Builder {
	b.fingerprint = &fp
	return b
}

// WithAssetType sets the fingerprint of the type script of the asset
func (b *Builder) WithAssetType(typeScript *lockscript.Script) *Builder {
	return b.WithFingerprint(Fingerprint(typeScript))
}

func (b *Builder) Bytes() []byte {
	var payment [16]byte
	b.payment.PutBytesBE(payment[:])
	ret := common.Concat(b.owner.Bytes(), byte(b.mode), payment[:])
	if b.receiver != nil {
		ret = common.Concat(ret, b.receiver.Bytes())
	}
	if b.fingerprint != nil {
		ret = common.Concat(ret, b.fingerprint[:])
	}
	return ret
}

// Args returns the descriptor as Decode would produce it
func (b *Builder) Args() *Args {
	ret := &Args{
		Owner:   b.owner,
		Mode:    b.mode,
		Payment: b.payment,
	}
	receiver := b.receiver
	if !b.ReceiverRecognized() {
		receiver = nil
	}
	switch {
	case receiver != nil && b.fingerprint != nil:
		ret.Options = Options{Kind: OptionsReceiverAndFingerprint, Receiver: receiver, Fingerprint: *b.fingerprint}
	case receiver != nil:
		ret.Options = Options{Kind: OptionsReceiverOnly, Receiver: receiver}
	case b.fingerprint != nil && b.receiver == nil:
		ret.Options = Options{Kind: OptionsFingerprintOnly, Fingerprint: *b.fingerprint}
	}
	return ret
}

// ReceiverRecognized says whether Decode will see the receiver. With a receiver shorter than
// the owner lock plus 22 bytes (fingerprint included) the options are read as empty
func (b *Builder) ReceiverRecognized() bool {
	if b.receiver == nil {
		return false
	}
	tail := b.receiver.Size()
	if b.fingerprint != nil {
		tail += FingerprintSize
	}
	return tail > receiverThreshold(b.owner.Size()+fixedSuffixSize)
}

// Fingerprint identifies the asset type by the hash of its type script
func Fingerprint(typeScript *lockscript.Script) [FingerprintSize]byte {
	return lockscript.Hash160(typeScript.Bytes())
}
