package dexargs

import (
	"fmt"

	"github.com/lunfardo314/easydex/lockscript"
	"lukechampine.com/uint128"
)

/*
 Arguments of the DEX lock. Layout:
 - owner lock: serialized script. Its first 4 bytes (little-endian) are its own total size
 - mode: 1 byte
 - payment: 16 bytes, big-endian unsigned
 - options, by the length of the tail:
   - 20 bytes: fingerprint
   - longer than owner lock + 21 bytes: receiver lock, serialized script with self-describing size,
     followed by the 20 bytes fingerprint if exactly 20 bytes are left. Other trailing bytes are ignored
   - otherwise nothing
*/

const (
	MinArgsSize     = 66
	FingerprintSize = lockscript.Hash160Size
	// mode byte and payment after the owner lock
	fixedSuffixSize = 1 + 16
)

type Mode byte

const (
	// ModeUDT the locked cell carries a fungible amount of user defined token
	ModeUDT = Mode(iota)
	// ModeNFT the locked cell carries a unique item
	ModeNFT
)

type OptionsKind byte

const (
	OptionsNone = OptionsKind(iota)
	OptionsReceiverOnly
	OptionsFingerprintOnly
	OptionsReceiverAndFingerprint
)

type (
	Options struct {
		Kind        OptionsKind
		Receiver    *lockscript.Script
		Fingerprint [FingerprintSize]byte
	}

	// Args is decoded fresh on each run and never mutated
	Args struct {
		Owner   *lockscript.Script
		Mode    Mode
		Payment uint128.Uint128
		Options Options
	}
)

func Decode(buf []byte) (*Args, error) {
	if len(buf) < MinArgsSize {
		return nil, newError(TooShort, "%d bytes, minimum is %d", len(buf), MinArgsSize)
	}
	r := newReader(buf)
	ownerSize, err := r.peekUint32LE("owner")
	if err != nil {
		return nil, err
	}
	if uint64(ownerSize)+fixedSuffixSize > uint64(len(buf)) {
		return nil, newError(TooShort, "owner size %d requires at least %d bytes, got %d", ownerSize, uint64(ownerSize)+fixedSuffixSize, len(buf))
	}
	ownerBin, err := r.next(int(ownerSize), "owner")
	if err != nil {
		return nil, err
	}
	owner, err := lockscript.FromBytes(ownerBin)
	if err != nil {
		return nil, wrapError(MalformedIdentity, err, "owner")
	}
	mode, err := r.readByte("mode")
	if err != nil {
		return nil, err
	}
	payment, err := r.readUint128BE("payment")
	if err != nil {
		return nil, err
	}
	opts, err := decodeOptions(newReader(r.rest()), int(ownerSize)+fixedSuffixSize)
	if err != nil {
		return nil, err
	}
	return &Args{
		Owner:   owner,
		Mode:    Mode(mode),
		Payment: payment,
		Options: opts,
	}, nil
}

// decodeOptions dispatches on the length of the tail. A receiver is recognized only when
// the tail is longer than the owner lock with the fixed fields plus the receiver size header.
// Shorter tails carry no options, bytes after the receiver other than a fingerprint are ignored
func decodeOptions(r *reader, requiredSize int) (Options, error) {
	n := r.remaining()
	if n == FingerprintSize {
		fp, err := r.readFingerprint("fingerprint")
		if err != nil {
			return Options{}, err
		}
		return Options{Kind: OptionsFingerprintOnly, Fingerprint: fp}, nil
	}
	if n <= receiverThreshold(requiredSize) {
		return Options{Kind: OptionsNone}, nil
	}
	receiverSize, err := r.peekUint32LE("receiver")
	if err != nil {
		return Options{}, err
	}
	if uint64(receiverSize) > uint64(n) {
		return Options{}, newError(TooShort, "receiver size %d, %d bytes left", receiverSize, n)
	}
	receiverBin, err := r.next(int(receiverSize), "receiver")
	if err != nil {
		return Options{}, err
	}
	receiver, err := lockscript.FromBytes(receiverBin)
	if err != nil {
		return Options{}, wrapError(MalformedIdentity, err, "receiver")
	}
	if r.remaining() != FingerprintSize {
		r.rest()
		return Options{Kind: OptionsReceiverOnly, Receiver: receiver}, nil
	}
	fp, err := r.readFingerprint("fingerprint after receiver")
	if err != nil {
		return Options{}, err
	}
	return Options{Kind: OptionsReceiverAndFingerprint, Receiver: receiver, Fingerprint: fp}, nil
}

// receiverThreshold is the longest tail which is not parsed as a receiver
func receiverThreshold(requiredSize int) int {
	return requiredSize + 4
}

func (a *Args) IsNFT() bool {
	return a.Mode == ModeNFT
}

func (a *Args) IsUDT() bool {
	return a.Mode == ModeUDT
}

// OwnerLock is the serialized owner lock, byte-exact with the args
func (a *Args) OwnerLock() []byte {
	return a.Owner.Bytes()
}

func (a *Args) Receiver() (*lockscript.Script, bool) {
	switch a.Options.Kind {
	case OptionsReceiverOnly, OptionsReceiverAndFingerprint:
		return a.Options.Receiver, true
	}
	return nil, false
}

func (a *Args) Fingerprint() ([FingerprintSize]byte, bool) {
	switch a.Options.Kind {
	case OptionsFingerprintOnly, OptionsReceiverAndFingerprint:
		return a.Options.Fingerprint, true
	}
	return [FingerprintSize]byte{}, false
}

// Bytes encodes the args back. Bytes which Decode ignored after the receiver are not kept
func (a *Args) Bytes() []byte {
	b := NewBuilder(a.Owner, a.Mode, a.Payment)
	if r, ok := a.Receiver(); ok {
		b.WithReceiver(r)
	}
	if fp, ok := a.Fingerprint(); ok {
		b.WithFingerprint(fp)
	}
	return b.Bytes()
}

func (a *Args) String() string {
	ret := fmt.Sprintf("dex(owner: %s, mode: %s, payment: %s", a.Owner, a.Mode, a.Payment)
	if r, ok := a.Receiver(); ok {
		ret += fmt.Sprintf(", receiver: %s", r)
	}
	if fp, ok := a.Fingerprint(); ok {
		ret += fmt.Sprintf(", fingerprint: %x", fp[:])
	}
	return ret + ")"
}

func (m Mode) String() string {
	switch m {
	case ModeUDT:
		return "UDT"
	case ModeNFT:
		return "NFT"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

func (k OptionsKind) String() string {
	switch k {
	case OptionsNone:
		return "none"
	case OptionsReceiverOnly:
		return "receiver"
	case OptionsFingerprintOnly:
		return "fingerprint"
	case OptionsReceiverAndFingerprint:
		return "receiver+fingerprint"
	}
	return fmt.Sprintf("options(%d)", byte(k))
}
