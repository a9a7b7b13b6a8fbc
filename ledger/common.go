package ledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/unitrie/common"
)

const (
	TransactionIDLength = 32
	OutPointLength      = TransactionIDLength + 4
)

type (
	TransactionID [TransactionIDLength]byte

	// OutPoint points to the output of the transaction
	OutPoint struct {
		TxID  TransactionID
		Index uint32
	}

	// CellStore holds live cells, serialized, by serialized out point
	CellStore interface {
		common.KVReader
		common.KVWriter
	}
)

func NewOutPoint(txid TransactionID, idx uint32) OutPoint {
	return OutPoint{TxID: txid, Index: idx}
}

func OutPointFromBytes(data []byte) (ret OutPoint, err error) {
	if len(data) != OutPointLength {
		err = errors.New("OutPointFromBytes: wrong data length")
		return
	}
	copy(ret.TxID[:], data[:TransactionIDLength])
	ret.Index = binary.LittleEndian.Uint32(data[TransactionIDLength:])
	return
}

func (o OutPoint) Bytes() []byte {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], o.Index)
	return common.Concat(o.TxID[:], idx[:])
}

func (o OutPoint) String() string {
	return fmt.Sprintf("[%d]%s", o.Index, o.TxID.String())
}

func (txid TransactionID) String() string {
	return easyfl.Fmt(txid[:])
}
