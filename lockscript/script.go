package lockscript

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/lunfardo314/easydex/molecule"
	"github.com/lunfardo314/easyfl"
	"github.com/lunfardo314/unitrie/common"
)

/*
 Script is the identity descriptor: a reference to the code which controls a cell plus the arguments
 for that code. Serialized as a molecule table:
 - code_hash: 32 bytes
 - hash_type: 1 byte
 - args: Bytes (4 bytes little-endian length + data)
 The serialization is self-describing: its first 4 bytes are the total size of the serialized script
*/

type HashType byte

const (
	HashTypeData = HashType(iota)
	HashTypeType
	HashTypeData1
	HashTypeData2 = HashType(4)
)

const (
	CodeHashSize = 32
	numFields    = 3
	// MinSize is the size of the serialized script with empty args
	MinSize = molecule.HeaderSize*(numFields+1) + CodeHashSize + 1 + molecule.HeaderSize
)

type Script struct {
	CodeHash [CodeHashSize]byte
	HashType HashType
	Args     []byte
}

func New(codeHash [CodeHashSize]byte, hashType HashType, args []byte) *Script {
	return &Script{
		CodeHash: codeHash,
		HashType: hashType,
		Args:     common.Concat(args),
	}
}

// FromBytes parses serialized script. The serialization must be canonical,
// so Bytes of the result is always equal to data
func FromBytes(data []byte) (*Script, error) {
	fields, err := molecule.ParseTable(data, numFields)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	if len(fields[0]) != CodeHashSize {
		return nil, fmt.Errorf("script: wrong code hash length %d", len(fields[0]))
	}
	if len(fields[1]) != 1 {
		return nil, fmt.Errorf("script: wrong hash type length %d", len(fields[1]))
	}
	args, err := molecule.ParseBytes(fields[2])
	if err != nil {
		return nil, fmt.Errorf("script args: %w", err)
	}
	ret := &Script{
		HashType: HashType(fields[1][0]),
		Args:     common.Concat(args),
	}
	copy(ret.CodeHash[:], fields[0])
	return ret, nil
}

func (s *Script) Bytes() []byte {
	return molecule.PackTable(s.CodeHash[:], []byte{byte(s.HashType)}, molecule.PackBytes(s.Args))
}

func (s *Script) Size() int {
	return MinSize + len(s.Args)
}

// Hash is the protocol hash of the serialized script
func (s *Script) Hash() [32]byte {
	return Hash(s.Bytes())
}

func (s *Script) String() string {
	return fmt.Sprintf("script(%s, %s, 0x%s)", easyfl.Fmt(s.CodeHash[:]), s.HashType, hex.EncodeToString(s.Args))
}

// Equal compares serialized forms
func Equal(s1, s2 *Script) bool {
	if s1 == nil || s2 == nil {
		return s1 == s2
	}
	return bytes.Equal(s1.Bytes(), s2.Bytes())
}

// Matches says whether the serialized lock is exactly the script
func (s *Script) Matches(data []byte) bool {
	return bytes.Equal(s.Bytes(), data)
}

func (h HashType) String() string {
	switch h {
	case HashTypeData:
		return "data"
	case HashTypeType:
		return "type"
	case HashTypeData1:
		return "data1"
	case HashTypeData2:
		return "data2"
	}
	return fmt.Sprintf("hash_type(%d)", byte(h))
}
