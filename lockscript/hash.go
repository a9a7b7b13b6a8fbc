package lockscript

import (
	"github.com/lunfardo314/easyfl"
	"github.com/minio/blake2b-simd"
)

const (
	HashSize    = 32
	Hash160Size = 20
)

var personalization = []byte("ckb-default-hash")

// Hash is blake2b-256 with the protocol personalization
func Hash(data ...[]byte) (ret [HashSize]byte) {
	h, err := blake2b.New(&blake2b.Config{
		Size:   HashSize,
		Person: personalization,
	})
	easyfl.AssertNoError(err)
	for _, d := range data {
		h.Write(d)
	}
	copy(ret[:], h.Sum(nil))
	return
}

// Hash160 is the first 20 bytes of Hash
func Hash160(data ...[]byte) (ret [Hash160Size]byte) {
	h := Hash(data...)
	copy(ret[:], h[:Hash160Size])
	return
}
