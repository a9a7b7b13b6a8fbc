package lockscript

import (
	"encoding/hex"
	"testing"

	"github.com/lunfardo314/easydex/molecule"
	"github.com/stretchr/testify/require"
)

func testScript(args string) *Script {
	var codeHash [CodeHashSize]byte
	for i := range codeHash {
		codeHash[i] = byte(i)
	}
	return New(codeHash, HashTypeType, []byte(args))
}

func TestScript(t *testing.T) {
	t.Run("min size", func(t *testing.T) {
		s := testScript("")
		require.EqualValues(t, MinSize, len(s.Bytes()))
		require.EqualValues(t, 53, MinSize)
	})
	t.Run("back and forth", func(t *testing.T) {
		s := testScript("owner public key hash")
		data := s.Bytes()
		require.EqualValues(t, s.Size(), len(data))
		back, err := FromBytes(data)
		require.NoError(t, err)
		require.True(t, Equal(s, back))
		require.EqualValues(t, data, back.Bytes())
		require.True(t, back.Matches(data))
		t.Logf("%s", back)
	})
	t.Run("self-describing size", func(t *testing.T) {
		s := testScript("12345")
		sz, err := molecule.TotalSize(s.Bytes())
		require.NoError(t, err)
		require.EqualValues(t, s.Size(), sz)
	})
	t.Run("wrong code hash", func(t *testing.T) {
		data := molecule.PackTable(make([]byte, 31), []byte{1}, molecule.PackBytes(nil))
		_, err := FromBytes(data)
		require.Error(t, err)
	})
	t.Run("wrong hash type", func(t *testing.T) {
		data := molecule.PackTable(make([]byte, 32), []byte{1, 1}, molecule.PackBytes(nil))
		_, err := FromBytes(data)
		require.Error(t, err)
	})
	t.Run("wrong args", func(t *testing.T) {
		data := molecule.PackTable(make([]byte, 32), []byte{1}, []byte{5, 0, 0, 0, 1})
		_, err := FromBytes(data)
		require.ErrorIs(t, err, molecule.ErrTotalSize)
	})
	t.Run("extra field", func(t *testing.T) {
		data := molecule.PackTable(make([]byte, 32), []byte{1}, molecule.PackBytes(nil), []byte{})
		_, err := FromBytes(data)
		require.ErrorIs(t, err, molecule.ErrFieldCount)
	})
	t.Run("equal", func(t *testing.T) {
		require.True(t, Equal(nil, nil))
		require.False(t, Equal(testScript("a"), nil))
		require.False(t, Equal(testScript("a"), testScript("b")))
		s := testScript("a")
		s.HashType = HashTypeData1
		require.False(t, Equal(testScript("a"), s))
	})
}

func TestHash(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		h := Hash()
		require.EqualValues(t, "44f4c69744d5f8c55d642062949dcae49bc4e7ef43d388c5a12f42b5633d163e", hex.EncodeToString(h[:]))
	})
	t.Run("160", func(t *testing.T) {
		h := Hash([]byte("abc"))
		h160 := Hash160([]byte("abc"))
		require.EqualValues(t, h[:Hash160Size], h160[:])
	})
	t.Run("parts", func(t *testing.T) {
		require.EqualValues(t, Hash([]byte("abcdef")), Hash([]byte("abc"), []byte("def")))
	})
	t.Run("script", func(t *testing.T) {
		s := testScript("x")
		require.EqualValues(t, Hash(s.Bytes()), s.Hash())
	})
}
