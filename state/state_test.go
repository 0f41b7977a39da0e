// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"

	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/stakeyard"
)

func TestStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := stakeyard.BytesToAddress([]byte("addr"))
	key := stakeyard.BytesToBytes32([]byte("key"))
	value := stakeyard.BytesToBytes32([]byte("value"))

	got, err := st.GetStorage(addr, key)
	assert.Nil(t, err)
	assert.Equal(t, stakeyard.Bytes32{}, got)

	st.SetStorage(addr, key, value)
	got, err = st.GetStorage(addr, key)
	assert.Nil(t, err)
	assert.Equal(t, value, got)

	// zero value clears the slot
	st.SetStorage(addr, key, stakeyard.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.Nil(t, err)
	assert.Zero(t, len(raw))
}

func TestEncodeDecodeStorage(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := stakeyard.BytesToAddress([]byte("addr"))
	key := stakeyard.BytesToBytes32([]byte("key"))

	type entry struct {
		A uint64
		B []byte
	}
	in := entry{42, []byte("payload")}

	err := st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&in)
	})
	assert.Nil(t, err)

	var out entry
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &out)
	})
	assert.Nil(t, err)
	assert.Equal(t, in, out)
}

func TestCheckpointRevert(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := stakeyard.BytesToAddress([]byte("addr"))
	k1 := stakeyard.BytesToBytes32([]byte("k1"))
	k2 := stakeyard.BytesToBytes32([]byte("k2"))
	v1 := stakeyard.BytesToBytes32([]byte("v1"))

	st.SetStorage(addr, k1, v1)

	chk := st.NewCheckpoint()
	st.SetStorage(addr, k1, stakeyard.BytesToBytes32([]byte("v1.1")))
	st.SetStorage(addr, k2, stakeyard.BytesToBytes32([]byte("v2")))
	st.RevertTo(chk)

	got, _ := st.GetStorage(addr, k1)
	assert.Equal(t, v1, got)
	got, _ = st.GetStorage(addr, k2)
	assert.Equal(t, stakeyard.Bytes32{}, got)
}

func TestCommit(t *testing.T) {
	db, _ := lvldb.NewMem()
	st := New(db)

	addr := stakeyard.BytesToAddress([]byte("addr"))
	key := stakeyard.BytesToBytes32([]byte("key"))
	value := stakeyard.BytesToBytes32([]byte("value"))

	st.SetStorage(addr, key, value)
	assert.Nil(t, st.Commit())

	// a fresh state over the same store sees the committed value
	st2 := New(db)
	got, err := st2.GetStorage(addr, key)
	assert.Nil(t, err)
	assert.Equal(t, value, got)

	// state stays usable after commit
	st.SetStorage(addr, key, stakeyard.Bytes32{})
	assert.Nil(t, st.Commit())

	st3 := New(db)
	got, _ = st3.GetStorage(addr, key)
	assert.Equal(t, stakeyard.Bytes32{}, got)
}
