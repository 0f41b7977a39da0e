// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeyard/stakeyard/lvldb"
	"github.com/stakeyard/stakeyard/stakeyard"
	"github.com/stakeyard/stakeyard/state"
)

func newTestContext() *Context {
	db, _ := lvldb.NewMem()
	st := state.New(db)
	return NewContext(stakeyard.BytesToAddress([]byte("component")), st)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext()
	u := NewUint256(ctx, NameToSlot("test-uint256"))

	v, err := u.Get()
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(0), v)

	u.Set(big.NewInt(100))
	assert.Nil(t, u.Add(big.NewInt(20)))
	assert.Nil(t, u.Sub(big.NewInt(50)))

	v, err = u.Get()
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(70), v)

	assert.Error(t, u.Sub(big.NewInt(100)))
}

func TestUint64(t *testing.T) {
	ctx := newTestContext()
	u := NewUint64(ctx, NameToSlot("test-uint64"))

	n, err := u.Inc()
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), n)

	n, err = u.Dec()
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), n)

	_, err = u.Dec()
	assert.Error(t, err)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext()
	m := NewMapping[stakeyard.Address, *big.Int](ctx, NameToSlot("test-mapping"))

	key := stakeyard.BytesToAddress([]byte("key"))

	v, err := m.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(0), v)

	assert.Nil(t, m.Set(key, big.NewInt(42)))
	v, err = m.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(42), v)

	assert.Nil(t, m.Clear(key))
	v, err = m.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(0), v)
}

func TestSetAddRemove(t *testing.T) {
	ctx := newTestContext()
	set := NewSet[stakeyard.Address](ctx, NameToSlot("test-set"))

	a := stakeyard.BytesToAddress([]byte("a"))
	b := stakeyard.BytesToAddress([]byte("b"))
	c := stakeyard.BytesToAddress([]byte("c"))

	for _, addr := range []stakeyard.Address{a, b, c} {
		changed, err := set.Add(addr)
		assert.Nil(t, err)
		assert.True(t, changed)
	}

	// duplicate add is a no-op
	changed, err := set.Add(b)
	assert.Nil(t, err)
	assert.False(t, changed)

	n, err := set.Len()
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), n)

	// removing the first entry swaps the last into its slot
	changed, err = set.Remove(a)
	assert.Nil(t, err)
	assert.True(t, changed)

	first, err := set.At(0)
	assert.Nil(t, err)
	assert.Equal(t, c, first)

	present, err := set.Contains(a)
	assert.Nil(t, err)
	assert.False(t, present)

	all, err := set.All()
	assert.Nil(t, err)
	assert.ElementsMatch(t, []stakeyard.Address{b, c}, all)

	// removing an absent entry is a no-op
	changed, err = set.Remove(a)
	assert.Nil(t, err)
	assert.False(t, changed)
}

func TestSetBigIntKeys(t *testing.T) {
	ctx := newTestContext()
	set := NewSet[*big.Int](ctx, NameToSlot("test-id-set"))

	for i := int64(1); i <= 5; i++ {
		changed, err := set.Add(big.NewInt(i))
		assert.Nil(t, err)
		assert.True(t, changed)
	}

	changed, err := set.Remove(big.NewInt(3))
	assert.Nil(t, err)
	assert.True(t, changed)

	n, err := set.Len()
	assert.Nil(t, err)
	assert.Equal(t, uint64(4), n)

	present, err := set.Contains(big.NewInt(3))
	assert.Nil(t, err)
	assert.False(t, present)
}
