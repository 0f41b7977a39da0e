// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeyard/stakeyard/stackedmap"
)

func TestStackedMap(t *testing.T) {
	src := make(map[string]string)
	src["base"] = "value"

	sm := stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	// read through to src
	v, ok, err := sm.Get("base")
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	d0 := sm.Push()
	sm.Put("k1", "v1")

	d1 := sm.Push()
	sm.Put("k1", "v1.1")
	sm.Put("k2", "v2")

	v, ok, _ = sm.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1.1", v)

	// revert the top level
	sm.PopTo(d1)
	v, ok, _ = sm.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, "v1", v)

	_, ok, _ = sm.Get("k2")
	assert.False(t, ok)

	sm.PopTo(d0)
	assert.Equal(t, 0, sm.Depth())
	_, ok, _ = sm.Get("k1")
	assert.False(t, ok)
}

func TestJournal(t *testing.T) {
	sm := stackedmap.New(func(_ interface{}) (interface{}, bool, error) {
		return nil, false, nil
	})

	sm.Push()
	sm.Put("k1", "v1")
	sm.Push()
	sm.Put("k2", "v2")

	var keys []string
	sm.Journal(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	assert.Equal(t, []string{"k1", "k2"}, keys)
}
