// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slot

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// Uint256 is a wrapper for storage and retrieval of a big integer at a fixed
// slot. Values exceeding 256 bits are truncated to fit stakeyard.Bytes32.
type Uint256 struct {
	context *Context
	pos     stakeyard.Bytes32
}

func NewUint256(context *Context, pos stakeyard.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, stakeyard.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Add(storage, value)
	u.Set(storage)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	storage.Sub(storage, value)
	if storage.Sign() < 0 {
		return errors.New("slot: uint256 underflow")
	}
	u.Set(storage)
	return nil
}

// Uint64 is a wrapper for storage and retrieval of an uint64 counter at a
// fixed slot.
type Uint64 struct {
	inner *Uint256
}

func NewUint64(context *Context, pos stakeyard.Bytes32) *Uint64 {
	return &Uint64{inner: NewUint256(context, pos)}
}

func (u *Uint64) Get() (uint64, error) {
	v, err := u.inner.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.inner.Set(new(big.Int).SetUint64(value))
}

func (u *Uint64) Inc() (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	u.Set(v + 1)
	return v + 1, nil
}

func (u *Uint64) Dec() (uint64, error) {
	v, err := u.Get()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, errors.New("slot: uint64 underflow")
	}
	u.Set(v - 1)
	return v - 1, nil
}

// Address is a wrapper for storage and retrieval of an address at a fixed slot.
type Address struct {
	context *Context
	pos     stakeyard.Bytes32
}

func NewAddress(context *Context, pos stakeyard.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (stakeyard.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return stakeyard.Address{}, err
	}
	return stakeyard.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr stakeyard.Address) {
	a.context.state.SetStorage(a.context.address, a.pos, stakeyard.BytesToBytes32(addr.Bytes()))
}
