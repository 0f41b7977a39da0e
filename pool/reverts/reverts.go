// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the failure taxonomy of pool operations.
// Every revert aborts the whole call; the category tells the caller why.
package reverts

import (
	"errors"
	"fmt"
)

// Category classifies a revert.
type Category uint8

const (
	CategoryPrecondition Category = iota + 1
	CategoryAuthorization
	CategoryArithmetic
	CategoryTransfer
)

func (c Category) String() string {
	switch c {
	case CategoryPrecondition:
		return "precondition"
	case CategoryAuthorization:
		return "authorization"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryTransfer:
		return "transfer"
	}
	return "unknown"
}

// Code names a specific failure.
type Code string

const (
	CodeDuplicateCollection Code = "duplicate collection"
	CodeUnknownCollection   Code = "unknown collection"
	CodeRewardDisabled      Code = "collection reward disabled"
	CodeNoStake             Code = "no stake"
	CodeNoReward            Code = "no reward"
	CodeNegativeReward      Code = "negative reward"
	CodeAssetNotConfigured  Code = "asset not configured"
	CodeNotOwner            Code = "not owner"
	CodeNotApproved         Code = "not approved"
	CodeNotAuthorized       Code = "not authorized"
	CodeReentrancy          Code = "reentrant call"
	CodeZeroDivisor         Code = "settlement divisor is zero"
	CodeTransferFailed      Code = "transfer failed"
	CodeSweepRewardAsset    Code = "cannot sweep reward asset"
)

// ErrRevert is a typed full-call abort.
type ErrRevert struct {
	category Category
	code     Code
}

func (e *ErrRevert) Error() string {
	return fmt.Sprintf("revert: %s: %s", e.category, e.code)
}

// Category returns the failure class.
func (e *ErrRevert) Category() Category {
	return e.category
}

// Code returns the named failure.
func (e *ErrRevert) Code() Code {
	return e.code
}

// Precondition builds a precondition failure.
func Precondition(code Code) *ErrRevert {
	return &ErrRevert{category: CategoryPrecondition, code: code}
}

// Authorization builds an authorization failure.
func Authorization(code Code) *ErrRevert {
	return &ErrRevert{category: CategoryAuthorization, code: code}
}

// Arithmetic builds an arithmetic fault.
func Arithmetic(code Code) *ErrRevert {
	return &ErrRevert{category: CategoryArithmetic, code: code}
}

// Transfer builds an asset transfer failure.
func Transfer(code Code) *ErrRevert {
	return &ErrRevert{category: CategoryTransfer, code: code}
}

// IsRevertErr reports whether err is (or wraps) a typed revert.
func IsRevertErr(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve)
}

// CategoryOf extracts the failure class, or 0 when err is not a revert.
func CategoryOf(err error) Category {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.category
	}
	return 0
}

// IsCode reports whether err is a revert with the given code.
func IsCode(err error, code Code) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.code == code
}
