// Copyright (c) 2025 The Stakeyard developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fortest provides deterministic fixtures: funded accounts and
// in-memory asset ledgers implementing the token collaborator interfaces.
package fortest

import (
	"fmt"

	"github.com/stakeyard/stakeyard/stakeyard"
)

// Accounts is a fixed list of test account addresses.
var Accounts = func() []stakeyard.Address {
	accs := make([]stakeyard.Address, 10)
	for i := range accs {
		hash := stakeyard.Blake2b([]byte(fmt.Sprintf("stakeyard-test-account-%d", i)))
		accs[i] = stakeyard.BytesToAddress(hash.Bytes())
	}
	return accs
}()
