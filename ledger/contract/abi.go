// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package contract

// the read accessors and events of a license contract, together with
// the creation event of the root contract
const licenseContractABI = `[
  {"type":"function","name":"balance","stateMutability":"view",
   "inputs":[{"name":"issuanceID","type":"uint256"},{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"reclaimableBalance","stateMutability":"view",
   "inputs":[{"name":"issuanceID","type":"uint256"},{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"reclaimableBalanceBy","stateMutability":"view",
   "inputs":[{"name":"issuanceID","type":"uint256"},{"name":"currentOwner","type":"address"},{"name":"reclaimer","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"relevantIssuancesCount","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"relevantIssuances","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"addressesLicensesCanBeReclaimedFromCount","stateMutability":"view",
   "inputs":[{"name":"issuanceID","type":"uint256"},{"name":"reclaimer","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"addressesLicensesCanBeReclaimedFrom","stateMutability":"view",
   "inputs":[{"name":"issuanceID","type":"uint256"},{"name":"reclaimer","type":"address"},{"name":"index","type":"uint256"}],
   "outputs":[{"name":"","type":"address"}]},

  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[{"name":"issuanceID","type":"uint256","indexed":true},
             {"name":"from","type":"address","indexed":true},
             {"name":"to","type":"address","indexed":true},
             {"name":"amount","type":"uint256","indexed":false},
             {"name":"reclaimable","type":"bool","indexed":false}]},
  {"type":"event","name":"Reclaim","anonymous":false,
   "inputs":[{"name":"issuanceID","type":"uint256","indexed":true},
             {"name":"from","type":"address","indexed":true},
             {"name":"to","type":"address","indexed":true},
             {"name":"amount","type":"uint256","indexed":false}]},
  {"type":"event","name":"Issuing","anonymous":false,
   "inputs":[{"name":"issuanceID","type":"uint256","indexed":true}]},
  {"type":"event","name":"Revoke","anonymous":false,
   "inputs":[{"name":"issuanceID","type":"uint256","indexed":true}]},
  {"type":"event","name":"Signing","anonymous":false,"inputs":[]},
  {"type":"event","name":"Disabling","anonymous":false,"inputs":[]},
  {"type":"event","name":"LicenseContractCreation","anonymous":false,
   "inputs":[{"name":"licenseContractAddress","type":"address","indexed":false}]}
]`
