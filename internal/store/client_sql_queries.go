// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	saveLocalBill = `
		INSERT INTO local_bills (
			local_id,
			remote_id,
			share_code,
			version,
			sync_status,
			sync_error,
			state,
			snapshot,
			pending,
			in_flight,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (local_id) DO UPDATE SET
			remote_id   = excluded.remote_id,
			share_code  = excluded.share_code,
			version     = excluded.version,
			sync_status = excluded.sync_status,
			sync_error  = excluded.sync_error,
			state       = excluded.state,
			snapshot    = excluded.snapshot,
			pending     = excluded.pending,
			in_flight   = excluded.in_flight,
			updated_at  = excluded.updated_at;`

	localBillColumns = `
			local_id,
			remote_id,
			share_code,
			version,
			sync_status,
			sync_error,
			state,
			snapshot,
			pending,
			in_flight,
			updated_at`

	getLocalBill = `SELECT` + localBillColumns + `
		FROM local_bills
		WHERE local_id = ?;`

	getAllLocalBills = `SELECT` + localBillColumns + `
		FROM local_bills
		ORDER BY local_id;`

	deleteLocalBill = `DELETE FROM local_bills WHERE local_id = ?;`
)
