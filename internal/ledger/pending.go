// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ledger

import (
	"github.com/MKhiriev/go-bill-keeper/models"
)

// Key returns the tracker key of an entity: its remote ID once the server
// assigned one, its local ID until then.
func Key(remoteID, localID string) string {
	if remoteID != "" {
		return remoteID
	}
	return localID
}

// RecordAdd marks a newly created entity.
func RecordAdd(p *models.PendingChanges, entity models.EntityType, localID string) {
	c := p.For(entity)
	c.Added[localID] = struct{}{}
}

// RecordUpdate marks fields of an entity as changed. Updates of an entity
// that is still pending creation are folded into the add: the add is built
// from the current state anyway.
func RecordUpdate(p *models.PendingChanges, entity models.EntityType, localID, key string, fields ...string) {
	c := p.For(entity)
	if _, added := c.Added[localID]; added {
		return
	}
	if len(fields) == 0 {
		return
	}

	set, ok := c.Updated[key]
	if !ok {
		set = make(map[string]struct{}, len(fields))
		c.Updated[key] = set
	}
	for _, f := range fields {
		set[f] = struct{}{}
	}
}

// DropUpdate forgets changed fields, typically because their values returned
// to the last synced ones.
func DropUpdate(p *models.PendingChanges, entity models.EntityType, key string, fields ...string) {
	c := p.For(entity)
	set, ok := c.Updated[key]
	if !ok {
		return
	}
	for _, f := range fields {
		delete(set, f)
	}
	if len(set) == 0 {
		delete(c.Updated, key)
	}
}

// RecordDelete marks an entity as deleted. An entity that was added and
// never sent leaves no trace at all.
func RecordDelete(p *models.PendingChanges, entity models.EntityType, localID, key string) {
	c := p.For(entity)
	delete(c.Updated, key)
	if _, added := c.Added[localID]; added {
		delete(c.Added, localID)
		return
	}
	c.Deleted[key] = struct{}{}
}

// Forget drops every record of an entity without marking it deleted. It is
// used for entities the server removes on its own, such as the cascade of a
// member deletion.
func Forget(p *models.PendingChanges, entity models.EntityType, localID, key string) {
	c := p.For(entity)
	delete(c.Added, localID)
	delete(c.Updated, key)
}

// IsEmpty reports whether nothing is pending.
func IsEmpty(p models.PendingChanges) bool {
	return p.IsEmpty()
}

// Merge folds the changes of a failed request back into the pending set so
// that the next attempt sends them again. The result stays free of
// add-then-delete pairs.
func Merge(inFlight, pending models.PendingChanges) models.PendingChanges {
	out := pending.Clone()
	out.BillName = out.BillName || inFlight.BillName

	for _, entity := range collections {
		src := inFlight.For(entity)
		dst := out.For(entity)

		for localID := range src.Added {
			// deleted while in flight: never reached the server, so it
			// vanishes
			if _, deleted := dst.Deleted[localID]; deleted {
				delete(dst.Deleted, localID)
				delete(dst.Updated, localID)
				continue
			}
			delete(dst.Updated, localID)
			dst.Added[localID] = struct{}{}
		}

		for key, fields := range src.Updated {
			if _, deleted := dst.Deleted[key]; deleted {
				continue
			}
			set, ok := dst.Updated[key]
			if !ok {
				set = make(map[string]struct{}, len(fields))
				dst.Updated[key] = set
			}
			for f := range fields {
				set[f] = struct{}{}
			}
		}

		for key := range src.Deleted {
			delete(dst.Updated, key)
			dst.Deleted[key] = struct{}{}
		}
	}

	return out
}

// Remap rewrites update and delete keys from local IDs to the remote IDs the
// server assigned.
func Remap(p *models.PendingChanges, mappings models.IDMappings) {
	for _, entity := range collections {
		mapping := mappings.For(entity)
		if len(mapping) == 0 {
			continue
		}
		c := p.For(entity)
		for localID, remoteID := range mapping {
			if fields, ok := c.Updated[localID]; ok {
				delete(c.Updated, localID)
				if existing, ok := c.Updated[remoteID]; ok {
					for f := range fields {
						existing[f] = struct{}{}
					}
				} else {
					c.Updated[remoteID] = fields
				}
			}
			if _, ok := c.Deleted[localID]; ok {
				delete(c.Deleted, localID)
				c.Deleted[remoteID] = struct{}{}
			}
		}
	}
}

var collections = []models.EntityType{
	models.EntityMember,
	models.EntityExpense,
	models.EntityItem,
	models.EntitySettlement,
}
