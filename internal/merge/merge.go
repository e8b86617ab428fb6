// Package merge absorbs one entity into another of the same kind: every
// foreign key pointing at the source is repointed to the target, link rows
// that would collide with an existing target link are dropped, and the source
// row itself is removed. The whole absorption is one transaction.
package merge

import (
	"fmt"

	"salescope/internal/db"
	"salescope/internal/domain"
	"salescope/internal/events"
)

// repoint is one FK column to redirect from source to target
type repoint struct {
	table  string
	column string
}

// linkRepoint is a link-table FK whose redirect can collide with an existing
// target row. Colliding source rows are deleted; the target's own link wins.
type linkRepoint struct {
	table     string
	column    string // the column being repointed
	partnerPK string // the other half of the composite key
}

var plans = map[domain.EntityKind]struct {
	table    string
	pk       string
	repoints []repoint
	links    []linkRepoint
}{
	domain.KindCompany: {
		table: "companies", pk: "company_id",
		repoints: []repoint{
			{"contacts", "company_id"},
			{"projects", "company_id"},
			{"tasks", "company_id"},
			{"invoices", "company_id"},
			{"first_contact_logs", "company_id"},
		},
	},
	domain.KindContact: {
		table: "contacts", pk: "contact_id",
		repoints: []repoint{
			{"tasks", "contact_id"},
			{"invoices", "contact_id"},
			{"first_contact_logs", "contact_id"},
			{"projects", "contact_id"},
		},
		links: []linkRepoint{
			{"project_participants", "contact_id", "project_id"},
		},
	},
	domain.KindProject: {
		table: "projects", pk: "project_id",
		repoints: []repoint{
			{"tasks", "project_id"},
			{"invoices", "project_id"},
			{"free_trials", "project_id"},
			{"tech_inquiries", "project_id"},
			{"first_contact_logs", "project_id"},
		},
		links: []linkRepoint{
			{"project_participants", "project_id", "contact_id"},
			{"project_products", "project_id", "product_id"},
		},
	},
	domain.KindProduct: {
		table: "products", pk: "product_id",
		repoints: []repoint{
			{"invoice_items", "product_id"},
			{"free_trials", "product_id"},
			{"tech_inquiries", "product_id"},
		},
		links: []linkRepoint{
			{"project_products", "product_id", "project_id"},
		},
	},
}

// Merge absorbs source into target. Both rows must exist and be live; the
// source is hard-deleted once nothing references it. Returns the number of
// rows repointed across all tables.
func Merge(database *db.DB, actorID int64, kind domain.EntityKind, sourceID, targetID int64) (int64, error) {
	plan, ok := plans[kind]
	if !ok {
		return 0, &domain.ValidationError{Field: "kind",
			Reason: fmt.Sprintf("%s does not support merging", kind)}
	}
	if sourceID == targetID {
		return 0, &domain.ValidationError{Field: "target",
			Reason: "source and target must be different rows"}
	}

	tx, err := database.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range []int64{sourceID, targetID} {
		var exists int
		err := tx.QueryRow(fmt.Sprintf(
			"SELECT COUNT(*) FROM %s WHERE %s = ? AND is_deleted = 0", plan.table, plan.pk), id,
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("failed to check %s %d: %w", kind, id, err)
		}
		if exists == 0 {
			return 0, &domain.NotFoundError{Kind: kind, ID: id}
		}
	}

	var repointed int64
	for _, r := range plan.repoints {
		res, err := tx.Exec(fmt.Sprintf(
			"UPDATE %s SET %s = ? WHERE %s = ?", r.table, r.column, r.column),
			targetID, sourceID)
		if err != nil {
			return 0, fmt.Errorf("failed to repoint %s.%s: %w", r.table, r.column, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		repointed += n
	}

	for _, l := range plan.links {
		// A source link duplicating an existing target link is dropped,
		// then the survivors repoint.
		if _, err := tx.Exec(fmt.Sprintf(`
			DELETE FROM %[1]s WHERE %[2]s = ? AND %[3]s IN (
				SELECT %[3]s FROM %[1]s WHERE %[2]s = ?
			)`, l.table, l.column, l.partnerPK),
			sourceID, targetID); err != nil {
			return 0, fmt.Errorf("failed to drop colliding %s rows: %w", l.table, err)
		}
		res, err := tx.Exec(fmt.Sprintf(
			"UPDATE %s SET %s = ? WHERE %s = ?", l.table, l.column, l.column),
			targetID, sourceID)
		if err != nil {
			return 0, fmt.Errorf("failed to repoint %s.%s: %w", l.table, l.column, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		repointed += n
	}

	if _, err := tx.Exec(fmt.Sprintf(
		"DELETE FROM %s WHERE %s = ?", plan.table, plan.pk), sourceID); err != nil {
		return 0, fmt.Errorf("failed to remove merged %s %d: %w", kind, sourceID, err)
	}

	ew := events.NewWriter(database.DB)
	if err := ew.Log(tx, actorID, string(kind), targetID, string(kind)+".merged", map[string]interface{}{
		"absorbed_id":    sourceID,
		"rows_repointed": repointed,
	}); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit merge: %w", err)
	}
	return repointed, nil
}
