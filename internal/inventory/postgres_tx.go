package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/instamunch/instamunch-api/internal/platform/db"
	"github.com/instamunch/instamunch-api/internal/record"
)

// txRepo runs TxRepository statements on one open transaction.
type txRepo struct {
	tx pgx.Tx
}

var _ TxRepository = (*txRepo)(nil)

func (r *txRepo) MachineExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM machines WHERE id = $1)`, id).Scan(&exists)
	return exists, db.MapError(err, "machine "+id)
}

func (r *txRepo) ExistingItemIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.tx.Query(ctx, `SELECT id FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, db.MapError(err, "items")
	}
	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, db.MapError(err, "items")
	}
	return nonNil(found), nil
}

func (r *txRepo) AssignItem(ctx context.Context, id, machineID, itemID string) (record.MachineItem, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO machine_items (id, machine_id, item_id)
		VALUES ($1, $2, $3) RETURNING `+machineItemColumns, id, machineID, itemID)
	mi, err := scanMachineItem(row)
	if err != nil {
		return record.MachineItem{}, db.MapError(err, "machine item "+id)
	}
	out := []record.MachineItem{mi}
	if err := txLoader(r.tx).withItemsAndMachines(ctx, out); err != nil {
		return record.MachineItem{}, db.MapError(err, "machine item "+id)
	}
	return out[0], nil
}

func (r *txRepo) exec(ctx context.Context, subject, sql string, args ...any) (int64, error) {
	tag, err := r.tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, db.MapError(err, subject)
	}
	return tag.RowsAffected(), nil
}

func (r *txRepo) count(ctx context.Context, subject, sql string, args ...any) (int64, error) {
	var n int64
	err := r.tx.QueryRow(ctx, sql, args...).Scan(&n)
	return n, db.MapError(err, subject)
}

func (r *txRepo) DeleteMachineItemsByMachine(ctx context.Context, machineID string) (int64, error) {
	return r.exec(ctx, "machine items", `DELETE FROM machine_items WHERE machine_id = $1`, machineID)
}

func (r *txRepo) DeleteMachineItemsByItem(ctx context.Context, itemID string) (int64, error) {
	return r.exec(ctx, "machine items", `DELETE FROM machine_items WHERE item_id = $1`, itemID)
}

func (r *txRepo) DeleteMachineLocationsByMachine(ctx context.Context, machineID string) (int64, error) {
	return r.exec(ctx, "machine locations", `DELETE FROM machine_locations WHERE machine_id = $1`, machineID)
}

func (r *txRepo) DeleteMachineLocationsByLocation(ctx context.Context, locationID string) (int64, error) {
	return r.exec(ctx, "machine locations", `DELETE FROM machine_locations WHERE location_id = $1`, locationID)
}

func (r *txRepo) CountMachinesByType(ctx context.Context, machineTypeID string) (int64, error) {
	return r.count(ctx, "machines", `SELECT COUNT(*) FROM machines WHERE machine_type_id = $1`, machineTypeID)
}

func (r *txRepo) CountMachinesByManufacturer(ctx context.Context, manufacturerID string) (int64, error) {
	return r.count(ctx, "machines", `SELECT COUNT(*) FROM machines WHERE manufacturer_id = $1`, manufacturerID)
}

func (r *txRepo) CountMachineTypesByManufacturer(ctx context.Context, manufacturerID string) (int64, error) {
	return r.count(ctx, "machine types", `SELECT COUNT(*) FROM machine_types WHERE manufacturer_id = $1`, manufacturerID)
}

func (r *txRepo) DeleteMachine(ctx context.Context, id string) (record.Machine, error) {
	m, err := scanMachine(r.tx.QueryRow(ctx, `DELETE FROM machines WHERE id = $1 RETURNING `+machineColumns, id))
	return m, db.MapError(err, "machine "+id)
}

func (r *txRepo) DeleteItem(ctx context.Context, id string) (record.Item, error) {
	it, err := scanItem(r.tx.QueryRow(ctx, `DELETE FROM items WHERE id = $1 RETURNING `+itemColumns, id))
	return it, db.MapError(err, "item "+id)
}

func (r *txRepo) DeleteLocation(ctx context.Context, id string) (record.Location, error) {
	loc, err := scanLocation(r.tx.QueryRow(ctx, `DELETE FROM locations WHERE id = $1 RETURNING `+locationColumns, id))
	return loc, db.MapError(err, "location "+id)
}

func (r *txRepo) DeleteMachineType(ctx context.Context, id string) (record.MachineType, error) {
	t, err := scanMachineType(r.tx.QueryRow(ctx, `DELETE FROM machine_types WHERE id = $1 RETURNING `+machineTypeColumns, id))
	return t, db.MapError(err, "machine type "+id)
}

func (r *txRepo) DeleteManufacturer(ctx context.Context, id string) (record.Manufacturer, error) {
	f, err := scanManufacturer(r.tx.QueryRow(ctx, `DELETE FROM machine_manufacturers WHERE id = $1 RETURNING `+manufacturerColumns, id))
	return f, db.MapError(err, "manufacturer "+id)
}
