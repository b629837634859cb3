package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/instamunch/instamunch-api/internal/platform/db"
	"github.com/instamunch/instamunch-api/internal/record"
)

// PGRepository persists inventory data in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

// WithTx executes the callback inside a repeatable-read transaction.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *PGRepository) loader() loader {
	return poolLoader(r.pool)
}

func (r *PGRepository) ListMachines(ctx context.Context, filter MachineFilter) ([]record.Machine, error) {
	sql := `SELECT ` + machineColumns + ` FROM machines ORDER BY created_at, id`
	args := []any{}
	if filter.LocationID != "" {
		sql = `SELECT ` + machineColumns + ` FROM machines m
			WHERE EXISTS (SELECT 1 FROM machine_locations ml WHERE ml.machine_id = m.id AND ml.location_id = $1)
			ORDER BY created_at, id`
		args = append(args, filter.LocationID)
	}
	machines, err := queryAll(ctx, r.pool, scanMachine, sql, args...)
	if err != nil {
		return nil, db.MapError(err, "machines")
	}
	if err := r.loader().withMachineDetail(ctx, machines); err != nil {
		return nil, db.MapError(err, "machines")
	}
	return machines, nil
}

func (r *PGRepository) machineDetail(ctx context.Context, row pgx.Row, subject string) (record.Machine, error) {
	m, err := scanMachine(row)
	if err != nil {
		return record.Machine{}, db.MapError(err, subject)
	}
	out := []record.Machine{m}
	if err := r.loader().withMachineDetail(ctx, out); err != nil {
		return record.Machine{}, db.MapError(err, subject)
	}
	return out[0], nil
}

func (r *PGRepository) InsertMachine(ctx context.Context, id string, in CreateMachineInput) (record.Machine, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO machines (id, name, machine_type_id, manufacturer_id)
		VALUES ($1, $2, $3, $4) RETURNING `+machineColumns, id, in.Name, in.MachineTypeID, in.ManufacturerID)
	return r.machineDetail(ctx, row, "machine "+id)
}

func (r *PGRepository) UpdateMachine(ctx context.Context, in UpdateMachineInput) (record.Machine, error) {
	row := r.pool.QueryRow(ctx, `UPDATE machines SET name = COALESCE($2, name), updated_at = NOW()
		WHERE id = $1 RETURNING `+machineColumns, in.ID, in.Name)
	return r.machineDetail(ctx, row, "machine "+in.ID)
}

func (r *PGRepository) ListItems(ctx context.Context) ([]record.Item, error) {
	items, err := queryAll(ctx, r.pool, scanItem, `SELECT `+itemColumns+` FROM items ORDER BY created_at, id`)
	if err != nil {
		return nil, db.MapError(err, "items")
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	stocked, err := queryAll(ctx, r.pool, scanMachineItem,
		`SELECT `+machineItemColumns+` FROM machine_items WHERE item_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, db.MapError(err, "items")
	}
	if err := r.loader().withItemsAndMachines(ctx, stocked); err != nil {
		return nil, db.MapError(err, "items")
	}
	byItem := groupBy(stocked, func(mi record.MachineItem) string { return mi.ItemID })
	for i := range items {
		slots := nonNil(byItem[items[i].ID])
		for j := range slots {
			slots[j].Item = nil
		}
		items[i].MachineItems = slots
	}
	return items, nil
}

func (r *PGRepository) InsertItem(ctx context.Context, id string, in CreateItemInput) (record.Item, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO items (id, name, base_price, expiration_period)
		VALUES ($1, $2, $3, $4) RETURNING `+itemColumns, id, in.Name, in.BasePrice, in.ExpirationPeriod)
	item, err := scanItem(row)
	return item, db.MapError(err, "item "+id)
}

func (r *PGRepository) UpdateItem(ctx context.Context, in UpdateItemInput) (record.Item, error) {
	row := r.pool.QueryRow(ctx, `UPDATE items SET
			name = COALESCE($2, name),
			base_price = COALESCE($3, base_price),
			expiration_period = COALESCE($4, expiration_period),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+itemColumns, in.ID, in.Name, in.BasePrice, in.ExpirationPeriod)
	item, err := scanItem(row)
	return item, db.MapError(err, "item "+in.ID)
}

func (r *PGRepository) ListMachineItems(ctx context.Context, filter MachineItemFilter) ([]record.MachineItem, error) {
	sql := `SELECT ` + machineItemColumns + ` FROM machine_items
		WHERE ($1 = '' OR machine_id = $1) AND ($2 = '' OR item_id = $2)
		ORDER BY created_at, id`
	recs, err := queryAll(ctx, r.pool, scanMachineItem, sql, filter.MachineID, filter.ItemID)
	if err != nil {
		return nil, db.MapError(err, "machine items")
	}
	if err := r.loader().withItemsAndMachines(ctx, recs); err != nil {
		return nil, db.MapError(err, "machine items")
	}
	return recs, nil
}

func (r *PGRepository) machineItem(ctx context.Context, row pgx.Row, subject string) (record.MachineItem, error) {
	mi, err := scanMachineItem(row)
	if err != nil {
		return record.MachineItem{}, db.MapError(err, subject)
	}
	out := []record.MachineItem{mi}
	if err := r.loader().withItemsAndMachines(ctx, out); err != nil {
		return record.MachineItem{}, db.MapError(err, subject)
	}
	return out[0], nil
}

func (r *PGRepository) InsertMachineItem(ctx context.Context, id string, in CreateMachineItemInput) (record.MachineItem, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO machine_items (id, name, quantity, machine_id, item_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING `+machineItemColumns, id, in.Name, in.Quantity, in.MachineID, in.ItemID)
	return r.machineItem(ctx, row, "machine item "+id)
}

func (r *PGRepository) UpdateMachineItem(ctx context.Context, in UpdateMachineItemInput) (record.MachineItem, error) {
	row := r.pool.QueryRow(ctx, `UPDATE machine_items SET
			name = COALESCE($2, name),
			quantity = COALESCE($3, quantity),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+machineItemColumns, in.ID, in.Name, in.Quantity)
	return r.machineItem(ctx, row, "machine item "+in.ID)
}

func (r *PGRepository) DeleteMachineItem(ctx context.Context, id string) (record.MachineItem, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM machine_items WHERE id = $1 RETURNING `+machineItemColumns, id)
	mi, err := scanMachineItem(row)
	return mi, db.MapError(err, "machine item "+id)
}

func (r *PGRepository) ListLocations(ctx context.Context, filter LocationFilter) ([]record.Location, error) {
	sql := `SELECT ` + locationColumns + ` FROM locations l
		WHERE ($1 = '' OR EXISTS (
				SELECT 1 FROM machine_locations ml
				JOIN machine_items mi ON mi.machine_id = ml.machine_id
				WHERE ml.location_id = l.id AND mi.item_id = $1))
		  AND ($2 = '' OR EXISTS (
				SELECT 1 FROM machine_locations ml
				JOIN machines m ON m.id = ml.machine_id
				WHERE ml.location_id = l.id AND m.name ILIKE '%' || $2 || '%'))
		ORDER BY created_at, id`
	locations, err := queryAll(ctx, r.pool, scanLocation, sql, filter.ItemID, filter.MachineName)
	if err != nil {
		return nil, db.MapError(err, "locations")
	}
	ids := make([]string, 0, len(locations))
	for _, loc := range locations {
		ids = append(ids, loc.ID)
	}
	placements, err := queryAll(ctx, r.pool, scanMachineLocation,
		`SELECT `+machineLocationColumns+` FROM machine_locations WHERE location_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return nil, db.MapError(err, "locations")
	}
	machineIDs := make([]string, 0, len(placements))
	for _, ml := range placements {
		machineIDs = append(machineIDs, ml.MachineID)
	}
	machines, err := r.loader().machinesByID(ctx, machineIDs)
	if err != nil {
		return nil, db.MapError(err, "locations")
	}
	for i := range placements {
		placements[i].Machine = machines[placements[i].MachineID]
	}
	byLocation := groupBy(placements, func(ml record.MachineLocation) string { return ml.LocationID })
	for i := range locations {
		locations[i].MachineLocations = nonNil(byLocation[locations[i].ID])
	}
	return locations, nil
}

func (r *PGRepository) InsertLocation(ctx context.Context, id string, in CreateLocationInput) (record.Location, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO locations (id, address1, address2, city, state_or_province, country)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+locationColumns,
		id, in.Address1, in.Address2, in.City, in.StateOrProvince, in.Country)
	loc, err := scanLocation(row)
	return loc, db.MapError(err, "location "+id)
}

func (r *PGRepository) UpdateLocation(ctx context.Context, in UpdateLocationInput) (record.Location, error) {
	row := r.pool.QueryRow(ctx, `UPDATE locations SET
			address1 = COALESCE($2, address1),
			address2 = COALESCE($3, address2),
			city = COALESCE($4, city),
			state_or_province = COALESCE($5, state_or_province),
			country = COALESCE($6, country),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+locationColumns,
		in.ID, in.Address1, in.Address2, in.City, in.StateOrProvince, in.Country)
	loc, err := scanLocation(row)
	return loc, db.MapError(err, "location "+in.ID)
}

func (r *PGRepository) ListMachineLocations(ctx context.Context) ([]record.MachineLocation, error) {
	recs, err := queryAll(ctx, r.pool, scanMachineLocation,
		`SELECT `+machineLocationColumns+` FROM machine_locations ORDER BY created_at, id`)
	if err != nil {
		return nil, db.MapError(err, "machine locations")
	}
	if err := r.loader().withMachinesAndLocations(ctx, recs); err != nil {
		return nil, db.MapError(err, "machine locations")
	}
	return recs, nil
}

func (r *PGRepository) machineLocation(ctx context.Context, row pgx.Row, subject string) (record.MachineLocation, error) {
	ml, err := scanMachineLocation(row)
	if err != nil {
		return record.MachineLocation{}, db.MapError(err, subject)
	}
	out := []record.MachineLocation{ml}
	if err := r.loader().withMachinesAndLocations(ctx, out); err != nil {
		return record.MachineLocation{}, db.MapError(err, subject)
	}
	return out[0], nil
}

func (r *PGRepository) InsertMachineLocation(ctx context.Context, id string, in CreateMachineLocationInput) (record.MachineLocation, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO machine_locations (id, name, machine_id, location_id)
		VALUES ($1, $2, $3, $4) RETURNING `+machineLocationColumns, id, in.Name, in.MachineID, in.LocationID)
	return r.machineLocation(ctx, row, "machine location "+id)
}

func (r *PGRepository) UpdateMachineLocation(ctx context.Context, in UpdateMachineLocationInput) (record.MachineLocation, error) {
	row := r.pool.QueryRow(ctx, `UPDATE machine_locations SET
			name = COALESCE($2, name),
			machine_id = COALESCE($3, machine_id),
			location_id = COALESCE($4, location_id),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+machineLocationColumns, in.ID, in.Name, in.MachineID, in.LocationID)
	return r.machineLocation(ctx, row, "machine location "+in.ID)
}

func (r *PGRepository) DeleteMachineLocation(ctx context.Context, id string) (record.MachineLocation, error) {
	row := r.pool.QueryRow(ctx, `DELETE FROM machine_locations WHERE id = $1 RETURNING `+machineLocationColumns, id)
	ml, err := scanMachineLocation(row)
	return ml, db.MapError(err, "machine location "+id)
}

func (r *PGRepository) withTypeDetail(ctx context.Context, types []record.MachineType) error {
	ids := make([]string, 0, len(types))
	manufacturerIDs := make([]string, 0, len(types))
	for _, t := range types {
		ids = append(ids, t.ID)
		manufacturerIDs = append(manufacturerIDs, t.ManufacturerID)
	}
	var manufacturers map[string]*record.Manufacturer
	var machines []record.Machine
	l := r.loader()
	g, gctx := l.group(ctx)
	g.Go(func() (err error) { manufacturers, err = l.manufacturersByID(gctx, manufacturerIDs); return err })
	g.Go(func() (err error) {
		machines, err = queryAll(gctx, r.pool, scanMachine,
			`SELECT `+machineColumns+` FROM machines WHERE machine_type_id = ANY($1) ORDER BY created_at, id`, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	byType := groupBy(machines, func(m record.Machine) string { return m.MachineTypeID })
	for i := range types {
		types[i].Manufacturer = manufacturers[types[i].ManufacturerID]
		types[i].Machines = nonNil(byType[types[i].ID])
	}
	return nil
}

func (r *PGRepository) ListMachineTypes(ctx context.Context) ([]record.MachineType, error) {
	types, err := queryAll(ctx, r.pool, scanMachineType, `SELECT `+machineTypeColumns+` FROM machine_types ORDER BY created_at, id`)
	if err != nil {
		return nil, db.MapError(err, "machine types")
	}
	if err := r.withTypeDetail(ctx, types); err != nil {
		return nil, db.MapError(err, "machine types")
	}
	return types, nil
}

func (r *PGRepository) machineType(ctx context.Context, row pgx.Row, subject string) (record.MachineType, error) {
	t, err := scanMachineType(row)
	if err != nil {
		return record.MachineType{}, db.MapError(err, subject)
	}
	out := []record.MachineType{t}
	if err := r.withTypeDetail(ctx, out); err != nil {
		return record.MachineType{}, db.MapError(err, subject)
	}
	return out[0], nil
}

func (r *PGRepository) GetMachineType(ctx context.Context, id string) (record.MachineType, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+machineTypeColumns+` FROM machine_types WHERE id = $1`, id)
	return r.machineType(ctx, row, "machine type "+id)
}

func (r *PGRepository) InsertMachineType(ctx context.Context, id string, in CreateMachineTypeInput) (record.MachineType, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO machine_types (id, name, manufacturer_id)
		VALUES ($1, $2, $3) RETURNING `+machineTypeColumns, id, in.Name, in.ManufacturerID)
	return r.machineType(ctx, row, "machine type "+id)
}

func (r *PGRepository) UpdateMachineType(ctx context.Context, in UpdateMachineTypeInput) (record.MachineType, error) {
	row := r.pool.QueryRow(ctx, `UPDATE machine_types SET
			name = COALESCE($2, name),
			manufacturer_id = COALESCE($3, manufacturer_id),
			updated_at = NOW()
		WHERE id = $1 RETURNING `+machineTypeColumns, in.ID, in.Name, in.ManufacturerID)
	return r.machineType(ctx, row, "machine type "+in.ID)
}

func (r *PGRepository) withManufacturerMachines(ctx context.Context, manufacturers []record.Manufacturer) error {
	ids := make([]string, 0, len(manufacturers))
	for _, f := range manufacturers {
		ids = append(ids, f.ID)
	}
	machines, err := queryAll(ctx, r.pool, scanMachine,
		`SELECT `+machineColumns+` FROM machines WHERE manufacturer_id = ANY($1) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}
	if err := r.loader().withMachineDetail(ctx, machines); err != nil {
		return err
	}
	byManufacturer := groupBy(machines, func(m record.Machine) string { return m.ManufacturerID })
	for i := range manufacturers {
		manufacturers[i].Machines = nonNil(byManufacturer[manufacturers[i].ID])
	}
	return nil
}

func (r *PGRepository) ListManufacturers(ctx context.Context) ([]record.Manufacturer, error) {
	recs, err := queryAll(ctx, r.pool, scanManufacturer,
		`SELECT `+manufacturerColumns+` FROM machine_manufacturers ORDER BY created_at, id`)
	if err != nil {
		return nil, db.MapError(err, "manufacturers")
	}
	if err := r.withManufacturerMachines(ctx, recs); err != nil {
		return nil, db.MapError(err, "manufacturers")
	}
	return recs, nil
}

func (r *PGRepository) manufacturer(ctx context.Context, row pgx.Row, subject string) (record.Manufacturer, error) {
	f, err := scanManufacturer(row)
	if err != nil {
		return record.Manufacturer{}, db.MapError(err, subject)
	}
	out := []record.Manufacturer{f}
	if err := r.withManufacturerMachines(ctx, out); err != nil {
		return record.Manufacturer{}, db.MapError(err, subject)
	}
	return out[0], nil
}

func (r *PGRepository) GetManufacturer(ctx context.Context, id string) (record.Manufacturer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+manufacturerColumns+` FROM machine_manufacturers WHERE id = $1`, id)
	return r.manufacturer(ctx, row, "manufacturer "+id)
}

func (r *PGRepository) InsertManufacturer(ctx context.Context, id string, in CreateManufacturerInput) (record.Manufacturer, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO machine_manufacturers (id, name)
		VALUES ($1, $2) RETURNING `+manufacturerColumns, id, in.Name)
	return r.manufacturer(ctx, row, "manufacturer "+id)
}

func (r *PGRepository) UpdateManufacturer(ctx context.Context, in UpdateManufacturerInput) (record.Manufacturer, error) {
	row := r.pool.QueryRow(ctx, `UPDATE machine_manufacturers SET name = COALESCE($2, name), updated_at = NOW()
		WHERE id = $1 RETURNING `+manufacturerColumns, in.ID, in.Name)
	return r.manufacturer(ctx, row, "manufacturer "+in.ID)
}
