package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/instamunch/instamunch-api/internal/platform/db"
	"github.com/instamunch/instamunch-api/internal/record"
)

const (
	machineColumns         = "id, name, machine_type_id, manufacturer_id, created_at, updated_at"
	itemColumns            = "id, name, base_price, expiration_period, created_at, updated_at"
	machineItemColumns     = "id, name, quantity, machine_id, item_id, created_at, updated_at"
	locationColumns        = "id, address1, address2, city, state_or_province, country, created_at, updated_at"
	machineLocationColumns = "id, name, machine_id, location_id, created_at, updated_at"
	machineTypeColumns     = "id, name, manufacturer_id, created_at, updated_at"
	manufacturerColumns    = "id, name, created_at, updated_at"
)

func scanMachine(row pgx.Row) (record.Machine, error) {
	var m record.Machine
	err := row.Scan(&m.ID, &m.Name, &m.MachineTypeID, &m.ManufacturerID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func scanItem(row pgx.Row) (record.Item, error) {
	var i record.Item
	err := row.Scan(&i.ID, &i.Name, &i.BasePrice, &i.ExpirationPeriod, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func scanMachineItem(row pgx.Row) (record.MachineItem, error) {
	var mi record.MachineItem
	err := row.Scan(&mi.ID, &mi.Name, &mi.Quantity, &mi.MachineID, &mi.ItemID, &mi.CreatedAt, &mi.UpdatedAt)
	return mi, err
}

func scanLocation(row pgx.Row) (record.Location, error) {
	var l record.Location
	err := row.Scan(&l.ID, &l.Address1, &l.Address2, &l.City, &l.StateOrProvince, &l.Country, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func scanMachineLocation(row pgx.Row) (record.MachineLocation, error) {
	var ml record.MachineLocation
	err := row.Scan(&ml.ID, &ml.Name, &ml.MachineID, &ml.LocationID, &ml.CreatedAt, &ml.UpdatedAt)
	return ml, err
}

func scanMachineType(row pgx.Row) (record.MachineType, error) {
	var t record.MachineType
	err := row.Scan(&t.ID, &t.Name, &t.ManufacturerID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func scanManufacturer(row pgx.Row) (record.Manufacturer, error) {
	var f record.Manufacturer
	err := row.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

// queryAll runs sql and scans every row with scan.
func queryAll[T any](ctx context.Context, q db.DBTX, scan func(pgx.Row) (T, error), sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// loader attaches relations to records in batches keyed by id. On the pool
// the batches run concurrently; inside a transaction they run one at a time
// because a pgx.Tx is not safe for concurrent use.
type loader struct {
	q     db.DBTX
	limit int
}

func poolLoader(q db.DBTX) loader { return loader{q: q, limit: 4} }

func txLoader(q db.DBTX) loader { return loader{q: q, limit: 1} }

func (l loader) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	return g, gctx
}

func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func byID[T any](recs []T, id func(T) string) map[string]*T {
	out := make(map[string]*T, len(recs))
	for i := range recs {
		out[id(recs[i])] = &recs[i]
	}
	return out
}

func groupBy[T any](recs []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range recs {
		out[key(r)] = append(out[key(r)], r)
	}
	return out
}

func (l loader) machinesByID(ctx context.Context, ids []string) (map[string]*record.Machine, error) {
	recs, err := queryAll(ctx, l.q, scanMachine, `SELECT `+machineColumns+` FROM machines WHERE id = ANY($1)`, uniq(ids))
	if err != nil {
		return nil, err
	}
	return byID(recs, func(m record.Machine) string { return m.ID }), nil
}

func (l loader) itemsByID(ctx context.Context, ids []string) (map[string]*record.Item, error) {
	recs, err := queryAll(ctx, l.q, scanItem, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1)`, uniq(ids))
	if err != nil {
		return nil, err
	}
	return byID(recs, func(i record.Item) string { return i.ID }), nil
}

func (l loader) locationsByID(ctx context.Context, ids []string) (map[string]*record.Location, error) {
	recs, err := queryAll(ctx, l.q, scanLocation, `SELECT `+locationColumns+` FROM locations WHERE id = ANY($1)`, uniq(ids))
	if err != nil {
		return nil, err
	}
	return byID(recs, func(loc record.Location) string { return loc.ID }), nil
}

func (l loader) machineTypesByID(ctx context.Context, ids []string) (map[string]*record.MachineType, error) {
	recs, err := queryAll(ctx, l.q, scanMachineType, `SELECT `+machineTypeColumns+` FROM machine_types WHERE id = ANY($1)`, uniq(ids))
	if err != nil {
		return nil, err
	}
	return byID(recs, func(t record.MachineType) string { return t.ID }), nil
}

func (l loader) manufacturersByID(ctx context.Context, ids []string) (map[string]*record.Manufacturer, error) {
	recs, err := queryAll(ctx, l.q, scanManufacturer, `SELECT `+manufacturerColumns+` FROM machine_manufacturers WHERE id = ANY($1)`, uniq(ids))
	if err != nil {
		return nil, err
	}
	return byID(recs, func(f record.Manufacturer) string { return f.ID }), nil
}

// withItemsAndMachines attaches Machine and Item to each machine item.
func (l loader) withItemsAndMachines(ctx context.Context, recs []record.MachineItem) error {
	machineIDs := make([]string, 0, len(recs))
	itemIDs := make([]string, 0, len(recs))
	for _, mi := range recs {
		machineIDs = append(machineIDs, mi.MachineID)
		itemIDs = append(itemIDs, mi.ItemID)
	}
	var machines map[string]*record.Machine
	var items map[string]*record.Item
	g, gctx := l.group(ctx)
	g.Go(func() (err error) { machines, err = l.machinesByID(gctx, machineIDs); return err })
	g.Go(func() (err error) { items, err = l.itemsByID(gctx, itemIDs); return err })
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range recs {
		recs[i].Machine = machines[recs[i].MachineID]
		recs[i].Item = items[recs[i].ItemID]
	}
	return nil
}

// withMachinesAndLocations attaches Machine and Location to each placement.
func (l loader) withMachinesAndLocations(ctx context.Context, recs []record.MachineLocation) error {
	machineIDs := make([]string, 0, len(recs))
	locationIDs := make([]string, 0, len(recs))
	for _, ml := range recs {
		machineIDs = append(machineIDs, ml.MachineID)
		locationIDs = append(locationIDs, ml.LocationID)
	}
	var machines map[string]*record.Machine
	var locations map[string]*record.Location
	g, gctx := l.group(ctx)
	g.Go(func() (err error) { machines, err = l.machinesByID(gctx, machineIDs); return err })
	g.Go(func() (err error) { locations, err = l.locationsByID(gctx, locationIDs); return err })
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range recs {
		recs[i].Machine = machines[recs[i].MachineID]
		recs[i].Location = locations[recs[i].LocationID]
	}
	return nil
}

// withMachineDetail attaches type, manufacturer, stocked items and placements.
func (l loader) withMachineDetail(ctx context.Context, recs []record.Machine) error {
	if len(recs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(recs))
	typeIDs := make([]string, 0, len(recs))
	manufacturerIDs := make([]string, 0, len(recs))
	for _, m := range recs {
		ids = append(ids, m.ID)
		typeIDs = append(typeIDs, m.MachineTypeID)
		manufacturerIDs = append(manufacturerIDs, m.ManufacturerID)
	}

	var (
		types         map[string]*record.MachineType
		manufacturers map[string]*record.Manufacturer
		stocked       []record.MachineItem
		placements    []record.MachineLocation
	)
	g, gctx := l.group(ctx)
	g.Go(func() (err error) { types, err = l.machineTypesByID(gctx, typeIDs); return err })
	g.Go(func() (err error) { manufacturers, err = l.manufacturersByID(gctx, manufacturerIDs); return err })
	g.Go(func() error {
		var err error
		stocked, err = queryAll(gctx, l.q, scanMachineItem,
			`SELECT `+machineItemColumns+` FROM machine_items WHERE machine_id = ANY($1) ORDER BY created_at, id`, ids)
		if err != nil {
			return err
		}
		itemIDs := make([]string, 0, len(stocked))
		for _, mi := range stocked {
			itemIDs = append(itemIDs, mi.ItemID)
		}
		items, err := l.itemsByID(gctx, itemIDs)
		if err != nil {
			return err
		}
		for i := range stocked {
			stocked[i].Item = items[stocked[i].ItemID]
		}
		return nil
	})
	g.Go(func() error {
		var err error
		placements, err = queryAll(gctx, l.q, scanMachineLocation,
			`SELECT `+machineLocationColumns+` FROM machine_locations WHERE machine_id = ANY($1) ORDER BY created_at, id`, ids)
		if err != nil {
			return err
		}
		locationIDs := make([]string, 0, len(placements))
		for _, ml := range placements {
			locationIDs = append(locationIDs, ml.LocationID)
		}
		locations, err := l.locationsByID(gctx, locationIDs)
		if err != nil {
			return err
		}
		for i := range placements {
			placements[i].Location = locations[placements[i].LocationID]
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	itemsByMachine := groupBy(stocked, func(mi record.MachineItem) string { return mi.MachineID })
	placementsByMachine := groupBy(placements, func(ml record.MachineLocation) string { return ml.MachineID })
	for i := range recs {
		recs[i].MachineType = types[recs[i].MachineTypeID]
		recs[i].Manufacturer = manufacturers[recs[i].ManufacturerID]
		recs[i].MachineItems = nonNil(itemsByMachine[recs[i].ID])
		recs[i].MachineLocations = nonNil(placementsByMachine[recs[i].ID])
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
