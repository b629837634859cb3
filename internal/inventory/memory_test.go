package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/instamunch/instamunch-api/internal/record"
	"github.com/instamunch/instamunch-api/internal/shared"
)

var fixedAt = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type tables struct {
	machines      []record.Machine
	items         []record.Item
	machineItems  []record.MachineItem
	locations     []record.Location
	placements    []record.MachineLocation
	types         []record.MachineType
	manufacturers []record.Manufacturer
}

func (t tables) clone() tables {
	return tables{
		machines:      slices.Clone(t.machines),
		items:         slices.Clone(t.items),
		machineItems:  slices.Clone(t.machineItems),
		locations:     slices.Clone(t.locations),
		placements:    slices.Clone(t.placements),
		types:         slices.Clone(t.types),
		manufacturers: slices.Clone(t.manufacturers),
	}
}

// memoryRepo keeps rows in slices. WithTx snapshots the tables and restores
// them when the callback fails.
type memoryRepo struct {
	tables
	assignErr   error
	assignAfter int
	txCount     int
}

type memoryTx struct {
	repo     *memoryRepo
	assigned int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{}
}

func strPtr(s string) *string { return &s }

func (r *memoryRepo) seedMachine(id, name string) {
	r.machines = append(r.machines, record.Machine{ID: id, Name: strPtr(name), MachineTypeID: "t1", ManufacturerID: "f1", CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedItem(id, name string) {
	r.items = append(r.items, record.Item{ID: id, Name: strPtr(name), CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedMachineItem(id, machineID, itemID string) {
	r.machineItems = append(r.machineItems, record.MachineItem{ID: id, MachineID: machineID, ItemID: itemID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedLocation(id, city string) {
	r.locations = append(r.locations, record.Location{ID: id, Address1: "1 Main St", City: city, StateOrProvince: "ON", Country: "CA", CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedPlacement(id, machineID, locationID string) {
	r.placements = append(r.placements, record.MachineLocation{ID: id, Name: "lobby", MachineID: machineID, LocationID: locationID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedType(id, manufacturerID string) {
	r.types = append(r.types, record.MachineType{ID: id, Name: "snack", ManufacturerID: manufacturerID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func (r *memoryRepo) seedManufacturer(id string) {
	r.manufacturers = append(r.manufacturers, record.Manufacturer{ID: id, Name: "Acme", CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)})
}

func notFound(subject string) error {
	return fmt.Errorf("%s %w", subject, shared.ErrNotFound)
}

func find[T any](rows []T, match func(T) bool) (int, bool) {
	for i := range rows {
		if match(rows[i]) {
			return i, true
		}
	}
	return -1, false
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.txCount++
	snapshot := r.tables.clone()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.tables = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) machine(id string) *record.Machine {
	if i, ok := find(r.machines, func(m record.Machine) bool { return m.ID == id }); ok {
		m := r.machines[i]
		return &m
	}
	return nil
}

func (r *memoryRepo) item(id string) *record.Item {
	if i, ok := find(r.items, func(it record.Item) bool { return it.ID == id }); ok {
		it := r.items[i]
		return &it
	}
	return nil
}

func (r *memoryRepo) withRelations(mi record.MachineItem) record.MachineItem {
	mi.Machine = r.machine(mi.MachineID)
	mi.Item = r.item(mi.ItemID)
	return mi
}

func (r *memoryRepo) ListMachines(_ context.Context, filter MachineFilter) ([]record.Machine, error) {
	out := []record.Machine{}
	for _, m := range r.machines {
		if filter.LocationID != "" {
			if _, ok := find(r.placements, func(ml record.MachineLocation) bool {
				return ml.MachineID == m.ID && ml.LocationID == filter.LocationID
			}); !ok {
				continue
			}
		}
		m.MachineItems = []record.MachineItem{}
		for _, mi := range r.machineItems {
			if mi.MachineID == m.ID {
				mi.Item = r.item(mi.ItemID)
				m.MachineItems = append(m.MachineItems, mi)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memoryRepo) InsertMachine(_ context.Context, id string, in CreateMachineInput) (record.Machine, error) {
	if _, ok := find(r.types, func(t record.MachineType) bool { return t.ID == in.MachineTypeID }); !ok {
		return record.Machine{}, fmt.Errorf("machine %s %w: referenced record does not exist", id, shared.ErrValidation)
	}
	m := record.Machine{ID: id, Name: strPtr(in.Name), MachineTypeID: in.MachineTypeID, ManufacturerID: in.ManufacturerID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.machines = append(r.machines, m)
	return m, nil
}

func (r *memoryRepo) UpdateMachine(_ context.Context, in UpdateMachineInput) (record.Machine, error) {
	i, ok := find(r.machines, func(m record.Machine) bool { return m.ID == in.ID })
	if !ok {
		return record.Machine{}, notFound("machine " + in.ID)
	}
	if in.Name != nil {
		r.machines[i].Name = in.Name
	}
	return r.machines[i], nil
}

func (r *memoryRepo) ListItems(context.Context) ([]record.Item, error) {
	return slices.Clone(r.items), nil
}

func (r *memoryRepo) InsertItem(_ context.Context, id string, in CreateItemInput) (record.Item, error) {
	it := record.Item{ID: id, Name: strPtr(in.Name), BasePrice: in.BasePrice, ExpirationPeriod: in.ExpirationPeriod, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.items = append(r.items, it)
	return it, nil
}

func (r *memoryRepo) UpdateItem(_ context.Context, in UpdateItemInput) (record.Item, error) {
	i, ok := find(r.items, func(it record.Item) bool { return it.ID == in.ID })
	if !ok {
		return record.Item{}, notFound("item " + in.ID)
	}
	if in.Name != nil {
		r.items[i].Name = in.Name
	}
	if in.BasePrice != nil {
		r.items[i].BasePrice = in.BasePrice
	}
	if in.ExpirationPeriod != nil {
		r.items[i].ExpirationPeriod = in.ExpirationPeriod
	}
	return r.items[i], nil
}

func (r *memoryRepo) ListMachineItems(_ context.Context, filter MachineItemFilter) ([]record.MachineItem, error) {
	out := []record.MachineItem{}
	for _, mi := range r.machineItems {
		if filter.MachineID != "" && mi.MachineID != filter.MachineID {
			continue
		}
		if filter.ItemID != "" && mi.ItemID != filter.ItemID {
			continue
		}
		out = append(out, r.withRelations(mi))
	}
	return out, nil
}

func (r *memoryRepo) InsertMachineItem(_ context.Context, id string, in CreateMachineItemInput) (record.MachineItem, error) {
	mi := record.MachineItem{ID: id, Name: in.Name, Quantity: in.Quantity, MachineID: in.MachineID, ItemID: in.ItemID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.machineItems = append(r.machineItems, mi)
	return r.withRelations(mi), nil
}

func (r *memoryRepo) UpdateMachineItem(_ context.Context, in UpdateMachineItemInput) (record.MachineItem, error) {
	i, ok := find(r.machineItems, func(mi record.MachineItem) bool { return mi.ID == in.ID })
	if !ok {
		return record.MachineItem{}, notFound("machine item " + in.ID)
	}
	if in.Name != nil {
		r.machineItems[i].Name = in.Name
	}
	if in.Quantity != nil {
		r.machineItems[i].Quantity = in.Quantity
	}
	return r.withRelations(r.machineItems[i]), nil
}

func (r *memoryRepo) DeleteMachineItem(_ context.Context, id string) (record.MachineItem, error) {
	i, ok := find(r.machineItems, func(mi record.MachineItem) bool { return mi.ID == id })
	if !ok {
		return record.MachineItem{}, notFound("machine item " + id)
	}
	mi := r.machineItems[i]
	r.machineItems = slices.Delete(r.machineItems, i, i+1)
	return mi, nil
}

func (r *memoryRepo) ListLocations(_ context.Context, filter LocationFilter) ([]record.Location, error) {
	out := []record.Location{}
	for _, loc := range r.locations {
		keep := filter.ItemID == "" && filter.MachineName == ""
		for _, ml := range r.placements {
			if ml.LocationID != loc.ID {
				continue
			}
			if filter.ItemID != "" {
				if _, ok := find(r.machineItems, func(mi record.MachineItem) bool {
					return mi.MachineID == ml.MachineID && mi.ItemID == filter.ItemID
				}); ok {
					keep = true
				}
			}
			if filter.MachineName != "" {
				if m := r.machine(ml.MachineID); m != nil && m.Name != nil &&
					strings.Contains(strings.ToLower(*m.Name), strings.ToLower(filter.MachineName)) {
					keep = true
				}
			}
		}
		if keep {
			out = append(out, loc)
		}
	}
	return out, nil
}

func (r *memoryRepo) InsertLocation(_ context.Context, id string, in CreateLocationInput) (record.Location, error) {
	loc := record.Location{ID: id, Address1: in.Address1, Address2: in.Address2, City: in.City, StateOrProvince: in.StateOrProvince, Country: in.Country, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.locations = append(r.locations, loc)
	return loc, nil
}

func (r *memoryRepo) UpdateLocation(_ context.Context, in UpdateLocationInput) (record.Location, error) {
	i, ok := find(r.locations, func(l record.Location) bool { return l.ID == in.ID })
	if !ok {
		return record.Location{}, notFound("location " + in.ID)
	}
	if in.City != nil {
		r.locations[i].City = *in.City
	}
	return r.locations[i], nil
}

func (r *memoryRepo) ListMachineLocations(context.Context) ([]record.MachineLocation, error) {
	return slices.Clone(r.placements), nil
}

func (r *memoryRepo) InsertMachineLocation(_ context.Context, id string, in CreateMachineLocationInput) (record.MachineLocation, error) {
	ml := record.MachineLocation{ID: id, Name: in.Name, MachineID: in.MachineID, LocationID: in.LocationID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.placements = append(r.placements, ml)
	return ml, nil
}

func (r *memoryRepo) UpdateMachineLocation(_ context.Context, in UpdateMachineLocationInput) (record.MachineLocation, error) {
	i, ok := find(r.placements, func(ml record.MachineLocation) bool { return ml.ID == in.ID })
	if !ok {
		return record.MachineLocation{}, notFound("machine location " + in.ID)
	}
	if in.Name != nil {
		r.placements[i].Name = *in.Name
	}
	return r.placements[i], nil
}

func (r *memoryRepo) DeleteMachineLocation(_ context.Context, id string) (record.MachineLocation, error) {
	i, ok := find(r.placements, func(ml record.MachineLocation) bool { return ml.ID == id })
	if !ok {
		return record.MachineLocation{}, notFound("machine location " + id)
	}
	ml := r.placements[i]
	r.placements = slices.Delete(r.placements, i, i+1)
	return ml, nil
}

func (r *memoryRepo) ListMachineTypes(context.Context) ([]record.MachineType, error) {
	return slices.Clone(r.types), nil
}

func (r *memoryRepo) GetMachineType(_ context.Context, id string) (record.MachineType, error) {
	i, ok := find(r.types, func(t record.MachineType) bool { return t.ID == id })
	if !ok {
		return record.MachineType{}, notFound("machine type " + id)
	}
	return r.types[i], nil
}

func (r *memoryRepo) InsertMachineType(_ context.Context, id string, in CreateMachineTypeInput) (record.MachineType, error) {
	t := record.MachineType{ID: id, Name: in.Name, ManufacturerID: in.ManufacturerID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.types = append(r.types, t)
	return t, nil
}

func (r *memoryRepo) UpdateMachineType(_ context.Context, in UpdateMachineTypeInput) (record.MachineType, error) {
	i, ok := find(r.types, func(t record.MachineType) bool { return t.ID == in.ID })
	if !ok {
		return record.MachineType{}, notFound("machine type " + in.ID)
	}
	if in.Name != nil {
		r.types[i].Name = *in.Name
	}
	return r.types[i], nil
}

func (r *memoryRepo) ListManufacturers(context.Context) ([]record.Manufacturer, error) {
	return slices.Clone(r.manufacturers), nil
}

func (r *memoryRepo) GetManufacturer(_ context.Context, id string) (record.Manufacturer, error) {
	i, ok := find(r.manufacturers, func(f record.Manufacturer) bool { return f.ID == id })
	if !ok {
		return record.Manufacturer{}, notFound("manufacturer " + id)
	}
	return r.manufacturers[i], nil
}

func (r *memoryRepo) InsertManufacturer(_ context.Context, id string, in CreateManufacturerInput) (record.Manufacturer, error) {
	f := record.Manufacturer{ID: id, Name: in.Name, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	r.manufacturers = append(r.manufacturers, f)
	return f, nil
}

func (r *memoryRepo) UpdateManufacturer(_ context.Context, in UpdateManufacturerInput) (record.Manufacturer, error) {
	i, ok := find(r.manufacturers, func(f record.Manufacturer) bool { return f.ID == in.ID })
	if !ok {
		return record.Manufacturer{}, notFound("manufacturer " + in.ID)
	}
	if in.Name != nil {
		r.manufacturers[i].Name = *in.Name
	}
	return r.manufacturers[i], nil
}

func (tx *memoryTx) MachineExists(_ context.Context, id string) (bool, error) {
	return tx.repo.machine(id) != nil, nil
}

func (tx *memoryTx) ExistingItemIDs(_ context.Context, ids []string) ([]string, error) {
	out := []string{}
	for _, id := range ids {
		if tx.repo.item(id) != nil {
			out = append(out, id)
		}
	}
	return out, nil
}

var errAssignFailed = errors.New("assign failed")

func (tx *memoryTx) AssignItem(_ context.Context, id, machineID, itemID string) (record.MachineItem, error) {
	if tx.repo.assignErr != nil && tx.assigned >= tx.repo.assignAfter {
		return record.MachineItem{}, tx.repo.assignErr
	}
	tx.assigned++
	mi := record.MachineItem{ID: id, MachineID: machineID, ItemID: itemID, CreatedAt: record.At(fixedAt), UpdatedAt: record.At(fixedAt)}
	tx.repo.machineItems = append(tx.repo.machineItems, mi)
	return tx.repo.withRelations(mi), nil
}

func (tx *memoryTx) DeleteMachineItemsByMachine(_ context.Context, machineID string) (int64, error) {
	before := len(tx.repo.machineItems)
	tx.repo.machineItems = slices.DeleteFunc(tx.repo.machineItems, func(mi record.MachineItem) bool { return mi.MachineID == machineID })
	return int64(before - len(tx.repo.machineItems)), nil
}

func (tx *memoryTx) DeleteMachineItemsByItem(_ context.Context, itemID string) (int64, error) {
	before := len(tx.repo.machineItems)
	tx.repo.machineItems = slices.DeleteFunc(tx.repo.machineItems, func(mi record.MachineItem) bool { return mi.ItemID == itemID })
	return int64(before - len(tx.repo.machineItems)), nil
}

func (tx *memoryTx) DeleteMachineLocationsByMachine(_ context.Context, machineID string) (int64, error) {
	before := len(tx.repo.placements)
	tx.repo.placements = slices.DeleteFunc(tx.repo.placements, func(ml record.MachineLocation) bool { return ml.MachineID == machineID })
	return int64(before - len(tx.repo.placements)), nil
}

func (tx *memoryTx) DeleteMachineLocationsByLocation(_ context.Context, locationID string) (int64, error) {
	before := len(tx.repo.placements)
	tx.repo.placements = slices.DeleteFunc(tx.repo.placements, func(ml record.MachineLocation) bool { return ml.LocationID == locationID })
	return int64(before - len(tx.repo.placements)), nil
}

func countWhere[T any](rows []T, match func(T) bool) int64 {
	var n int64
	for _, row := range rows {
		if match(row) {
			n++
		}
	}
	return n
}

func (tx *memoryTx) CountMachinesByType(_ context.Context, machineTypeID string) (int64, error) {
	return countWhere(tx.repo.machines, func(m record.Machine) bool { return m.MachineTypeID == machineTypeID }), nil
}

func (tx *memoryTx) CountMachinesByManufacturer(_ context.Context, manufacturerID string) (int64, error) {
	return countWhere(tx.repo.machines, func(m record.Machine) bool { return m.ManufacturerID == manufacturerID }), nil
}

func (tx *memoryTx) CountMachineTypesByManufacturer(_ context.Context, manufacturerID string) (int64, error) {
	return countWhere(tx.repo.types, func(t record.MachineType) bool { return t.ManufacturerID == manufacturerID }), nil
}

func (tx *memoryTx) DeleteMachine(_ context.Context, id string) (record.Machine, error) {
	i, ok := find(tx.repo.machines, func(m record.Machine) bool { return m.ID == id })
	if !ok {
		return record.Machine{}, notFound("machine " + id)
	}
	m := tx.repo.machines[i]
	tx.repo.machines = slices.Delete(tx.repo.machines, i, i+1)
	return m, nil
}

func (tx *memoryTx) DeleteItem(_ context.Context, id string) (record.Item, error) {
	i, ok := find(tx.repo.items, func(it record.Item) bool { return it.ID == id })
	if !ok {
		return record.Item{}, notFound("item " + id)
	}
	it := tx.repo.items[i]
	tx.repo.items = slices.Delete(tx.repo.items, i, i+1)
	return it, nil
}

func (tx *memoryTx) DeleteLocation(_ context.Context, id string) (record.Location, error) {
	i, ok := find(tx.repo.locations, func(l record.Location) bool { return l.ID == id })
	if !ok {
		return record.Location{}, notFound("location " + id)
	}
	loc := tx.repo.locations[i]
	tx.repo.locations = slices.Delete(tx.repo.locations, i, i+1)
	return loc, nil
}

func (tx *memoryTx) DeleteMachineType(_ context.Context, id string) (record.MachineType, error) {
	i, ok := find(tx.repo.types, func(t record.MachineType) bool { return t.ID == id })
	if !ok {
		return record.MachineType{}, notFound("machine type " + id)
	}
	t := tx.repo.types[i]
	tx.repo.types = slices.Delete(tx.repo.types, i, i+1)
	return t, nil
}

func (tx *memoryTx) DeleteManufacturer(_ context.Context, id string) (record.Manufacturer, error) {
	i, ok := find(tx.repo.manufacturers, func(f record.Manufacturer) bool { return f.ID == id })
	if !ok {
		return record.Manufacturer{}, notFound("manufacturer " + id)
	}
	f := tx.repo.manufacturers[i]
	tx.repo.manufacturers = slices.Delete(tx.repo.manufacturers, i, i+1)
	return f, nil
}

type recordingAudit struct {
	entries []shared.AuditLog
	err     error
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, log)
	return nil
}
