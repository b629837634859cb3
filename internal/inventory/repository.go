package inventory

import (
	"context"

	"github.com/instamunch/instamunch-api/internal/record"
)

// Repository abstracts inventory persistence. Read methods return records with
// the relations each listing exposes already attached.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	ListMachines(ctx context.Context, filter MachineFilter) ([]record.Machine, error)
	InsertMachine(ctx context.Context, id string, in CreateMachineInput) (record.Machine, error)
	UpdateMachine(ctx context.Context, in UpdateMachineInput) (record.Machine, error)

	ListItems(ctx context.Context) ([]record.Item, error)
	InsertItem(ctx context.Context, id string, in CreateItemInput) (record.Item, error)
	UpdateItem(ctx context.Context, in UpdateItemInput) (record.Item, error)

	ListMachineItems(ctx context.Context, filter MachineItemFilter) ([]record.MachineItem, error)
	InsertMachineItem(ctx context.Context, id string, in CreateMachineItemInput) (record.MachineItem, error)
	UpdateMachineItem(ctx context.Context, in UpdateMachineItemInput) (record.MachineItem, error)
	DeleteMachineItem(ctx context.Context, id string) (record.MachineItem, error)

	ListLocations(ctx context.Context, filter LocationFilter) ([]record.Location, error)
	InsertLocation(ctx context.Context, id string, in CreateLocationInput) (record.Location, error)
	UpdateLocation(ctx context.Context, in UpdateLocationInput) (record.Location, error)

	ListMachineLocations(ctx context.Context) ([]record.MachineLocation, error)
	InsertMachineLocation(ctx context.Context, id string, in CreateMachineLocationInput) (record.MachineLocation, error)
	UpdateMachineLocation(ctx context.Context, in UpdateMachineLocationInput) (record.MachineLocation, error)
	DeleteMachineLocation(ctx context.Context, id string) (record.MachineLocation, error)

	ListMachineTypes(ctx context.Context) ([]record.MachineType, error)
	GetMachineType(ctx context.Context, id string) (record.MachineType, error)
	InsertMachineType(ctx context.Context, id string, in CreateMachineTypeInput) (record.MachineType, error)
	UpdateMachineType(ctx context.Context, in UpdateMachineTypeInput) (record.MachineType, error)

	ListManufacturers(ctx context.Context) ([]record.Manufacturer, error)
	GetManufacturer(ctx context.Context, id string) (record.Manufacturer, error)
	InsertManufacturer(ctx context.Context, id string, in CreateManufacturerInput) (record.Manufacturer, error)
	UpdateManufacturer(ctx context.Context, in UpdateManufacturerInput) (record.Manufacturer, error)
}

// TxRepository exposes the operations that must share one transaction:
// the machine item replace-all and the guarded or cascading deletes.
type TxRepository interface {
	MachineExists(ctx context.Context, id string) (bool, error)
	ExistingItemIDs(ctx context.Context, ids []string) ([]string, error)
	AssignItem(ctx context.Context, id, machineID, itemID string) (record.MachineItem, error)

	DeleteMachineItemsByMachine(ctx context.Context, machineID string) (int64, error)
	DeleteMachineItemsByItem(ctx context.Context, itemID string) (int64, error)
	DeleteMachineLocationsByMachine(ctx context.Context, machineID string) (int64, error)
	DeleteMachineLocationsByLocation(ctx context.Context, locationID string) (int64, error)

	CountMachinesByType(ctx context.Context, machineTypeID string) (int64, error)
	CountMachinesByManufacturer(ctx context.Context, manufacturerID string) (int64, error)
	CountMachineTypesByManufacturer(ctx context.Context, manufacturerID string) (int64, error)

	DeleteMachine(ctx context.Context, id string) (record.Machine, error)
	DeleteItem(ctx context.Context, id string) (record.Item, error)
	DeleteLocation(ctx context.Context, id string) (record.Location, error)
	DeleteMachineType(ctx context.Context, id string) (record.MachineType, error)
	DeleteManufacturer(ctx context.Context, id string) (record.Manufacturer, error)
}
