package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/entity"
	"github.com/instamunch/instamunch-api/internal/mutation"
	"github.com/instamunch/instamunch-api/internal/record"
	"github.com/instamunch/instamunch-api/internal/shared"
	"github.com/instamunch/instamunch-api/internal/validation"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates inventory queries and mutations.
type Service struct {
	repo   Repository
	audit  AuditPort
	logger *slog.Logger
	newID  func() string
}

// NewService builds Service. audit may be nil.
func NewService(repo Repository, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, newID: uuid.NewString}
}

// action describes a mutation for its envelope message and audit entry.
type action struct {
	op     string
	entity string
	field  string
	label  string
	verb   string
}

var (
	machineCreated       = action{"createMachine", "machine", "machine", "Machine", "created"}
	machineUpdated       = action{"updateMachine", "machine", "machine", "Machine", "updated"}
	machineDeleted       = action{"deleteMachine", "machine", "machine", "Machine", "deleted"}
	itemCreated          = action{"createItem", "item", "item", "Item", "created"}
	itemUpdated          = action{"updateItem", "item", "item", "Item", "updated"}
	itemPriceUpdated     = action{"updateItemPrice", "item", "item", "Item price", "updated"}
	itemDeleted          = action{"deleteItem", "item", "item", "Item", "deleted"}
	locationCreated      = action{"createLocation", "location", "location", "Location", "created"}
	locationUpdated      = action{"updateLocation", "location", "location", "Location", "updated"}
	locationDeleted      = action{"deleteLocation", "location", "location", "Location", "deleted"}
	placementCreated     = action{"createMachineLocation", "machine_location", "machineLocation", "Machine location", "created"}
	placementUpdated     = action{"updateMachineLocation", "machine_location", "machineLocation", "Machine location", "updated"}
	placementDeleted     = action{"deleteMachineLocation", "machine_location", "machineLocation", "Machine location", "deleted"}
	machineItemCreated   = action{"createMachineItem", "machine_item", "machineItem", "Machine item", "created"}
	machineItemUpdated   = action{"updateMachineItem", "machine_item", "machineItem", "Machine item", "updated"}
	machineItemDeleted   = action{"deleteMachineItem", "machine_item", "machineItem", "Machine item", "deleted"}
	machineItemsReplaced = action{"updateMachineItems", "machine", "machineItems", "Machine items", "updated"}
	machineTypeCreated   = action{"createMachineType", "machine_type", "machineType", "Machine type", "created"}
	machineTypeUpdated   = action{"updateMachineType", "machine_type", "machineType", "Machine type", "updated"}
	machineTypeDeleted   = action{"deleteMachineType", "machine_type", "machineType", "Machine type", "deleted"}
	manufacturerCreated  = action{"createMachineManufacturer", "manufacturer", "manufacturer", "Manufacturer", "created"}
	manufacturerUpdated  = action{"updateMachineManufacturer", "manufacturer", "manufacturer", "Manufacturer", "updated"}
	manufacturerDeleted  = action{"deleteMachineManufacturer", "manufacturer", "manufacturer", "Manufacturer", "deleted"}
)

// settle turns a repository result into the mutation envelope. Recoverable
// errors become failure envelopes; everything else propagates.
func settle[R, E any](ctx context.Context, s *Service, act action, id string, rec R, err error, adapt func(R) (E, error), meta map[string]any) (mutation.Response, error) {
	if err != nil {
		return mutation.Recover(err)
	}
	out, err := adapt(rec)
	if err != nil {
		return mutation.Response{}, err
	}
	s.record(ctx, act, id, meta)
	return mutation.Succeeded(act.field, out, fmt.Sprintf("%s %s: %s", act.label, act.verb, id)), nil
}

func (s *Service) record(ctx context.Context, act action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		Action:   act.op,
		Entity:   act.entity,
		EntityID: id,
		Meta:     meta,
		At:       time.Now().UTC(),
	}
	if caller := authz.IdentityFromContext(ctx); caller != nil {
		entry.ActorID = caller.UserID
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", act.op), slog.String("entity_id", id), slog.Any("error", err))
	}
}

// Machines lists every machine with its type, manufacturer, items and placements.
func (s *Service) Machines(ctx context.Context) ([]entity.Machine, error) {
	recs, err := s.repo.ListMachines(ctx, MachineFilter{})
	if err != nil {
		return nil, err
	}
	return entity.AdaptMachines(recs)
}

// MachinesByLocation lists machines placed at a location.
func (s *Service) MachinesByLocation(ctx context.Context, in LocationIDInput) ([]entity.Machine, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	recs, err := s.repo.ListMachines(ctx, MachineFilter{LocationID: in.LocationID})
	if err != nil {
		return nil, err
	}
	return entity.AdaptMachines(recs)
}

// Items lists every item with the machines stocking it.
func (s *Service) Items(ctx context.Context) ([]entity.Item, error) {
	recs, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return entity.AdaptItems(recs)
}

// ItemsByMachine lists the machine items stocked in a machine.
func (s *Service) ItemsByMachine(ctx context.Context, in MachineIDInput) ([]entity.MachineItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.machineItems(ctx, MachineItemFilter{MachineID: in.MachineID})
}

// MachinesByItem lists the machine items that stock an item.
func (s *Service) MachinesByItem(ctx context.Context, in ItemIDInput) ([]entity.MachineItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.machineItems(ctx, MachineItemFilter{ItemID: in.ItemID})
}

// MachineItems lists every machine item.
func (s *Service) MachineItems(ctx context.Context) ([]entity.MachineItem, error) {
	return s.machineItems(ctx, MachineItemFilter{})
}

func (s *Service) machineItems(ctx context.Context, filter MachineItemFilter) ([]entity.MachineItem, error) {
	recs, err := s.repo.ListMachineItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	return entity.AdaptMachineItems(recs)
}

// Locations lists every location with its placements.
func (s *Service) Locations(ctx context.Context) ([]entity.Location, error) {
	return s.locations(ctx, LocationFilter{})
}

// LocationsByItem lists locations hosting a machine that stocks the item.
func (s *Service) LocationsByItem(ctx context.Context, in ItemIDInput) ([]entity.Location, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.locations(ctx, LocationFilter{ItemID: in.ItemID})
}

// LocationsByMachineName lists locations hosting a machine whose name
// contains the fragment, ignoring case.
func (s *Service) LocationsByMachineName(ctx context.Context, in MachineNameInput) ([]entity.Location, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.locations(ctx, LocationFilter{MachineName: strings.TrimSpace(in.MachineName)})
}

func (s *Service) locations(ctx context.Context, filter LocationFilter) ([]entity.Location, error) {
	recs, err := s.repo.ListLocations(ctx, filter)
	if err != nil {
		return nil, err
	}
	return entity.AdaptLocations(recs)
}

// MachineLocations lists every placement with its machine and location.
func (s *Service) MachineLocations(ctx context.Context) ([]entity.MachineLocation, error) {
	recs, err := s.repo.ListMachineLocations(ctx)
	if err != nil {
		return nil, err
	}
	return entity.AdaptMachineLocations(recs)
}

// MachineTypes lists every machine type.
func (s *Service) MachineTypes(ctx context.Context) ([]entity.MachineType, error) {
	recs, err := s.repo.ListMachineTypes(ctx)
	if err != nil {
		return nil, err
	}
	return entity.AdaptMachineTypes(recs)
}

// MachineType returns one machine type, or nil when it does not exist.
func (s *Service) MachineType(ctx context.Context, in IDInput) (*entity.MachineType, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetMachineType(ctx, in.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := entity.AdaptMachineType(rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Manufacturers lists every manufacturer with its machines.
func (s *Service) Manufacturers(ctx context.Context) ([]entity.Manufacturer, error) {
	recs, err := s.repo.ListManufacturers(ctx)
	if err != nil {
		return nil, err
	}
	return entity.AdaptManufacturers(recs)
}

// Manufacturer returns one manufacturer, or nil when it does not exist.
func (s *Service) Manufacturer(ctx context.Context, in IDInput) (*entity.Manufacturer, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	rec, err := s.repo.GetManufacturer(ctx, in.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := entity.AdaptManufacturer(rec)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) CreateMachine(ctx context.Context, in CreateMachineInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertMachine(ctx, id, in)
	return settle(ctx, s, machineCreated, id, rec, err, entity.AdaptMachine, nil)
}

func (s *Service) UpdateMachine(ctx context.Context, in UpdateMachineInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateMachine(ctx, in)
	return settle(ctx, s, machineUpdated, in.ID, rec, err, entity.AdaptMachine, nil)
}

// DeleteMachine removes a machine together with its machine items and placements.
func (s *Service) DeleteMachine(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	var rec record.Machine
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.DeleteMachineItemsByMachine(ctx, in.ID); err != nil {
			return err
		}
		if _, err := tx.DeleteMachineLocationsByMachine(ctx, in.ID); err != nil {
			return err
		}
		var err error
		rec, err = tx.DeleteMachine(ctx, in.ID)
		return err
	})
	return settle(ctx, s, machineDeleted, in.ID, rec, err, entity.AdaptMachine, nil)
}

func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertItem(ctx, id, in)
	return settle(ctx, s, itemCreated, id, rec, err, entity.AdaptItem, nil)
}

func (s *Service) UpdateItem(ctx context.Context, in UpdateItemInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateItem(ctx, in)
	return settle(ctx, s, itemUpdated, in.ID, rec, err, entity.AdaptItem, nil)
}

// UpdateItemPrice changes only the base price of an item.
func (s *Service) UpdateItemPrice(ctx context.Context, in UpdateItemPriceInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateItem(ctx, UpdateItemInput{ID: in.ID, BasePrice: in.BasePrice})
	return settle(ctx, s, itemPriceUpdated, in.ID, rec, err, entity.AdaptItem, map[string]any{"basePrice": *in.BasePrice})
}

// DeleteItem removes an item and every machine item that stocks it.
func (s *Service) DeleteItem(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	var rec record.Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.DeleteMachineItemsByItem(ctx, in.ID); err != nil {
			return err
		}
		var err error
		rec, err = tx.DeleteItem(ctx, in.ID)
		return err
	})
	return settle(ctx, s, itemDeleted, in.ID, rec, err, entity.AdaptItem, nil)
}

func (s *Service) CreateLocation(ctx context.Context, in CreateLocationInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertLocation(ctx, id, in)
	return settle(ctx, s, locationCreated, id, rec, err, entity.AdaptLocation, nil)
}

func (s *Service) UpdateLocation(ctx context.Context, in UpdateLocationInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateLocation(ctx, in)
	return settle(ctx, s, locationUpdated, in.ID, rec, err, entity.AdaptLocation, nil)
}

// DeleteLocation removes a location and the placements pointing at it.
func (s *Service) DeleteLocation(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	var rec record.Location
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.DeleteMachineLocationsByLocation(ctx, in.ID); err != nil {
			return err
		}
		var err error
		rec, err = tx.DeleteLocation(ctx, in.ID)
		return err
	})
	return settle(ctx, s, locationDeleted, in.ID, rec, err, entity.AdaptLocation, nil)
}

func (s *Service) CreateMachineLocation(ctx context.Context, in CreateMachineLocationInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertMachineLocation(ctx, id, in)
	return settle(ctx, s, placementCreated, id, rec, err, entity.AdaptMachineLocation, nil)
}

func (s *Service) UpdateMachineLocation(ctx context.Context, in UpdateMachineLocationInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateMachineLocation(ctx, in)
	return settle(ctx, s, placementUpdated, in.ID, rec, err, entity.AdaptMachineLocation, nil)
}

func (s *Service) DeleteMachineLocation(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.DeleteMachineLocation(ctx, in.ID)
	return settle(ctx, s, placementDeleted, in.ID, rec, err, entity.AdaptMachineLocation, nil)
}

func (s *Service) CreateMachineItem(ctx context.Context, in CreateMachineItemInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertMachineItem(ctx, id, in)
	return settle(ctx, s, machineItemCreated, id, rec, err, entity.AdaptMachineItem, nil)
}

func (s *Service) UpdateMachineItem(ctx context.Context, in UpdateMachineItemInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateMachineItem(ctx, in)
	return settle(ctx, s, machineItemUpdated, in.ID, rec, err, entity.AdaptMachineItem, nil)
}

func (s *Service) DeleteMachineItem(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.DeleteMachineItem(ctx, in.ID)
	return settle(ctx, s, machineItemDeleted, in.ID, rec, err, entity.AdaptMachineItem, nil)
}

// UpdateMachineItems replaces the full item set of a machine in one
// transaction. Every id is checked before the current assignments are
// removed, so a missing machine or item leaves the machine untouched.
func (s *Service) UpdateMachineItems(ctx context.Context, in ReplaceMachineItemsInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	itemIDs := uniq(in.ItemIDs)
	var assigned []record.MachineItem
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.MachineExists(ctx, in.MachineID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("machine %s %w", in.MachineID, shared.ErrNotFound)
		}
		found, err := tx.ExistingItemIDs(ctx, itemIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(itemIDs, found); len(missing) > 0 {
			return fmt.Errorf("items %w: %s", shared.ErrNotFound, strings.Join(missing, ", "))
		}
		if _, err := tx.DeleteMachineItemsByMachine(ctx, in.MachineID); err != nil {
			return err
		}
		assigned = make([]record.MachineItem, 0, len(itemIDs))
		for _, itemID := range itemIDs {
			mi, err := tx.AssignItem(ctx, s.newID(), in.MachineID, itemID)
			if err != nil {
				return err
			}
			assigned = append(assigned, mi)
		}
		return nil
	})
	return settle(ctx, s, machineItemsReplaced, in.MachineID, assigned, err, entity.AdaptMachineItems, map[string]any{"itemIds": itemIDs})
}

// missingIDs returns the ids in want absent from have, in want's order.
func missingIDs(want, have []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	var missing []string
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func (s *Service) CreateMachineType(ctx context.Context, in CreateMachineTypeInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertMachineType(ctx, id, in)
	return settle(ctx, s, machineTypeCreated, id, rec, err, entity.AdaptMachineType, nil)
}

func (s *Service) UpdateMachineType(ctx context.Context, in UpdateMachineTypeInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateMachineType(ctx, in)
	return settle(ctx, s, machineTypeUpdated, in.ID, rec, err, entity.AdaptMachineType, nil)
}

// DeleteMachineType refuses while any machine still uses the type.
func (s *Service) DeleteMachineType(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	var rec record.MachineType
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.CountMachinesByType(ctx, in.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("machine type %s %w: in use by %d machines", in.ID, shared.ErrConflict, n)
		}
		rec, err = tx.DeleteMachineType(ctx, in.ID)
		return err
	})
	return settle(ctx, s, machineTypeDeleted, in.ID, rec, err, entity.AdaptMachineType, nil)
}

func (s *Service) CreateManufacturer(ctx context.Context, in CreateManufacturerInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	id := s.newID()
	rec, err := s.repo.InsertManufacturer(ctx, id, in)
	return settle(ctx, s, manufacturerCreated, id, rec, err, entity.AdaptManufacturer, nil)
}

func (s *Service) UpdateManufacturer(ctx context.Context, in UpdateManufacturerInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	rec, err := s.repo.UpdateManufacturer(ctx, in)
	return settle(ctx, s, manufacturerUpdated, in.ID, rec, err, entity.AdaptManufacturer, nil)
}

// DeleteManufacturer refuses while machines or machine types reference it.
func (s *Service) DeleteManufacturer(ctx context.Context, in IDInput) (mutation.Response, error) {
	if err := validation.Struct(in); err != nil {
		return mutation.Recover(err)
	}
	var rec record.Manufacturer
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		machines, err := tx.CountMachinesByManufacturer(ctx, in.ID)
		if err != nil {
			return err
		}
		if machines > 0 {
			return fmt.Errorf("manufacturer %s %w: in use by %d machines", in.ID, shared.ErrConflict, machines)
		}
		types, err := tx.CountMachineTypesByManufacturer(ctx, in.ID)
		if err != nil {
			return err
		}
		if types > 0 {
			return fmt.Errorf("manufacturer %s %w: in use by %d machine types", in.ID, shared.ErrConflict, types)
		}
		rec, err = tx.DeleteManufacturer(ctx, in.ID)
		return err
	})
	return settle(ctx, s, manufacturerDeleted, in.ID, rec, err, entity.AdaptManufacturer, nil)
}
