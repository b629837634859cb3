package inventory

import (
	"github.com/instamunch/instamunch-api/internal/authz"
	"github.com/instamunch/instamunch-api/internal/ops"
)

// Register declares the inventory operations and their permission requirements.
func Register(reg *ops.Registry, svc *Service) error {
	return reg.Register(
		ops.Definition{Name: "getMachines", Description: "List machines", Requirement: authz.All(authz.ReadMachines), Handler: ops.NoInput(svc.Machines)},
		ops.Definition{Name: "getMachinesByLocation", Description: "List machines placed at a location", Requirement: authz.All(authz.ReadMachines, authz.ReadLocations), Handler: ops.Typed(svc.MachinesByLocation)},
		ops.Definition{Name: "getItems", Description: "List items", Requirement: authz.All(authz.ReadItems), Handler: ops.NoInput(svc.Items)},
		ops.Definition{Name: "getItemsByMachine", Description: "List items stocked in a machine", Requirement: authz.Any(authz.ReadMachineItems, authz.ReadMachines), Handler: ops.Typed(svc.ItemsByMachine)},
		ops.Definition{Name: "getMachinesByItem", Description: "List machines stocking an item", Requirement: authz.Any(authz.ReadMachineItems, authz.ReadItems), Handler: ops.Typed(svc.MachinesByItem)},
		ops.Definition{Name: "getMachineItems", Description: "List machine items", Requirement: authz.All(authz.ReadMachineItems), Handler: ops.NoInput(svc.MachineItems)},
		ops.Definition{Name: "getLocations", Description: "List locations", Requirement: authz.All(authz.ReadLocations), Handler: ops.NoInput(svc.Locations)},
		ops.Definition{Name: "getLocationsByItem", Description: "List locations where an item is stocked", Requirement: authz.Any(authz.ReadLocations, authz.ReadMachineLocations), Handler: ops.Typed(svc.LocationsByItem)},
		ops.Definition{Name: "getLocationsByMachineName", Description: "Search locations by machine name", Requirement: authz.All(authz.ReadMachineLocations), Handler: ops.Typed(svc.LocationsByMachineName)},
		ops.Definition{Name: "getMachineLocations", Description: "List machine placements", Requirement: authz.All(authz.ReadMachineLocations), Handler: ops.NoInput(svc.MachineLocations)},
		ops.Definition{Name: "getMachineTypes", Description: "List machine types", Requirement: authz.All(authz.ReadMachineTypes), Handler: ops.NoInput(svc.MachineTypes)},
		ops.Definition{Name: "getMachineType", Description: "Get a machine type", Requirement: authz.All(authz.ReadMachineTypes), Handler: ops.Typed(svc.MachineType)},
		ops.Definition{Name: "getMachineManufacturers", Description: "List manufacturers", Requirement: authz.All(authz.ReadMachineManufacturers), Handler: ops.NoInput(svc.Manufacturers)},
		ops.Definition{Name: "getMachineManufacturer", Description: "Get a manufacturer", Requirement: authz.All(authz.ReadMachineManufacturers), Handler: ops.Typed(svc.Manufacturer)},

		ops.Definition{Name: "createMachine", Kind: ops.Mutation, Requirement: authz.All(authz.CreateMachines), Handler: ops.Typed(svc.CreateMachine)},
		ops.Definition{Name: "updateMachine", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateMachines), Handler: ops.Typed(svc.UpdateMachine)},
		ops.Definition{Name: "deleteMachine", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachines), Handler: ops.Typed(svc.DeleteMachine)},
		ops.Definition{Name: "createItem", Kind: ops.Mutation, Requirement: authz.All(authz.CreateItems), Handler: ops.Typed(svc.CreateItem)},
		ops.Definition{Name: "updateItem", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateItems), Handler: ops.Typed(svc.UpdateItem)},
		ops.Definition{Name: "updateItemPrice", Kind: ops.Mutation, Requirement: authz.Any(authz.UpdateItems, authz.UpdateMachinePrices), Handler: ops.Typed(svc.UpdateItemPrice)},
		ops.Definition{Name: "deleteItem", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteItems), Handler: ops.Typed(svc.DeleteItem)},
		ops.Definition{Name: "createLocation", Kind: ops.Mutation, Requirement: authz.All(authz.CreateLocations), Handler: ops.Typed(svc.CreateLocation)},
		ops.Definition{Name: "updateLocation", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateLocations), Handler: ops.Typed(svc.UpdateLocation)},
		ops.Definition{Name: "deleteLocation", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteLocations), Handler: ops.Typed(svc.DeleteLocation)},
		ops.Definition{Name: "createMachineLocation", Kind: ops.Mutation, Requirement: authz.All(authz.CreateMachineLocations), Handler: ops.Typed(svc.CreateMachineLocation)},
		ops.Definition{Name: "updateMachineLocation", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateMachineLocations), Handler: ops.Typed(svc.UpdateMachineLocation)},
		ops.Definition{Name: "deleteMachineLocation", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachineLocations), Handler: ops.Typed(svc.DeleteMachineLocation)},
		ops.Definition{Name: "createMachineItem", Kind: ops.Mutation, Requirement: authz.All(authz.CreateMachineItems), Handler: ops.Typed(svc.CreateMachineItem)},
		ops.Definition{Name: "updateMachineItem", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateMachineItems), Handler: ops.Typed(svc.UpdateMachineItem)},
		ops.Definition{Name: "deleteMachineItem", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachineItems), Handler: ops.Typed(svc.DeleteMachineItem)},
		ops.Definition{Name: "updateMachineItems", Kind: ops.Mutation, Description: "Replace every item assigned to a machine", Requirement: authz.All(authz.CreateMachineItems, authz.DeleteMachineItems), Handler: ops.Typed(svc.UpdateMachineItems)},
		ops.Definition{Name: "createMachineType", Kind: ops.Mutation, Requirement: authz.All(authz.CreateMachineTypes), Handler: ops.Typed(svc.CreateMachineType)},
		ops.Definition{Name: "updateMachineType", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateMachineTypes), Handler: ops.Typed(svc.UpdateMachineType)},
		ops.Definition{Name: "deleteMachineType", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachineTypes), Handler: ops.Typed(svc.DeleteMachineType)},
		ops.Definition{Name: "createMachineManufacturer", Kind: ops.Mutation, Requirement: authz.All(authz.CreateMachineManufacturers), Handler: ops.Typed(svc.CreateManufacturer)},
		ops.Definition{Name: "updateMachineManufacturer", Kind: ops.Mutation, Requirement: authz.All(authz.UpdateMachineManufacturers), Handler: ops.Typed(svc.UpdateManufacturer)},
		ops.Definition{Name: "deleteMachineManufacturer", Kind: ops.Mutation, Requirement: authz.All(authz.DeleteMachineManufacturers), Handler: ops.Typed(svc.DeleteManufacturer)},
	)
}
