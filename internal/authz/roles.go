// Package authz holds the role/permission model and the checks that gate every
// operation exposed by the API.
package authz

import (
	"fmt"
	"strings"
)

// Role is the coarse-grained class assigned to an authenticated caller.
type Role string

const (
	Technician    Role = "TECHNICIAN"
	Operator      Role = "OPERATOR"
	Administrator Role = "ADMINISTRATOR"
)

// Permission is a named capability checked before an operation runs.
type Permission string

const (
	CreateItems                Permission = "CREATE_ITEMS"
	CreateLocations            Permission = "CREATE_LOCATIONS"
	CreateMachineItems         Permission = "CREATE_MACHINE_ITEMS"
	CreateMachineLocations     Permission = "CREATE_MACHINE_LOCATIONS"
	CreateMachineManufacturers Permission = "CREATE_MACHINE_MANUFACTURERS"
	CreateMachineTypes         Permission = "CREATE_MACHINE_TYPES"
	CreateMachines             Permission = "CREATE_MACHINES"
	CreateUsers                Permission = "CREATE_USERS"

	DeleteItems                Permission = "DELETE_ITEMS"
	DeleteLocations            Permission = "DELETE_LOCATIONS"
	DeleteMachineItems         Permission = "DELETE_MACHINE_ITEMS"
	DeleteMachineLocations     Permission = "DELETE_MACHINE_LOCATIONS"
	DeleteMachineManufacturers Permission = "DELETE_MACHINE_MANUFACTURERS"
	DeleteMachineTypes         Permission = "DELETE_MACHINE_TYPES"
	DeleteMachines             Permission = "DELETE_MACHINES"
	DeleteUsers                Permission = "DELETE_USERS"

	ReadItems                Permission = "READ_ITEMS"
	ReadLocations            Permission = "READ_LOCATIONS"
	ReadMachineItems         Permission = "READ_MACHINE_ITEMS"
	ReadMachineLocations     Permission = "READ_MACHINE_LOCATIONS"
	ReadMachineManufacturers Permission = "READ_MACHINE_MANUFACTURERS"
	ReadMachineTypes         Permission = "READ_MACHINE_TYPES"
	ReadMachines             Permission = "READ_MACHINES"
	ReadUsers                Permission = "READ_USERS"

	UpdateItems                Permission = "UPDATE_ITEMS"
	UpdateLocations            Permission = "UPDATE_LOCATIONS"
	UpdateMachineItems         Permission = "UPDATE_MACHINE_ITEMS"
	UpdateMachineLocations     Permission = "UPDATE_MACHINE_LOCATIONS"
	UpdateMachineManufacturers Permission = "UPDATE_MACHINE_MANUFACTURERS"
	UpdateMachinePrices        Permission = "UPDATE_MACHINE_PRICES"
	UpdateMachineTypes         Permission = "UPDATE_MACHINE_TYPES"
	UpdateMachines             Permission = "UPDATE_MACHINES"
	UpdateUsers                Permission = "UPDATE_USERS"
)

// Roles lists every role in ascending privilege order.
func Roles() []Role {
	return []Role{Technician, Operator, Administrator}
}

// ParseRole converts an external string (token claim, database column) into a Role.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Roles() {
		if role == known {
			return role, nil
		}
	}
	return "", fmt.Errorf("authz: unknown role %q", raw)
}

func (r Role) String() string {
	return string(r)
}

func (p Permission) String() string {
	return string(p)
}
