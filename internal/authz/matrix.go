package authz

import (
	"errors"
	"fmt"
	"sort"
)

// Tier declares the permissions a role adds on top of the tier below it.
type Tier struct {
	Role Role
	Adds []Permission
}

// Matrix is the total mapping from role to granted permissions.
type Matrix struct {
	grants map[Role]map[Permission]struct{}
	order  []Role
}

// ErrInvalidMatrix reports a matrix that violates the privilege chain.
var ErrInvalidMatrix = errors.New("authz: invalid permission matrix")

var technicianGrants = []Permission{
	CreateMachineItems,
	DeleteMachineItems,
	ReadItems,
	ReadLocations,
	ReadMachineItems,
	ReadMachineLocations,
	ReadMachineManufacturers,
	ReadMachineTypes,
	ReadMachines,
	ReadUsers,
	UpdateMachineItems,
}

var operatorGrants = []Permission{
	CreateItems,
	CreateMachines,
	UpdateItems,
	UpdateMachines,
	UpdateMachinePrices,
	UpdateUsers,
}

var administratorGrants = []Permission{
	CreateLocations,
	CreateMachineLocations,
	CreateMachineManufacturers,
	CreateMachineTypes,
	CreateUsers,
	DeleteItems,
	DeleteLocations,
	DeleteMachineLocations,
	DeleteMachineManufacturers,
	DeleteMachineTypes,
	DeleteMachines,
	DeleteUsers,
	UpdateLocations,
	UpdateMachineLocations,
	UpdateMachineManufacturers,
	UpdateMachineTypes,
}

var defaultMatrix = MustMatrix(
	Tier{Role: Technician, Adds: technicianGrants},
	Tier{Role: Operator, Adds: operatorGrants},
	Tier{Role: Administrator, Adds: administratorGrants},
)

// DefaultMatrix returns the process-wide role matrix.
func DefaultMatrix() *Matrix {
	return defaultMatrix
}

// NewMatrix builds a matrix from tiers listed in ascending privilege order. Each
// role inherits every permission of the roles before it, so the resulting sets
// form a strict superset chain.
func NewMatrix(tiers ...Tier) (*Matrix, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidMatrix)
	}
	m := &Matrix{grants: make(map[Role]map[Permission]struct{}, len(tiers))}
	inherited := map[Permission]struct{}{}
	for _, tier := range tiers {
		if tier.Role == "" {
			return nil, fmt.Errorf("%w: empty role", ErrInvalidMatrix)
		}
		if _, dup := m.grants[tier.Role]; dup {
			return nil, fmt.Errorf("%w: role %s declared twice", ErrInvalidMatrix, tier.Role)
		}
		set := make(map[Permission]struct{}, len(inherited)+len(tier.Adds))
		for p := range inherited {
			set[p] = struct{}{}
		}
		added := 0
		for _, p := range tier.Adds {
			if _, ok := set[p]; ok {
				continue
			}
			set[p] = struct{}{}
			added++
		}
		if added == 0 {
			return nil, fmt.Errorf("%w: role %s grants nothing beyond the tier below", ErrInvalidMatrix, tier.Role)
		}
		m.grants[tier.Role] = set
		m.order = append(m.order, tier.Role)
		inherited = set
	}
	return m, nil
}

// MustMatrix is NewMatrix that panics on error. Intended for package-level tables.
func MustMatrix(tiers ...Tier) *Matrix {
	m, err := NewMatrix(tiers...)
	if err != nil {
		panic(err)
	}
	return m
}

// HasPermission reports whether role is granted perm. A role absent from the
// matrix is a programming error and panics.
func (m *Matrix) HasPermission(role Role, perm Permission) bool {
	set, ok := m.grants[role]
	if !ok {
		panic(fmt.Sprintf("authz: role %q is not part of the permission matrix", role))
	}
	_, granted := set[perm]
	return granted
}

// Knows reports whether role is part of the matrix.
func (m *Matrix) Knows(role Role) bool {
	_, ok := m.grants[role]
	return ok
}

// Granted returns the sorted permissions of role.
func (m *Matrix) Granted(role Role) []Permission {
	set, ok := m.grants[role]
	if !ok {
		panic(fmt.Sprintf("authz: role %q is not part of the permission matrix", role))
	}
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Roles lists the roles of the matrix in ascending privilege order.
func (m *Matrix) Roles() []Role {
	out := make([]Role, len(m.order))
	copy(out, m.order)
	return out
}
