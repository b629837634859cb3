// Package entity is the stable output contract of the API together with the
// adapters that normalize persistence records into it.
package entity

// Manufacturer is the output shape of a machine manufacturer.
type Manufacturer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Machines  []Machine `json:"machines,omitempty"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// MachineType is the output shape of a machine model.
type MachineType struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	ManufacturerID string        `json:"manufacturerId"`
	Manufacturer   *Manufacturer `json:"manufacturer,omitempty"`
	Machines       []Machine     `json:"machines,omitempty"`
	CreatedAt      string        `json:"createdAt"`
	UpdatedAt      string        `json:"updatedAt"`
}

// Machine is the output shape of a vending machine.
type Machine struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	MachineTypeID    string            `json:"machineTypeId"`
	ManufacturerID   string            `json:"manufacturerId"`
	MachineType      *MachineType      `json:"machineType,omitempty"`
	Manufacturer     *Manufacturer     `json:"manufacturer,omitempty"`
	MachineItems     []MachineItem     `json:"machineItems,omitempty"`
	MachineLocations []MachineLocation `json:"machineLocations,omitempty"`
	CreatedAt        string            `json:"createdAt"`
	UpdatedAt        string            `json:"updatedAt"`
}

// Item is the output shape of a sellable product.
type Item struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	BasePrice        float64       `json:"basePrice"`
	ExpirationPeriod int32         `json:"expirationPeriod"`
	MachineItems     []MachineItem `json:"machineItems,omitempty"`
	CreatedAt        string        `json:"createdAt"`
	UpdatedAt        string        `json:"updatedAt"`
}

// MachineItem is the output shape of an item stocked in a machine.
type MachineItem struct {
	ID        string   `json:"id"`
	Name      *string  `json:"name"`
	Quantity  int32    `json:"quantity"`
	MachineID string   `json:"machineId"`
	ItemID    string   `json:"itemId"`
	Machine   *Machine `json:"machine,omitempty"`
	Item      *Item    `json:"item,omitempty"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

// Location is the output shape of a site.
type Location struct {
	ID               string            `json:"id"`
	Address1         string            `json:"address1"`
	Address2         *string           `json:"address2"`
	City             string            `json:"city"`
	StateOrProvince  string            `json:"stateOrProvince"`
	Country          string            `json:"country"`
	MachineLocations []MachineLocation `json:"machineLocations,omitempty"`
	CreatedAt        string            `json:"createdAt"`
	UpdatedAt        string            `json:"updatedAt"`
}

// MachineLocation is the output shape of a machine placement.
type MachineLocation struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MachineID  string    `json:"machineId"`
	LocationID string    `json:"locationId"`
	Machine    *Machine  `json:"machine,omitempty"`
	Location   *Location `json:"location,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

// User is the output shape of an account. It carries no credential material.
type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      *string `json:"name"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}
