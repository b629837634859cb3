// Package record defines entities in the shape persistence returns them:
// nullable columns are pointers and relations are nil until loaded.
package record

// Manufacturer is a machine_manufacturers row.
type Manufacturer struct {
	ID        string
	Name      string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Machines []Machine
}

// MachineType is a machine_types row.
type MachineType struct {
	ID             string
	Name           string
	ManufacturerID string
	CreatedAt      Timestamp
	UpdatedAt      Timestamp

	Manufacturer *Manufacturer
	Machines     []Machine
}

// Machine is a machines row.
type Machine struct {
	ID             string
	Name           *string
	MachineTypeID  string
	ManufacturerID string
	CreatedAt      Timestamp
	UpdatedAt      Timestamp

	MachineType      *MachineType
	Manufacturer     *Manufacturer
	MachineItems     []MachineItem
	MachineLocations []MachineLocation
}

// Item is an items row. BasePrice and ExpirationPeriod are nullable.
type Item struct {
	ID               string
	Name             *string
	BasePrice        *float64
	ExpirationPeriod *int32
	CreatedAt        Timestamp
	UpdatedAt        Timestamp

	MachineItems []MachineItem
}

// MachineItem assigns an item to a machine slot.
type MachineItem struct {
	ID        string
	Name      *string
	Quantity  *int32
	MachineID string
	ItemID    string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	Machine *Machine
	Item    *Item
}

// Location is a physical site.
type Location struct {
	ID              string
	Address1        string
	Address2        *string
	City            string
	StateOrProvince string
	Country         string
	CreatedAt       Timestamp
	UpdatedAt       Timestamp

	MachineLocations []MachineLocation
}

// MachineLocation places a machine at a location.
type MachineLocation struct {
	ID         string
	Name       string
	MachineID  string
	LocationID string
	CreatedAt  Timestamp
	UpdatedAt  Timestamp

	Machine  *Machine
	Location *Location
}

// User is an account row. PasswordHash never leaves the persistence layer
// through an adapter.
type User struct {
	ID           string
	Email        string
	Name         *string
	Role         string
	PasswordHash string
	CreatedAt    Timestamp
	UpdatedAt    Timestamp
}
