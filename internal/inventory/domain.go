package inventory

// Inputs are decoded from operation payloads and validated before they reach
// the repository. Pointer fields on update inputs mean "leave unchanged".

// IDInput addresses a single record.
type IDInput struct {
	ID string `json:"id" validate:"required"`
}

// MachineIDInput scopes a query to one machine.
type MachineIDInput struct {
	MachineID string `json:"machineId" validate:"required"`
}

// ItemIDInput scopes a query to one item.
type ItemIDInput struct {
	ItemID string `json:"itemId" validate:"required"`
}

// LocationIDInput scopes a query to one location.
type LocationIDInput struct {
	LocationID string `json:"locationId" validate:"required"`
}

// MachineNameInput searches locations by a case-insensitive machine name fragment.
type MachineNameInput struct {
	MachineName string `json:"machineName" validate:"required"`
}

type CreateMachineInput struct {
	Name           string `json:"name" validate:"required"`
	MachineTypeID  string `json:"machineTypeId" validate:"required"`
	ManufacturerID string `json:"manufacturerId" validate:"required"`
}

type UpdateMachineInput struct {
	ID   string  `json:"id" validate:"required"`
	Name *string `json:"name" validate:"omitempty,min=1"`
}

type CreateItemInput struct {
	Name             string   `json:"name" validate:"required"`
	BasePrice        *float64 `json:"basePrice" validate:"omitempty,gte=0"`
	ExpirationPeriod *int32   `json:"expirationPeriod" validate:"omitempty,gt=0"`
}

type UpdateItemInput struct {
	ID               string   `json:"id" validate:"required"`
	Name             *string  `json:"name" validate:"omitempty,min=1"`
	BasePrice        *float64 `json:"basePrice" validate:"omitempty,gte=0"`
	ExpirationPeriod *int32   `json:"expirationPeriod" validate:"omitempty,gt=0"`
}

// UpdateItemPriceInput changes only the base price of an item.
type UpdateItemPriceInput struct {
	ID        string   `json:"id" validate:"required"`
	BasePrice *float64 `json:"basePrice" validate:"required,gte=0"`
}

type CreateLocationInput struct {
	Address1        string  `json:"address1" validate:"required"`
	Address2        *string `json:"address2"`
	City            string  `json:"city" validate:"required"`
	StateOrProvince string  `json:"stateOrProvince" validate:"required"`
	Country         string  `json:"country" validate:"required"`
}

type UpdateLocationInput struct {
	ID              string  `json:"id" validate:"required"`
	Address1        *string `json:"address1" validate:"omitempty,min=1"`
	Address2        *string `json:"address2"`
	City            *string `json:"city" validate:"omitempty,min=1"`
	StateOrProvince *string `json:"stateOrProvince" validate:"omitempty,min=1"`
	Country         *string `json:"country" validate:"omitempty,min=1"`
}

type CreateMachineLocationInput struct {
	Name       string `json:"name" validate:"required"`
	MachineID  string `json:"machineId" validate:"required"`
	LocationID string `json:"locationId" validate:"required"`
}

// UpdateMachineLocationInput may move a placement to another machine or location.
type UpdateMachineLocationInput struct {
	ID         string  `json:"id" validate:"required"`
	Name       *string `json:"name" validate:"omitempty,min=1"`
	MachineID  *string `json:"machineId" validate:"omitempty,min=1"`
	LocationID *string `json:"locationId" validate:"omitempty,min=1"`
}

type CreateMachineItemInput struct {
	MachineID string  `json:"machineId" validate:"required"`
	ItemID    string  `json:"itemId" validate:"required"`
	Name      *string `json:"name"`
	Quantity  *int32  `json:"quantity" validate:"omitempty,gte=0"`
}

// UpdateMachineItemInput restocks or relabels a slot.
type UpdateMachineItemInput struct {
	ID       string  `json:"id" validate:"required"`
	Name     *string `json:"name"`
	Quantity *int32  `json:"quantity" validate:"omitempty,gte=0"`
}

// ReplaceMachineItemsInput is the full desired item set of a machine.
type ReplaceMachineItemsInput struct {
	MachineID string   `json:"machineId" validate:"required"`
	ItemIDs   []string `json:"itemIds" validate:"required,dive,required"`
}

type CreateMachineTypeInput struct {
	Name           string `json:"name" validate:"required"`
	ManufacturerID string `json:"manufacturerId" validate:"required"`
}

type UpdateMachineTypeInput struct {
	ID             string  `json:"id" validate:"required"`
	Name           *string `json:"name" validate:"omitempty,min=1"`
	ManufacturerID *string `json:"manufacturerId" validate:"omitempty,min=1"`
}

type CreateManufacturerInput struct {
	Name string `json:"name" validate:"required"`
}

type UpdateManufacturerInput struct {
	ID   string  `json:"id" validate:"required"`
	Name *string `json:"name" validate:"omitempty,min=1"`
}

// MachineFilter narrows machine listings. Empty fields do not filter.
type MachineFilter struct {
	LocationID string
}

// MachineItemFilter narrows machine item listings. Empty fields do not filter.
type MachineItemFilter struct {
	MachineID string
	ItemID    string
}

// LocationFilter narrows location listings. Empty fields do not filter.
type LocationFilter struct {
	ItemID      string
	MachineName string
}
