package entity

import "github.com/instamunch/instamunch-api/internal/record"

// AdaptManufacturer normalizes a manufacturer record.
func AdaptManufacturer(rec record.Manufacturer) (Manufacturer, error) {
	if rec.ID == "" {
		return Manufacturer{}, malformed("manufacturer", "", "id")
	}
	created, updated, err := timestamps("manufacturer", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Manufacturer{}, err
	}
	machines, err := adaptAll(rec.Machines, AdaptMachine)
	if err != nil {
		return Manufacturer{}, err
	}
	return Manufacturer{
		ID:        rec.ID,
		Name:      rec.Name,
		Machines:  machines,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// AdaptMachineType normalizes a machine type record.
func AdaptMachineType(rec record.MachineType) (MachineType, error) {
	if rec.ID == "" {
		return MachineType{}, malformed("machineType", "", "id")
	}
	created, updated, err := timestamps("machineType", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return MachineType{}, err
	}
	manufacturer, err := adaptOne(rec.Manufacturer, AdaptManufacturer)
	if err != nil {
		return MachineType{}, err
	}
	machines, err := adaptAll(rec.Machines, AdaptMachine)
	if err != nil {
		return MachineType{}, err
	}
	return MachineType{
		ID:             rec.ID,
		Name:           rec.Name,
		ManufacturerID: rec.ManufacturerID,
		Manufacturer:   manufacturer,
		Machines:       machines,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, nil
}

// AdaptMachine normalizes a machine record.
func AdaptMachine(rec record.Machine) (Machine, error) {
	if rec.ID == "" {
		return Machine{}, malformed("machine", "", "id")
	}
	if rec.Name == nil {
		return Machine{}, malformed("machine", rec.ID, "name")
	}
	created, updated, err := timestamps("machine", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Machine{}, err
	}
	out := Machine{
		ID:             rec.ID,
		Name:           *rec.Name,
		MachineTypeID:  rec.MachineTypeID,
		ManufacturerID: rec.ManufacturerID,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}
	if out.MachineType, err = adaptOne(rec.MachineType, AdaptMachineType); err != nil {
		return Machine{}, err
	}
	if out.Manufacturer, err = adaptOne(rec.Manufacturer, AdaptManufacturer); err != nil {
		return Machine{}, err
	}
	if out.MachineItems, err = adaptAll(rec.MachineItems, AdaptMachineItem); err != nil {
		return Machine{}, err
	}
	if out.MachineLocations, err = adaptAll(rec.MachineLocations, AdaptMachineLocation); err != nil {
		return Machine{}, err
	}
	return out, nil
}

// AdaptItem normalizes an item record, filling price and shelf life defaults
// when they were never stored.
func AdaptItem(rec record.Item) (Item, error) {
	if rec.ID == "" {
		return Item{}, malformed("item", "", "id")
	}
	if rec.Name == nil {
		return Item{}, malformed("item", rec.ID, "name")
	}
	created, updated, err := timestamps("item", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	out := Item{
		ID:               rec.ID,
		Name:             *rec.Name,
		BasePrice:        DefaultItemBasePrice,
		ExpirationPeriod: DefaultItemExpirationPeriod,
		CreatedAt:        created,
		UpdatedAt:        updated,
	}
	if rec.BasePrice != nil {
		out.BasePrice = *rec.BasePrice
	}
	if rec.ExpirationPeriod != nil {
		out.ExpirationPeriod = *rec.ExpirationPeriod
	}
	if out.MachineItems, err = adaptAll(rec.MachineItems, AdaptMachineItem); err != nil {
		return Item{}, err
	}
	return out, nil
}

// AdaptMachineItem normalizes a machine item record.
func AdaptMachineItem(rec record.MachineItem) (MachineItem, error) {
	if rec.ID == "" {
		return MachineItem{}, malformed("machineItem", "", "id")
	}
	created, updated, err := timestamps("machineItem", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return MachineItem{}, err
	}
	out := MachineItem{
		ID:        rec.ID,
		Name:      rec.Name,
		Quantity:  DefaultMachineItemQuantity,
		MachineID: rec.MachineID,
		ItemID:    rec.ItemID,
		CreatedAt: created,
		UpdatedAt: updated,
	}
	if rec.Quantity != nil {
		out.Quantity = *rec.Quantity
	}
	if out.Machine, err = adaptOne(rec.Machine, AdaptMachine); err != nil {
		return MachineItem{}, err
	}
	if out.Item, err = adaptOne(rec.Item, AdaptItem); err != nil {
		return MachineItem{}, err
	}
	return out, nil
}

// AdaptLocation normalizes a location record.
func AdaptLocation(rec record.Location) (Location, error) {
	if rec.ID == "" {
		return Location{}, malformed("location", "", "id")
	}
	created, updated, err := timestamps("location", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Location{}, err
	}
	placements, err := adaptAll(rec.MachineLocations, AdaptMachineLocation)
	if err != nil {
		return Location{}, err
	}
	return Location{
		ID:               rec.ID,
		Address1:         rec.Address1,
		Address2:         rec.Address2,
		City:             rec.City,
		StateOrProvince:  rec.StateOrProvince,
		Country:          rec.Country,
		MachineLocations: placements,
		CreatedAt:        created,
		UpdatedAt:        updated,
	}, nil
}

// AdaptMachineLocation normalizes a machine placement record.
func AdaptMachineLocation(rec record.MachineLocation) (MachineLocation, error) {
	if rec.ID == "" {
		return MachineLocation{}, malformed("machineLocation", "", "id")
	}
	created, updated, err := timestamps("machineLocation", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return MachineLocation{}, err
	}
	out := MachineLocation{
		ID:         rec.ID,
		Name:       rec.Name,
		MachineID:  rec.MachineID,
		LocationID: rec.LocationID,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if out.Machine, err = adaptOne(rec.Machine, AdaptMachine); err != nil {
		return MachineLocation{}, err
	}
	if out.Location, err = adaptOne(rec.Location, AdaptLocation); err != nil {
		return MachineLocation{}, err
	}
	return out, nil
}

// AdaptUser normalizes a user record and drops its credential material.
func AdaptUser(rec record.User) (User, error) {
	if rec.ID == "" {
		return User{}, malformed("user", "", "id")
	}
	if rec.Email == "" {
		return User{}, malformed("user", rec.ID, "email")
	}
	if rec.Role == "" {
		return User{}, malformed("user", rec.ID, "role")
	}
	created, updated, err := timestamps("user", rec.ID, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return User{
		ID:        rec.ID,
		Email:     rec.Email,
		Name:      rec.Name,
		Role:      rec.Role,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func AdaptMachines(recs []record.Machine) ([]Machine, error) {
	return adaptList(recs, AdaptMachine)
}

func AdaptItems(recs []record.Item) ([]Item, error) {
	return adaptList(recs, AdaptItem)
}

func AdaptMachineItems(recs []record.MachineItem) ([]MachineItem, error) {
	return adaptList(recs, AdaptMachineItem)
}

func AdaptLocations(recs []record.Location) ([]Location, error) {
	return adaptList(recs, AdaptLocation)
}

func AdaptMachineLocations(recs []record.MachineLocation) ([]MachineLocation, error) {
	return adaptList(recs, AdaptMachineLocation)
}

func AdaptMachineTypes(recs []record.MachineType) ([]MachineType, error) {
	return adaptList(recs, AdaptMachineType)
}

func AdaptManufacturers(recs []record.Manufacturer) ([]Manufacturer, error) {
	return adaptList(recs, AdaptManufacturer)
}

func AdaptUsers(recs []record.User) ([]User, error) {
	return adaptList(recs, AdaptUser)
}

// adaptAll keeps nil (relation not loaded) distinct from loaded.
func adaptAll[R, E any](recs []R, fn func(R) (E, error)) ([]E, error) {
	if recs == nil {
		return nil, nil
	}
	return adaptList(recs, fn)
}

// adaptList always yields a non-nil slice so top-level lists encode as [].
func adaptList[R, E any](recs []R, fn func(R) (E, error)) ([]E, error) {
	out := make([]E, 0, len(recs))
	for _, rec := range recs {
		e, err := fn(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func adaptOne[R, E any](rec *R, fn func(R) (E, error)) (*E, error) {
	if rec == nil {
		return nil, nil
	}
	e, err := fn(*rec)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
