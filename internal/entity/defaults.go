package entity

// Substituted when the stored column is NULL. A stored zero is kept as is.
const (
	DefaultItemBasePrice        float64 = 3.00
	DefaultItemExpirationPeriod int32   = 90
	DefaultMachineItemQuantity  int32   = 0
)
