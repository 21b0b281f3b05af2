package domain

type ListingType string

const (
	ListingTypeItem    ListingType = "ITEM"
	ListingTypeService ListingType = "SERVICE"
)

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "ACTIVE"
	ListingStatusPaused ListingStatus = "PAUSED"
)

type BillingUnit string

const (
	BillingUnitHour     BillingUnit = "HOUR"
	BillingUnitDay      BillingUnit = "DAY"
	BillingUnitPerGuest BillingUnit = "PER_GUEST"
	BillingUnitPerGroup BillingUnit = "PER_GROUP"
)

// Valid reports whether u is one of the four recognised billing units.
func (u BillingUnit) Valid() bool {
	switch u {
	case BillingUnitHour, BillingUnitDay, BillingUnitPerGuest, BillingUnitPerGroup:
		return true
	}
	return false
}

// Listing is the snapshot of a listing owned by the listing service.
// This core reads it at each decision point and never writes it.
type Listing struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Type        ListingType   `json:"type"`
	Status      ListingStatus `json:"status"`
	PriceCents  int64         `json:"price_cents"`
	BillingUnit BillingUnit   `json:"billing_unit"`
}

// SupportsBillingUnit enforces that ITEM listings bill only by HOUR or DAY.
func (l *Listing) SupportsBillingUnit() bool {
	if !l.BillingUnit.Valid() {
		return false
	}
	if l.Type == ListingTypeItem {
		return l.BillingUnit == BillingUnitHour || l.BillingUnit == BillingUnitDay
	}
	return true
}
