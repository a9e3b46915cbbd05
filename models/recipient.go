package models

// Recipient is a pre-verified aid organization eligible to receive a
// disbursement. The registry is loaded once at startup and is read-only
// for the remainder of the process lifetime, so concurrent reads are safe.
type Recipient struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	Verified      bool     `json:"verified"`
	DisasterTypes []string `json:"disaster_types"`
	Regions       []string `json:"regions"`
	Description   string   `json:"description"`
}

// SupportsRegion reports whether the recipient declares coverage of region.
func (r *Recipient) SupportsRegion(region string) bool {
	for _, reg := range r.Regions {
		if reg == region {
			return true
		}
	}
	return false
}
