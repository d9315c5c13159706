package types

// Farmer represents one registered farmer as stored in the flat file.
// Records are append-only: the registration form is the sole producer and
// there are no update or delete paths.
type Farmer struct {
	// ID is the stored identity. Legacy rows written before IDs were
	// assigned may not carry one.
	ID string `json:"id,omitempty"`

	// Name is the farmer's full name.
	Name string `json:"name"`

	// Email is the farmer's contact email.
	Email string `json:"email"`

	// Subcity is the administrative area the farm belongs to.
	Subcity string `json:"subcity"`

	// Phone is the farmer's phone number.
	Phone string `json:"phone"`

	// FarmName is the display name of the farm.
	FarmName string `json:"farmName"`

	// FarmType is a free-form category (e.g. "Crops", "Livestock").
	FarmType string `json:"farmType"`

	// FarmSize is the farm size in hectares, stored as text. Values that
	// do not parse as numbers sort as zero.
	FarmSize string `json:"farmSize"`

	// CreatedAt is the RFC 3339 registration timestamp. Legacy rows may
	// lack it; readers default it at fetch time.
	CreatedAt string `json:"createdAt,omitempty"`
}
