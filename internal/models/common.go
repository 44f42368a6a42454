package models

// Coordinates is an optional lat/lng pair attached to a stop.
type Coordinates struct {
	Lat float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

// Roles recognised across the marketplace.
const (
	RoleTrucker         = "trucker"
	RoleDispatcher      = "dispatcher"
	RoleShipper         = "shipper"
	RoleServiceProvider = "service_provider"
	RoleAdmin           = "admin"
)
