package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurityConfig maps HTTP route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"Healthz": SecurityPublic,
	"Metrics": SecurityPublic,

	// Requests - Access Protected
	"CreateRentalRequest":  SecurityAccess,
	"ListMyRequests":       SecurityAccess,
	"ListIncomingRequests": SecurityAccess,
	"GetRentalRequest":     SecurityAccess,
	"ApproveRentalRequest": SecurityAccess,
	"RejectRentalRequest":  SecurityAccess,
	"CancelRentalRequest":  SecurityAccess,

	// Rentals - Access Protected
	"ListMyRentals":  SecurityAccess,
	"GetRental":      SecurityAccess,
	"CancelRental":   SecurityAccess,
	"CompleteRental": SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
