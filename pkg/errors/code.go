package errors

// Service codes (AA)
const (
	// ServiceCommon is for common/base errors shared by all services.
	ServiceCommon = 0

	// ServiceWeather is for the weather reconciliation and advisory service.
	ServiceWeather = 21

	// ServiceThirdPartyWeather is for upstream weather data providers.
	ServiceThirdPartyWeather = 90

	// ServiceThirdPartyLLM is for upstream language model providers.
	ServiceThirdPartyLLM = 91
)

// Category codes (BB)
const (
	CategorySuccess   = 0
	CategoryRequest   = 1
	CategoryAuth      = 2
	CategoryResource  = 4
	CategoryRateLimit = 6
	CategoryInternal  = 7
	CategoryCache     = 9
	CategoryNetwork   = 10
	CategoryTimeout   = 11
	CategoryConfig    = 12
)

// MakeCode creates an error code from service, category, and sequence.
// Format: AABBCCC where AA=service, BB=category, CCC=sequence
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// GetCategory returns the category code from an error code.
func GetCategory(code int) int {
	return (code % 100000) / 1000
}
