package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Geography lookup errors
// 12000-12999: Geography command errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008
	RequestCanceled     ErrorCode = 10009

	// Database errors (10100-10199)
	DatabaseError       ErrorCode = 10100
	RecordNotFound      ErrorCode = 10101
	RecordAlreadyExists ErrorCode = 10102
	TransactionFailed   ErrorCode = 10103
	DataIntegrityError  ErrorCode = 10104

	// Cache errors (10200-10299)
	CacheError ErrorCode = 10200

	// Validation errors (10300-10399)
	ValidationFailed ErrorCode = 10300
	InvalidFormat    ErrorCode = 10301
	InvalidValue     ErrorCode = 10302

	// ========== Geography Lookup Errors (11000-11999) ==========

	ContinentNotFound ErrorCode = 11000
	CountryNotFound   ErrorCode = 11001
	ProvinceNotFound  ErrorCode = 11002
	CityNotFound      ErrorCode = 11003
	NoMatches         ErrorCode = 11004
	AmbiguousName     ErrorCode = 11005

	// ========== Geography Command Errors (12000-12999) ==========

	ParentNotFound ErrorCode = 12000
	SeedFailed     ErrorCode = 12001
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	// System & Common
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	ServiceUnavailable:  "Service temporarily unavailable",
	Timeout:             "Request timeout",
	RequestCanceled:     "Request canceled",

	// Database
	DatabaseError:       "Database operation failed",
	RecordNotFound:      "Record not found in database",
	RecordAlreadyExists: "Record already exists",
	TransactionFailed:   "Database transaction failed",
	DataIntegrityError:  "Stored data violates an integrity rule",

	// Cache
	CacheError: "Cache operation failed",

	// Validation
	ValidationFailed: "Validation failed",
	InvalidFormat:    "Invalid format",
	InvalidValue:     "Invalid value",

	// Lookup
	ContinentNotFound: "Continent not found",
	CountryNotFound:   "Country not found",
	ProvinceNotFound:  "Province not found",
	CityNotFound:      "City not found",
	NoMatches:         "No entities match the query",
	AmbiguousName:     "Name matches more than one entity",

	// Command
	ParentNotFound: "Parent entity not found",
	SeedFailed:     "Failed to apply seed data",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound, c == RecordNotFound, c >= 11000 && c < 11004:
		return 404
	case c == NoMatches:
		return 404
	case c == RecordAlreadyExists, c == ParentNotFound, c == DataIntegrityError:
		return 409
	case c == RequestCanceled:
		return 499
	case c == Timeout:
		return 504
	case c == ServiceUnavailable:
		return 503
	case c >= 10300 && c < 10400: // Validation errors
		return 400
	case c == InvalidParams:
		return 400
	default:
		return 500
	}
}
