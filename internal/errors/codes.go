package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients map these codes to their own messages.

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceConflict = "RESOURCE_CONFLICT"

	// ==================== Configuration (CONFIG_) ====================
	ConfigProductNotConfigurable = "CONFIG_PRODUCT_NOT_CONFIGURABLE" // no complete assignment exists
	ConfigUnknownPart            = "CONFIG_UNKNOWN_PART"             // part not in the product
	ConfigUnknownOption          = "CONFIG_UNKNOWN_OPTION"           // option not in the product
	ConfigOutOfStock             = "CONFIG_OUT_OF_STOCK"             // option currently unavailable
	ConfigIncompatibleSelection  = "CONFIG_INCOMPATIBLE_SELECTION"   // option conflicts with the selection
	ConfigNotFullyConfigured     = "CONFIG_NOT_FULLY_CONFIGURED"     // required parts still unselected
	ConfigSessionClosed          = "CONFIG_SESSION_CLOSED"           // order already finalized
	ConfigInvalidRule            = "CONFIG_INVALID_RULE"             // catalog rule failed validation

	// ==================== Orders (ORDER_) ====================
	OrderNotFound     = "ORDER_NOT_FOUND"
	OrderInvalidToken = "ORDER_INVALID_TOKEN" // session token mismatch

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
