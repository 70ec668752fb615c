package services

import "errors"

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer with this mobile number already exists")
	ErrInvalidPhone      = errors.New("invalid phone number format")

	ErrServiceNotFound  = errors.New("service not found")
	ErrDuplicateService = errors.New("service with this name already exists")
	ErrInvalidService   = errors.New("invalid service")

	ErrOrderNotFound   = errors.New("order not found")
	ErrInvalidStatus   = errors.New("invalid order status")
	ErrCustomerMissing = errors.New("customer id or customer details required")

	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user with this email or mobile already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrInvalidDocumentType = errors.New("invalid document type")
)

var ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")
