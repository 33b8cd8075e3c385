package core

import "errors"

// Sentinel errors for every distinct failure branch. Callers wrap them with
// fmt.Errorf("%w: ...") to attach context; handlers map them to HTTP status
// codes with errors.Is.
var (
	ErrParseCmd = errors.New("cannot parse arguments")
	ErrHelp     = errors.New("")

	// Not found.
	ErrShopNotFound  = errors.New("shop not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")

	// Authorization.
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("access denied")

	// Validation.
	ErrValidation     = errors.New("invalid request data")
	ErrInvalidSlot    = errors.New("invalid delivery slot")
	ErrSlotExpired    = errors.New("selected delivery slot is no longer available")
	ErrMissingAddress = errors.New("delivery address is required for delivery orders")
	ErrInvalidReason  = errors.New("rejection reason must be at least 10 characters")

	// Business rules.
	ErrShopClosed           = errors.New("shop is closed")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrCrossShopItem        = errors.New("all items must belong to the same shop")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNotRejectable        = errors.New("only PLACED orders can be rejected")
	ErrDuplicateShopName    = errors.New("shop name already exists")
	ErrAdminAlreadyAssigned = errors.New("this user already manages a shop")
	ErrShopAlreadyHasAdmin  = errors.New("this shop already has an administrator assigned")
	ErrCannotModifySelf     = errors.New("cannot change your own role")
	ErrItemInActiveOrders   = errors.New("item is part of active orders")
	ErrDuplicateEmail       = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordlessAccount  = errors.New("account has no password, use the identity provider to sign in")

	// Store failures are fatal for the running operation and surface as 5xx.
	ErrStoreFailure = errors.New("record store failure")
)
