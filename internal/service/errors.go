package service

import "errors"

var (
	// ErrValidation wraps every payload or referential-integrity failure. A
	// request failing validation leaves the bill untouched.
	ErrValidation = errors.New("validation failed")

	ErrBillNotFound          = errors.New("bill not found")
	ErrUnknownReference      = errors.New("reference does not resolve to an entity of the bill")
	ErrUnknownEntity         = errors.New("remote id does not belong to the bill")
	ErrItemParentNotItemized = errors.New("items can only belong to an itemized expense")
	ErrMemberAlreadyClaimed  = errors.New("user already claimed a member of this bill")

	ErrShareCodeExhausted = errors.New("could not allocate a unique share code")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// Client-side errors.
var (
	ErrSyncFailed      = errors.New("sync failed")
	ErrBillNotSyncable = errors.New("bill is in error state, retry it explicitly")
	ErrNotInErrorState = errors.New("bill is not in error state")
	ErrBillNotShared   = errors.New("bill has no remote id yet")
	ErrEmptyResponse   = errors.New("server returned an empty response")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrIntegrityCheckFailed    = errors.New("request body failed the integrity check")
)
