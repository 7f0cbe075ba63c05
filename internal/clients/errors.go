package clients

import "github.com/wolfman30/clinic-booking/internal/apperr"

var (
	ErrInvalidName  = apperr.New(apperr.KindValidation, "invalid_name", "name is required")
	ErrInvalidEmail = apperr.New(apperr.KindValidation, "invalid_email", "a valid email is required")

	ErrLegalIDLength   = apperr.New(apperr.KindValidation, "invalid_legal_id", "legal id must have 11 digits")
	ErrLegalIDRepeated = apperr.New(apperr.KindValidation, "invalid_legal_id_repeated", "legal id is invalid")
	ErrLegalIDChecksum = apperr.New(apperr.KindValidation, "invalid_legal_id_checksum", "legal id is invalid")

	// ErrDuplicate is returned when the legal id or email is already registered
	ErrDuplicate = apperr.New(apperr.KindConflict, "client_already_registered", "a client with this legal id or email already exists")

	// ErrNotFound is returned when a client is not found
	ErrNotFound = apperr.New(apperr.KindNotFound, "client_not_found", "client not found")
)
