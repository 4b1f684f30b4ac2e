package column

import "errors"

var (
	ErrTypeMismatch      = errors.New("column: literal cannot convert to target type")
	ErrOverflow          = errors.New("column: numeric value out of range for target type")
	ErrTextTooLong       = errors.New("column: text value exceeds 243 bytes")
	ErrNullConstraint    = errors.New("column: NULL not allowed for this column")
	ErrUnknownSerialCode = errors.New("column: unknown serial type code")
	ErrIncomparable      = errors.New("column: values are not of the same type")
)
