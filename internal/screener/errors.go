package screener

import "errors"

// Field identifies a filter input for inline validation messages.
type Field int

const (
	FieldNone Field = iota
	FieldSector
	FieldIndustry
	FieldMinCap
	FieldMaxCap
	FieldPageSize
)

// Label returns the human name of the field.
func (f Field) Label() string {
	switch f {
	case FieldSector:
		return "sector"
	case FieldIndustry:
		return "industry"
	case FieldMinCap:
		return "minimum market cap"
	case FieldMaxCap:
		return "maximum market cap"
	case FieldPageSize:
		return "page size"
	default:
		return "filter"
	}
}

// ValidationError is a client-side rejection. It never reaches the network.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
