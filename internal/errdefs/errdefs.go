package errdefs

import "errors"

type ErrorType int

const (
	ErrTypeConfig ErrorType = iota
	ErrTypeSensor
	ErrTypeDispatch
	ErrTypeBus
	ErrTypeGeneric
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConfig:
		return "config"
	case ErrTypeSensor:
		return "sensor"
	case ErrTypeDispatch:
		return "dispatch"
	case ErrTypeBus:
		return "bus"
	default:
		return "generic"
	}
}

type CustomError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(errType ErrorType, message string) error {
	return &CustomError{
		Type:    errType,
		Message: message,
	}
}

// Wrap attaches a type and message to err. A nil err yields nil.
func Wrap(errType ErrorType, message string, err error) error {
	if err == nil {
		return nil
	}
	return &CustomError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether any error in err's chain is a CustomError of type t.
func IsType(err error, t ErrorType) bool {
	var ce *CustomError
	for err != nil {
		if !errors.As(err, &ce) {
			return false
		}
		if ce.Type == t {
			return true
		}
		err = ce.Err
	}
	return false
}

var (
	ErrDivideByZero  = NewCustomError(ErrTypeConfig, "divide must not be 0")
	ErrNameTaken     = NewCustomError(ErrTypeBus, "bus name already taken, is another autobrightd running?")
	ErrNoSessionBus  = NewCustomError(ErrTypeBus, "no session bus available")
	ErrNoConfigHome  = NewCustomError(ErrTypeConfig, "failed to find config directory, make sure XDG_CONFIG_HOME or HOME are set")
	ErrSensorMissing = NewCustomError(ErrTypeConfig, "sensor path is required")
)
