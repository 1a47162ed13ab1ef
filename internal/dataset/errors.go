package dataset

// notTabularError signals that a downloaded dataset could not be coerced
// into the flat tabular form the preprocessors expect.
type notTabularError struct{ msg string }

func (e notTabularError) Error() string { return "dataset is not tabular: " + e.msg }

// ErrNotTabular constructs a notTabularError.
func ErrNotTabular(msg string) error { return notTabularError{msg: msg} }

// IsNotTabular reports whether err indicates a non-tabular download.
func IsNotTabular(err error) bool {
	_, ok := err.(notTabularError)
	return ok
}
