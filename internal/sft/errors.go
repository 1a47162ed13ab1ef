package sft

// wrongModelError signals that the wrapped object is not a trainable model.
type wrongModelError struct{ msg string }

func (e wrongModelError) Error() string { return "wrong class of model: " + e.msg }

func errWrongModel(msg string) error { return wrongModelError{msg: msg} }

// IsWrongModel reports whether err indicates a non-trainable model.
func IsWrongModel(err error) bool {
	_, ok := err.(wrongModelError)
	return ok
}
