package pipeline

// noModelError signals an inference call on a pipeline with no model
// runtime attached.
type noModelError struct{}

func (noModelError) Error() string { return "there is no model" }

// ErrNoModel constructs a noModelError.
func ErrNoModel() error { return noModelError{} }

// IsNoModel reports whether err indicates a missing model runtime.
func IsNoModel(err error) bool {
	_, ok := err.(noModelError)
	return ok
}

// wrongModelError signals that the attached runtime is not of the kind the
// operation needs (e.g., no introspection support, or not trainable).
type wrongModelError struct{ msg string }

func (e wrongModelError) Error() string { return "wrong class of model: " + e.msg }

// ErrWrongModel constructs a wrongModelError.
func ErrWrongModel(msg string) error { return wrongModelError{msg: msg} }

// IsWrongModel reports whether err indicates an unsuitable model kind.
func IsWrongModel(err error) bool {
	_, ok := err.(wrongModelError)
	return ok
}
