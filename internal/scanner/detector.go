package scanner

// CodeDetector is the camera-side capability the controller coordinates.
// The integration owning the camera feeds detected codes to
// Controller.CodeDetected; Pause and Resume gate whether the device keeps
// decoding. Implementations must tolerate redundant Pause/Resume calls.
type CodeDetector interface {
	Pause()
	Resume()
}

// NopDetector is a CodeDetector that does nothing. Useful when lookups are
// driven purely by manual search.
type NopDetector struct{}

func (NopDetector) Pause()  {}
func (NopDetector) Resume() {}
