package circuit

import "errors"

var (
	// ErrBadPartitions is returned for a max_npartitions budget that is negative or 1.
	ErrBadPartitions = errors.New("circuit: max_npartitions must be 0 (unbounded) or >= 2")

	// ErrStructure reports a region graph or compiled structure that cannot be evaluated exactly.
	ErrStructure = errors.New("circuit: structural violation")

	// ErrShape reports inputs whose dimensions do not match the circuit or each other.
	ErrShape = errors.New("circuit: shape mismatch")

	// ErrDomain reports observations or weights outside their valid range.
	ErrDomain = errors.New("circuit: value outside domain")

	// ErrHyperparameter reports an invalid step size, pseudocount or flow memory.
	ErrHyperparameter = errors.New("circuit: invalid hyper-parameter")

	// ErrUnknownDevice is returned when a device name cannot be parsed.
	ErrUnknownDevice = errors.New("circuit: unknown device")

	// ErrDeviceUnavailable is returned when a device is known but not present.
	ErrDeviceUnavailable = errors.New("circuit: device unavailable")

	// ErrArtifact reports a persisted circuit that cannot be decoded or is inconsistent.
	ErrArtifact = errors.New("circuit: invalid artifact")
)
