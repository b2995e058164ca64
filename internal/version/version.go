// Package version exposes the build version injected at link time.
package version

// value is overridden via -ldflags "-X .../internal/version.value=vX.Y.Z".
var value = "v0.1.0"

// Value returns the build version.
func Value() string {
	if value == "" {
		return "v0.0.0-dev"
	}
	return value
}
