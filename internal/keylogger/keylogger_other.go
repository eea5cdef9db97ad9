//go:build !darwin

package keylogger

// CheckAccessibilityPermissions always reports false off macOS.
func CheckAccessibilityPermissions() bool {
	return false
}

// Start is unsupported off macOS.
func Start() (<-chan int, error) {
	return nil, ErrUnsupported
}

// Stop is a no-op off macOS.
func Stop() {}
