package catalog

import (
	"fmt"
	"strings"
)

// InvalidScanError rejects a scanned value that is not a usable code.
type InvalidScanError struct {
	Value string
}

func (e *InvalidScanError) Error() string {
	return fmt.Sprintf("invalid scanned code: %q", e.Value)
}

// NormalizeScannedCode strips leading zeros and accepts only an all-digit
// remainder of at least four characters.
func NormalizeScannedCode(raw string) (string, error) {
	code := strings.TrimLeft(strings.TrimSpace(raw), "0")
	if len(code) < barcodeMinDigits || !isDigits(code) {
		return "", &InvalidScanError{Value: code}
	}
	return code, nil
}
