package enums

import "fmt"

// ProductStatus controls catalog visibility and whether a product can be sold.
type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusHidden ProductStatus = "hidden"
)

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusHidden,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Toggled flips active and hidden.
func (s ProductStatus) Toggled() ProductStatus {
	if s == ProductStatusHidden {
		return ProductStatusActive
	}
	return ProductStatusHidden
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
