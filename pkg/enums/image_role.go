package enums

import "fmt"

// ImageRole defines how a store image is displayed.
type ImageRole string

const (
	ImageRoleHero    ImageRole = "hero"
	ImageRoleGallery ImageRole = "gallery"
)

var validImageRoles = []ImageRole{
	ImageRoleHero,
	ImageRoleGallery,
}

// String returns the literal string for the role.
func (r ImageRole) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r ImageRole) IsValid() bool {
	for _, candidate := range validImageRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseImageRole converts raw input into an ImageRole.
func ParseImageRole(value string) (ImageRole, error) {
	for _, candidate := range validImageRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid image role %q", value)
}
