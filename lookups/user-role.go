package lookups

// Symbols of legal values
const (
	URuser = iota
	URadmin
)

// UserRole returns a "generic" string for a given value
func UserRole(value int32) string {

	var str = ""

	switch {
	case value == URuser:
		str = "user"
	case value == URadmin:
		str = "admin"
	}

	return str
}
