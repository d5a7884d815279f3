package lookups

// since there are no joins in MongoDB, text descriptions of code values are fetched by the API

// Registry of Lookup/Code Types
const (
	LTuserRole = iota
	LTdocType
	LTnotiType
	LTcategory
)

// LookupType returns names of the available code types
func LookupType(lt int) string {

	var str = ""

	switch {
	case lt == LTuserRole:
		str = "user role"
	case lt == LTdocType:
		str = "document type"
	case lt == LTnotiType:
		str = "notification type"
	case lt == LTcategory:
		str = "book category"
	}

	return str
}
