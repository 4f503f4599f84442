package schema

import "strings"

// Friendly type names produced by FriendlyType and consumed by the transformer.
const (
	TypeString   = "string"
	TypeFloat    = "float"
	TypeDate     = "date"
	TypeInteger  = "integer"
	TypeBoolean  = "boolean"
	TypeBinary   = "binary"
	TypeTime     = "time"
	TypePicklist = "picklist"
)

// NavigationTypePrefix marks complex/navigation property types. Columns of
// these types always carry picklist values regardless of keyword rules.
const NavigationTypePrefix = "SFOData."

var edmTypeMap = map[string]string{
	"Edm.String":         TypeString,
	"Edm.Decimal":        TypeFloat,
	"Edm.Double":         TypeFloat,
	"Edm.Single":         TypeFloat,
	"Edm.DateTime":       TypeDate,
	"Edm.DateTimeOffset": TypeDate,
	"Edm.Int64":          TypeInteger,
	"Edm.Int32":          TypeInteger,
	"Edm.Int16":          TypeInteger,
	"Edm.Byte":           TypeInteger,
	"Edm.Boolean":        TypeBoolean,
	"Edm.Binary":         TypeBinary,
	"Edm.Time":           TypeTime,
}

// FriendlyType maps a raw Edm.* type string to its friendly name.
//
// Navigation types (SFOData.* prefix) map to "picklist". Any other unmapped
// raw type is passed through verbatim; this is a documented non-mapped case,
// not an error.
func FriendlyType(edmType string) string {
	if t, ok := edmTypeMap[edmType]; ok {
		return t
	}
	if strings.HasPrefix(edmType, NavigationTypePrefix) {
		return TypePicklist
	}
	return edmType
}
