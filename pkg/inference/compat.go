package inference

import (
	"strings"

	"github.com/ekaya-inc/ekaya-ingest/pkg/models"
)

// Field type families used by TypeCompatibilityScore.
const (
	familyText     = "text"
	familyEmail    = "email"
	familyPhone    = "phone"
	familyUUID     = "uuid"
	familyURL      = "url"
	familyNumeric  = "numeric"
	familyCurrency = "currency"
	familyDate     = "date"
	familyDatetime = "datetime"
	familyBoolean  = "boolean"
)

var fieldTypeFamilies = map[string]string{
	"string": familyText, "text": familyText, "varchar": familyText, "char": familyText,
	"character varying": familyText, "character": familyText, "citext": familyText,
	"enum": familyText, "name": familyText, "address": familyText, "longtext": familyText,

	"email": familyEmail,

	"phone": familyPhone, "tel": familyPhone, "telephone": familyPhone,

	"uuid": familyUUID, "id": familyUUID, "guid": familyUUID, "uniqueidentifier": familyUUID,

	"url": familyURL, "uri": familyURL, "link": familyURL,

	"number": familyNumeric, "numeric": familyNumeric, "integer": familyNumeric, "int": familyNumeric,
	"bigint": familyNumeric, "smallint": familyNumeric, "decimal": familyNumeric, "float": familyNumeric,
	"double": familyNumeric, "double precision": familyNumeric, "real": familyNumeric,
	"int2": familyNumeric, "int4": familyNumeric, "int8": familyNumeric,

	"currency": familyCurrency, "money": familyCurrency, "amount": familyCurrency,

	"date": familyDate,

	"datetime": familyDatetime, "timestamp": familyDatetime, "timestamptz": familyDatetime,
	"timestamp with time zone": familyDatetime, "timestamp without time zone": familyDatetime,
	"time": familyDatetime,

	"boolean": familyBoolean, "bool": familyBoolean, "bit": familyBoolean,
}

var compatibility = map[models.InferredType]map[string]float64{
	models.InferredTypeEmail: {
		familyEmail: 1.0, familyText: 0.7, familyURL: 0.2,
	},
	models.InferredTypePhone: {
		familyPhone: 1.0, familyText: 0.7, familyNumeric: 0.3,
	},
	models.InferredTypeUUID: {
		familyUUID: 1.0, familyText: 0.7,
	},
	models.InferredTypeURL: {
		familyURL: 1.0, familyText: 0.7,
	},
	models.InferredTypeDate: {
		familyDate: 1.0, familyDatetime: 0.85, familyText: 0.5,
	},
	models.InferredTypeDatetime: {
		familyDatetime: 1.0, familyDate: 0.8, familyText: 0.5,
	},
	models.InferredTypeCurrency: {
		familyCurrency: 1.0, familyNumeric: 0.9, familyText: 0.4,
	},
	models.InferredTypeNumber: {
		familyNumeric: 1.0, familyCurrency: 0.9, familyText: 0.4,
		familyUUID: 0.3, familyPhone: 0.3, familyBoolean: 0.3,
	},
	models.InferredTypeBoolean: {
		familyBoolean: 1.0, familyText: 0.5, familyNumeric: 0.3,
	},
	models.InferredTypeString: {
		familyText: 0.9, familyEmail: 0.3, familyPhone: 0.3, familyURL: 0.3, familyUUID: 0.3,
		familyDate: 0.25, familyDatetime: 0.25, familyBoolean: 0.25,
		familyNumeric: 0.2, familyCurrency: 0.2,
	},
}

const (
	unknownFieldTypeScore = 0.5
	incompatibleScore     = 0.1
)

// TypeCompatibilityScore rates how well values of an inferred type fit a
// schema field type, in [0, 1]. Unknown field types score a neutral 0.5.
func TypeCompatibilityScore(inferred models.InferredType, fieldType string) float64 {
	family := FieldTypeFamily(fieldType)
	if family == "" {
		return unknownFieldTypeScore
	}
	if score, ok := compatibility[inferred][family]; ok {
		return score
	}
	return incompatibleScore
}

// FieldTypeFamily maps a declared field type such as "varchar(255)" or
// "TIMESTAMPTZ" onto its family, or "" when the type is not recognized.
func FieldTypeFamily(fieldType string) string {
	t := strings.ToLower(strings.TrimSpace(fieldType))
	if idx := strings.Index(t, "("); idx != -1 {
		t = strings.TrimSpace(t[:idx])
	}
	return fieldTypeFamilies[t]
}
