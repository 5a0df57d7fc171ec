package models

// CardFields is the fixed card schema, in prompt order.
var CardFields = []string{
	"year",
	"set",
	"cardNumber",
	"title",
	"playerFirstName",
	"playerLastName",
	"gradingCompany",
	"grade",
	"cert",
	"caption",
}

// BookFields is the fixed 23-field book schema. The first twelve are
// extracted directly from the title page, the next four are AI-enhanced, and
// the final seven receive defaults when the model leaves them blank.
var BookFields = []string{
	// direct extraction
	"title",
	"author",
	"illustrator",
	"coverDesigner",
	"publisherName",
	"placePublished",
	"yearPublished",
	"printISBN",
	"eISBN",
	"editionText",
	"printingText",
	"volume",
	// AI-enhanced
	"description",
	"genre",
	"category",
	"retailPrice",
	// defaulted
	"format",
	"condition",
	"quantity",
	"productType",
	"language",
	"jacketCondition",
	"signedText",
}

// BookFieldDefaults are applied at record creation for any blank defaulted
// field. Sellers rarely override these.
var BookFieldDefaults = map[string]string{
	"format":          "Hardcover",
	"condition":       "Acceptable",
	"quantity":        "1",
	"productType":     "book",
	"language":        "English",
	"jacketCondition": "dust jacket included",
	"signedText":      "not signed",
}

// ApplyBookDefaults fills blank defaulted fields in place.
func ApplyBookDefaults(fields map[string]string) {
	for name, def := range BookFieldDefaults {
		if fields[name] == "" {
			fields[name] = def
		}
	}
}

// FieldsForKind returns the schema field names for a record kind.
func FieldsForKind(kind RecordKind) []string {
	if kind == KindBook {
		return BookFields
	}
	return CardFields
}
