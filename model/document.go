// Package model defines the document representation shared by the index
// engine and its HTTP front-end.
package model

import "strconv"

// Document is a flexible map representing one decoded JSON document. Field
// access is by string key; which keys are meaningful (identifier,
// searchable, displayed) is determined by the owning index's schema, not by
// this type.
type Document map[string]interface{}

// Identifier returns the document's identifier field value, given the
// schema's configured identifier attribute name. The value is returned as
// its string form since the update queue and ComputeDocumentID both key
// off a string representation of whatever scalar the user supplied.
func (d Document) Identifier(identifierField string) (string, bool) {
	v, ok := d[identifierField]
	if !ok || v == nil {
		return "", false
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return "", false
		}
		return x, true
	case float64:
		return formatFloat(x), true
	default:
		return "", false
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
