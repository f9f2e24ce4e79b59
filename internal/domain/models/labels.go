package models

import "sort"

// Canonical label tables. Sex uses the full-word labels; abbreviated
// variants from older data exports are rejected on purpose.
var sexCodes = map[string]int{
	"Hembra": 0,
	"Macho":  1,
}

var areaCodes = map[string]int{
	"Calidad":         1,
	"I. Respiratoria": 2,
	"S. esquelético":  3,
	"I. Intestinal":   4,
	"Coccidia":        5,
	"C. tóxico":       6,
	"C. metabólico":   7,
	"S. Inmunitario":  8,
}

// EncodeSex maps a sex label to its model code.
func EncodeSex(label string) (int, error) {
	code, ok := sexCodes[label]
	if !ok {
		return 0, &UnrecognizedCategoryError{Field: FieldSexo, Value: label, Row: -1, Valid: SexLabels()}
	}
	return code, nil
}

// EncodeArea maps a farm-area label to its model code.
func EncodeArea(label string) (int, error) {
	code, ok := areaCodes[label]
	if !ok {
		return 0, &UnrecognizedCategoryError{Field: FieldArea, Value: label, Row: -1, Valid: AreaLabels()}
	}
	return code, nil
}

// SexLabel is the reverse lookup of EncodeSex.
func SexLabel(code int) (string, bool) {
	return reverseLookup(sexCodes, code)
}

// AreaLabel is the reverse lookup of EncodeArea.
func AreaLabel(code int) (string, bool) {
	return reverseLookup(areaCodes, code)
}

// SexLabels returns the accepted sex labels in stable order.
func SexLabels() []string {
	return sortedKeys(sexCodes)
}

// AreaLabels returns the accepted farm-area labels in stable order.
func AreaLabels() []string {
	return sortedKeys(areaCodes)
}

func reverseLookup(table map[string]int, code int) (string, bool) {
	for label, c := range table {
		if c == code {
			return label, true
		}
	}
	return "", false
}

func sortedKeys(table map[string]int) []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
