package hl7

import "encoding/json"

// ToJSON parses raw HL7 content and serializes the resulting segment map
// as JSON, using the same last-segment-wins semantics as Parse.
func ToJSON(content string) (string, error) {
	parsed := Parse(content)
	b, err := json.Marshal(parsed)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
