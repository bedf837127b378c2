// Package hl7 implements the minimal HL7 v2 flattening used by the
// pipeline's HL7 processor and exposed to scripts as `hl7.parse`/
// `hl7.to_json`: segments split on CR, fields split on the pipe
// delimiter. Repeated segment names overwrite earlier ones — a known,
// documented limitation carried forward from the reference
// implementation rather than silently fixed, since channel definitions
// may depend on the existing (if surprising) behavior.
package hl7

import "strings"

// Parse splits raw HL7 content into a segment-name -> fields map.
// Segments are delimited by carriage return, fields by pipe. A repeated
// segment name overwrites the previous occurrence (last wins).
func Parse(content string) map[string][]string {
	segments := strings.Split(content, "\r")
	out := make(map[string][]string, len(segments))

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		fields := strings.Split(segment, "|")
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		out[name] = fields[1:]
	}

	return out
}
