package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/conduithq/conduit/core/message"
)

// Mapper copies values between JSON paths within the message content.
// Content must already be a JSON object; missing source paths are
// skipped rather than treated as an error, matching the reference
// implementation.
type Mapper struct {
	mappings []message.Mapping
}

func NewMapper(mappings []message.Mapping) *Mapper {
	return &Mapper{mappings: mappings}
}

var errMapperRequiresJSON = errors.New("mapper requires JSON input")

func (p *Mapper) Process(ctx context.Context, msg *message.Message) (bool, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(msg.Content), &doc); err != nil {
		return false, errMapperRequiresJSON
	}

	for _, m := range p.mappings {
		val, ok := getByPath(doc, m.Source)
		if !ok {
			continue
		}
		if err := setByPath(doc, m.Target, val); err != nil {
			return false, err
		}
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return false, err
	}
	msg.Content = string(out)
	return false, nil
}

// pathSegment is either a plain object key or a key plus an array index,
// e.g. "items[2]".
type pathSegment struct {
	key   string
	index int
	isArr bool
}

func parsePath(path string) []pathSegment {
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		if i := strings.IndexByte(part, '['); i >= 0 && strings.HasSuffix(part, "]") {
			key := part[:i]
			idxStr := part[i+1 : len(part)-1]
			idx, err := strconv.Atoi(idxStr)
			if err == nil {
				segments = append(segments, pathSegment{key: key, index: idx, isArr: true})
				continue
			}
		}
		segments = append(segments, pathSegment{key: part})
	}
	return segments
}

func getByPath(doc map[string]any, path string) (any, bool) {
	segments := parsePath(path)
	var cur any = doc

	for _, seg := range segments {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		val, ok := obj[seg.key]
		if !ok {
			return nil, false
		}
		if seg.isArr {
			arr, ok := val.([]any)
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
		} else {
			cur = val
		}
	}

	return cur, true
}

func setByPath(doc map[string]any, path string, value any) error {
	segments := parsePath(path)
	if len(segments) == 0 {
		return fmt.Errorf("empty target path")
	}

	cur := doc
	for i, seg := range segments {
		last := i == len(segments)-1

		if last && !seg.isArr {
			cur[seg.key] = value
			return nil
		}

		existing, ok := cur[seg.key]
		if !ok || existing == nil {
			if seg.isArr {
				return fmt.Errorf("cannot set array index on missing parent %q", seg.key)
			}
			next := make(map[string]any)
			cur[seg.key] = next
			if last {
				cur[seg.key] = value
				return nil
			}
			cur = next
			continue
		}

		if seg.isArr {
			arr, ok := existing.([]any)
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return fmt.Errorf("invalid array index at %q", seg.key)
			}
			if last {
				arr[seg.index] = value
				return nil
			}
			next, ok := arr[seg.index].(map[string]any)
			if !ok {
				return fmt.Errorf("parent at %q[%d] is not an object", seg.key, seg.index)
			}
			cur = next
			continue
		}

		next, ok := existing.(map[string]any)
		if !ok {
			return fmt.Errorf("parent at %q is not an object", seg.key)
		}
		cur = next
	}

	return nil
}
