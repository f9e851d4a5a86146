package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrNoJSONObject is returned when a response holds no '{' ... '}' span.
var ErrNoJSONObject = errors.New("no JSON object in response")

var codeFence = regexp.MustCompile("```(?:json|JSON)?")

// ExtractObject strips code fences and returns the span from the first '{' to
// the last '}' of raw.
func ExtractObject(raw string) (string, error) {
	s := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return s[start : end+1], nil
}

// RecoverJSON decodes a model response into T. The object span is decoded as
// strict JSON first, then after repair, then as Hjson.
func RecoverJSON[T any](raw string) (*T, error) {
	obj, err := ExtractObject(raw)
	if err != nil {
		return nil, err
	}

	var out T
	strictErr := json.Unmarshal([]byte(obj), &out)
	if strictErr == nil {
		return &out, nil
	}

	if repaired, err := jsonrepair.RepairJSON(obj); err == nil {
		var fixed T
		if err := json.Unmarshal([]byte(repaired), &fixed); err == nil {
			return &fixed, nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(obj), &loose); err == nil {
		if normalized, err := json.Marshal(loose); err == nil {
			var relaxed T
			if err := json.Unmarshal(normalized, &relaxed); err == nil {
				return &relaxed, nil
			}
		}
	}

	return nil, fmt.Errorf("decoding response: %w", strictErr)
}
