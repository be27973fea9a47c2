package scorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	minScore = 0
	maxScore = 100
)

// parsePayload decode scorer body into Result. The body is either an object or a
// one-element array wrapping it (workflow engines tend to answer like that).
// Missing, non-numeric or out of range score is an error, never clamped.
func parsePayload(raw []byte) (*Result, error) {
	cleaned := extractJSON(raw)
	if len(cleaned) == 0 {
		return nil, scorerError("scorer returned empty body", nil)
	}

	var data map[string]any
	if cleaned[0] == '[' {
		var list []map[string]any
		if err := json.Unmarshal(cleaned, &list); err != nil {
			return nil, scorerError("failed to decode scorer response", err)
		}
		if len(list) != 1 {
			return nil, scorerError(fmt.Sprintf("scorer returned %d results, expected 1", len(list)), nil)
		}
		data = list[0]
	} else if err := json.Unmarshal(cleaned, &data); err != nil {
		return nil, scorerError("failed to decode scorer response", err)
	}

	rawScore, ok := data["score"]
	if !ok || rawScore == nil {
		return nil, scorerError("scorer response has no score", nil)
	}
	score, err := coerceScore(rawScore)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Score:         score,
		Strengths:     coerceList(data["key_strengths"]),
		MissingSkills: coerceList(data["missing_skills"]),
		Suggestions:   coerceList(data["suggestions"]),
	}
	if summary, ok := data["summary"]; ok && summary != nil {
		s := coerceString(summary)
		res.Summary = &s
	}
	return res, nil
}

// coerceScore accept json number or numeric string, fractions are truncated
func coerceScore(v any) (int, error) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, scorerError(fmt.Sprintf("scorer returned non-numeric score %q", val), err)
		}
		f = parsed
	default:
		return 0, scorerError(fmt.Sprintf("scorer returned score of unexpected type %T", v), nil)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, scorerError("scorer returned non-finite score", nil)
	}
	score := int(f)
	if f < minScore || f > maxScore {
		return 0, scorerError(fmt.Sprintf("scorer returned score %v outside %d-%d", f, minScore, maxScore), nil)
	}
	return score, nil
}

func coerceList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, coerceString(item))
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	default:
		return []string{coerceString(val)}
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func extractJSON(raw []byte) []byte {
	s := bytes.TrimSpace(raw)
	if bytes.HasPrefix(s, []byte("```")) {
		s = bytes.TrimPrefix(s, []byte("```json"))
		s = bytes.TrimPrefix(s, []byte("```"))
		s = bytes.TrimSpace(s)
		if idx := bytes.LastIndex(s, []byte("```")); idx != -1 {
			s = s[:idx]
		}
	}
	return bytes.TrimSpace(s)
}
