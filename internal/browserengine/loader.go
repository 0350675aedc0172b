package browserengine

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadViolations reads and schema-validates violations.json. A missing
// file is reported via os.IsNotExist on the returned error so callers
// can distinguish "not started yet" from "malformed data", per spec §7.
func loadViolations(path string) ([]RawViolation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("browserengine: parse %s: %w", path, err)
	}
	for i, item := range raw {
		if err := validateRaw(item); err != nil {
			return nil, fmt.Errorf("browserengine: violation %d failed schema validation: %w", i, err)
		}
	}

	var violations []RawViolation
	if err := json.Unmarshal(data, &violations); err != nil {
		return nil, fmt.Errorf("browserengine: decode %s: %w", path, err)
	}
	return violations, nil
}

// examDurationMinutes computes spec §4.4's exam-duration figure: the
// span between the earliest and latest violation timestamp, in minutes.
func examDurationMinutes(violations []RawViolation) float64 {
	if len(violations) == 0 {
		return 0
	}
	min, max := violations[0].Timestamp, violations[0].Timestamp
	for _, v := range violations {
		if v.Timestamp < min {
			min = v.Timestamp
		}
		if v.Timestamp > max {
			max = v.Timestamp
		}
	}
	return float64(max-min) / 1000.0 / 60.0
}
