package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// normalizeLogsPayload maps a provider logs payload into canonical
// entries. The container key is `logs` or `Logs` depending on provider
// version, and entry fields vary between camelCase, PascalCase and
// snake_case. All casing fallbacks live here and nowhere else.
func normalizeLogsPayload(body []byte) ([]LogEntry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	list, ok := raw["logs"]
	if !ok {
		list, ok = raw["Logs"]
	}
	if !ok {
		return nil, fmt.Errorf("payload has no logs field")
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, fmt.Errorf("logs field is not an array: %w", err)
	}

	entries := make([]LogEntry, 0, len(items))
	for i, item := range items {
		sourceID := pickString(item, "id", "Id", "ID", "sourceId", "source_id")
		if sourceID == "" {
			return nil, fmt.Errorf("log entry %d has no id", i)
		}

		entry := LogEntry{
			SourceID:      sourceID,
			BloodPressure: pickString(item, "bloodPressure", "BloodPressure", "blood_pressure"),
			HeartRate:     pickNumeric(item, "heartRate", "HeartRate", "heart_rate"),
			BloodOxygen:   pickNumeric(item, "bloodOxygenLevel", "BloodOxygenLevel", "blood_oxygen_level"),
			SleepDuration: pickNumeric(item, "sleepDuration", "SleepDuration", "sleep_duration"),
		}

		if ts := pickString(item, "recordedAt", "RecordedAt", "recorded_at"); ts != "" {
			t, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				return nil, fmt.Errorf("log entry %d has malformed timestamp %q", i, ts)
			}
			entry.RecordedAt = t
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// pickString returns the first key in item that decodes to a non-empty string
func pickString(item map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := item[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// pickNumeric returns the first key in item that decodes to a number or a
// numeric string, rendered back as a plain string for the validators.
func pickNumeric(item map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		v, ok := item[key]
		if !ok {
			continue
		}

		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}

		var s string
		if err := json.Unmarshal(v, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
