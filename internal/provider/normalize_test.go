package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLogsPayload_LowercaseContainer(t *testing.T) {
	body := []byte(`{
		"logs": [
			{"id": "src-1", "heartRate": 72, "bloodPressure": "120/80", "recordedAt": "2026-03-14T08:00:00Z"}
		]
	}`)

	entries, err := normalizeLogsPayload(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "src-1", entries[0].SourceID)
	assert.Equal(t, "72", entries[0].HeartRate)
	assert.Equal(t, "120/80", entries[0].BloodPressure)
	assert.Equal(t, 2026, entries[0].RecordedAt.Year())
}

func TestNormalizeLogsPayload_PascalContainerAndFields(t *testing.T) {
	body := []byte(`{
		"Logs": [
			{"Id": "src-2", "HeartRate": "88", "SleepDuration": 7.5, "BloodOxygenLevel": 98}
		]
	}`)

	entries, err := normalizeLogsPayload(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "src-2", entries[0].SourceID)
	assert.Equal(t, "88", entries[0].HeartRate)
	assert.Equal(t, "7.5", entries[0].SleepDuration)
	assert.Equal(t, "98", entries[0].BloodOxygen)
}

func TestNormalizeLogsPayload_SnakeCaseFields(t *testing.T) {
	body := []byte(`{
		"logs": [
			{"source_id": "src-3", "heart_rate": 65, "blood_pressure": "118/76"}
		]
	}`)

	entries, err := normalizeLogsPayload(body)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "src-3", entries[0].SourceID)
	assert.Equal(t, "118/76", entries[0].BloodPressure)
}

func TestNormalizeLogsPayload_MissingContainer(t *testing.T) {
	_, err := normalizeLogsPayload([]byte(`{"entries": []}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no logs field")
}

func TestNormalizeLogsPayload_EntryWithoutID(t *testing.T) {
	_, err := normalizeLogsPayload([]byte(`{"logs": [{"heartRate": 72}]}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestNormalizeLogsPayload_MalformedTimestamp(t *testing.T) {
	_, err := normalizeLogsPayload([]byte(`{"logs": [{"id": "x", "recordedAt": "yesterday"}]}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
}
