package cmd

import (
	"bytes"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/eventnotify/cmd/eventnotify/internal/display"
)

const topicsFile = `
topics:
  - name: scenario-status
    entity_id: SCENARIO_1
    operation: update
    attribute_name: status
  - name: all-jobs
    entity_type: job
  - name: every-creation
    operation: creation
`

const badTopicsFile = `
topics:
  - name: ok
    entity_type: task
  - name: job-submission
    entity_type: job
    operation: submission
`

const eventsFile = `
events:
  - entity_type: scenario
    entity_id: SCENARIO_1
    operation: update
    attribute_name: status
    attribute_value: done
  - entity_type: job
    entity_id: JOB_7
    operation: creation
  - entity_type: task
    operation: deletion
  - entity_type: cycle
    operation: submission
`

// executeCommand runs the root command against an in-memory filesystem.
func executeCommand(t *testing.T, files map[string]string, args ...string) (string, string, error) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	prev := appFs
	appFs = fs
	t.Cleanup(func() { appFs = prev })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "eventnotify v"+version+"\n", out)
}

func TestTopicValidateCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    error
		wantOutput []string
	}{
		{
			name:       "entity type derived from id",
			args:       []string{"--entity-type=", "--entity-id=SCENARIO_abc", "--operation=update", "--attribute-name=status"},
			wantOutput: []string{"✅", "SCENARIO/SCENARIO_abc/UPDATE/status", "Entity type:    SCENARIO"},
		},
		{
			name:       "all fields unset",
			args:       []string{"--entity-type=", "--entity-id=", "--operation=", "--attribute-name="},
			wantOutput: []string{"✅", "*/*/*/*"},
		},
		{
			name:       "attribute on creation",
			args:       []string{"--entity-type=", "--entity-id=", "--operation=creation", "--attribute-name=status"},
			wantErr:    errRejected,
			wantOutput: []string{"❌ Topic validation failed"},
		},
		{
			name:       "unknown entity type",
			args:       []string{"--entity-type=pipeline", "--entity-id=", "--operation=", "--attribute-name="},
			wantErr:    errRejected,
			wantOutput: []string{"❌", "pipeline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"topic", "validate", "--format=table"}, tt.args...)
			out, _, err := executeCommand(t, nil, args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			for _, want := range tt.wantOutput {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestTopicValidateCommand_JSON(t *testing.T) {
	out, _, err := executeCommand(t, nil, "topic", "validate", "--format=json",
		"--entity-type=job", "--entity-id=", "--operation=submission", "--attribute-name=")
	assert.ErrorIs(t, err, errRejected)

	var result display.TopicDisplay
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Valid)
	assert.Equal(t, "invalid_event_operation", result.ErrorType)
}

func TestTopicValidateCommand_BadFormat(t *testing.T) {
	_, _, err := executeCommand(t, nil, "topic", "validate", "--format=xml",
		"--entity-type=", "--entity-id=", "--operation=", "--attribute-name=")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errRejected)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestTopicLoadCommand(t *testing.T) {
	out, _, err := executeCommand(t, map[string]string{"/topics.yaml": topicsFile},
		"topic", "load", "/topics.yaml", "--format=table")
	require.NoError(t, err)
	assert.Contains(t, out, "scenario-status")
	assert.Contains(t, out, "JOB/*/*/*")
	assert.Contains(t, out, "3 topics, 0 rejected")

	out, _, err = executeCommand(t, map[string]string{"/bad.yaml": badTopicsFile},
		"topic", "load", "/bad.yaml", "--format=json")
	assert.ErrorIs(t, err, errRejected)

	var results []display.TopicDisplay
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.Equal(t, "job-submission", results[1].Name)

	_, _, err = executeCommand(t, nil, "topic", "load", "/missing.yaml", "--format=table")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errRejected)
}

func TestEntitiesListCommand(t *testing.T) {
	out, _, err := executeCommand(t, nil, "entities", "list", "--format=table")
	require.NoError(t, err)
	assert.Contains(t, out, "DATA_NODE")
	assert.Contains(t, out, "DATANODE_")

	out, _, err = executeCommand(t, nil, "entities", "list", "--format=json")
	require.NoError(t, err)

	var listing struct {
		EntityTypes []display.EntityTypeDisplay `json:"entity_types"`
		Operations  []display.OperationDisplay  `json:"operations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	require.Len(t, listing.EntityTypes, 7)
	require.Len(t, listing.Operations, 4)
	assert.Equal(t, display.EntityTypeDisplay{Name: "JOB", Prefix: "JOB_", Submittable: false}, listing.EntityTypes[5])
	assert.Equal(t, display.OperationDisplay{Name: "UPDATE", AcceptsAttributeName: true}, listing.Operations[1])
}

func TestSimulateCommand(t *testing.T) {
	files := map[string]string{"/topics.yaml": topicsFile, "/events.yaml": eventsFile}
	out, stderr, err := executeCommand(t, files,
		"simulate", "--topics=/topics.yaml", "--events=/events.yaml", "--wait=2s", "--format=json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Skipping event #4")

	var deliveries []display.DeliveryDisplay
	require.NoError(t, json.Unmarshal([]byte(out), &deliveries))
	assert.ElementsMatch(t, []display.DeliveryDisplay{
		{Registration: "all-jobs", Topic: "JOB/*/*/*", Event: "JOB CREATION JOB_7"},
		{Registration: "every-creation", Topic: "*/*/CREATION/*", Event: "JOB CREATION JOB_7"},
		{Registration: "scenario-status", Topic: "SCENARIO/SCENARIO_1/UPDATE/status", Event: "SCENARIO UPDATE SCENARIO_1.status"},
	}, deliveries)
}
