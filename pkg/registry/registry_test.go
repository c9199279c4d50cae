package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()
	assert.Equal(t, []string{
		"calculate-case-price",
		"record-case-pricing",
		"match-eligibility-programs",
		"run-pending-matching",
		"build-benefits-report",
	}, reg.TaskTypes())

	a, ok := reg.Find("run-pending-matching")
	require.True(t, ok)
	assert.Equal(t, "5m", a.Timeout)

	_, ok = reg.Find("email-send")
	assert.False(t, ok)
}

func TestLoadRegistry(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid",
			body: `{"version":"1","activities":[{"id":"a","taskType":"a","timeout":"10s"}]}`,
		},
		{
			name:    "duplicate task type",
			body:    `{"activities":[{"id":"a","taskType":"x"},{"id":"b","taskType":"x"}]}`,
			wantErr: "duplicate task type",
		},
		{
			name:    "missing task type",
			body:    `{"activities":[{"id":"a"}]}`,
			wantErr: "taskType are required",
		},
		{
			name:    "bad timeout",
			body:    `{"activities":[{"id":"a","taskType":"a","timeout":"soon"}]}`,
			wantErr: "timeout",
		},
		{
			name:    "unknown field",
			body:    `{"activities":[{"id":"a","taskType":"a","workflows":[]}]}`,
			wantErr: "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "registry.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))

			reg, err := LoadRegistry(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, reg.Activities, 1)
		})
	}
}
