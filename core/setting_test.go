//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSettingSimulate struct {
	NQubits       int       `toml:"n_qubits"`
	Bloch         []float64 `toml:"bloch"`
	NMeasurements int64     `toml:"n_measurements"`
}

func TestRegisterSetting(t *testing.T) {
	ResetSetting()
	RegisterSetting("simulate", &testSettingSimulate{NQubits: 1})
	assert.Equal(t, 1, len(globalSetting.ComponentSetting))
}

func TestParseSetting(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		check   func(t *testing.T, s *Setting)
	}{
		{
			name: "empty",
			in:   "",
			check: func(t *testing.T, s *Setting) {
				assert.Empty(t, s.ComponentSetting)
			},
		},
		{
			name: "simulate component",
			in: heredoc.Doc(`
				[com.simulate]
				n_qubits = 1
				bloch = [0.5, 0.5, 0.0, 0.0]
				n_measurements = 100000
				`),
			check: func(t *testing.T, s *Setting) {
				com, ok := s.ComponentSetting["simulate"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, int64(1), com["n_qubits"])
				assert.Equal(t, int64(100000), com["n_measurements"])
			},
		},
		{
			name:    "malformed toml",
			in:      "[com.simulate\nn_qubits = 1",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetSetting()
			err := globalSetting.parseSetting(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.Nil(t, err)
			tt.check(t, globalSetting)
		})
	}
}

func TestGetComponentSettingDeepCopies(t *testing.T) {
	ResetSetting()
	RegisterSetting("simulate", map[string]interface{}{"n_qubits": int64(2)})

	got, ok := GetComponentSetting("simulate")
	require.True(t, ok)
	m, ok := got.(map[string]interface{})
	require.True(t, ok)
	m["n_qubits"] = int64(5)

	again, _ := GetComponentSetting("simulate")
	assert.Equal(t, int64(2), again.(map[string]interface{})["n_qubits"])
}

func TestGetComponentSettingMissing(t *testing.T) {
	ResetSetting()
	_, ok := GetComponentSetting("nope")
	assert.False(t, ok)
}
