package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMAC(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase colon form",
			input:    "aa:bb:cc:dd:ee:ff",
			expected: "AA:BB:CC:DD:EE:FF",
		},
		{
			name:     "already canonical",
			input:    "01:23:45:67:89:AB",
			expected: "01:23:45:67:89:AB",
		},
		{
			name:     "dash separated",
			input:    "01-23-45-67-89-ab",
			expected: "01:23:45:67:89:AB",
		},
		{
			name:     "cisco dotted",
			input:    "0123.4567.89ab",
			expected: "01:23:45:67:89:AB",
		},
		{
			name:     "surrounding whitespace",
			input:    "  aa:bb:cc:dd:ee:ff ",
			expected: "AA:BB:CC:DD:EE:FF",
		},
		{
			name:     "not a mac is only upper-cased",
			input:    "chassis-foo",
			expected: "CHASSIS-FOO",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMAC(tt.input))
		})
	}
}

func TestNormalizeMACCaseInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeMAC("aA:bB:cC:dD:eE:fF"), NormalizeMAC("AA:bb:CC:dd:EE:ff"))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
	assert.Empty(t, SortedKeys(map[string]bool{}))
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "a.ini", expected: []string{"a.ini"}},
		{name: "spaces and blanks", input: " a.ini , ,b.ini,", expected: []string{"a.ini", "b.ini"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{".ini", ".conf"}, ".conf"))
	assert.False(t, Contains([]string{".ini"}, ".yaml"))
	assert.False(t, Contains(nil, ""))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "b", "c"))
	assert.Equal(t, "", FirstNonEmpty("", ""))
}

func TestLoggerDebugSuppressed(t *testing.T) {
	var out bytes.Buffer
	logger := NewLoggerTo(&out, &out, false)
	logger.Debug("hidden %d", 1)
	assert.Empty(t, out.String())

	logger = NewLoggerTo(&out, &out, true)
	logger.Debug("shown %d", 2)
	assert.Contains(t, out.String(), "shown 2")
}

func TestLoggerErrorWritesToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewLoggerTo(&out, &errOut, false)
	logger.Error("dispatch to %s failed", errors.New("boom"), "hostA")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "dispatch to hostA failed: boom")
}

func TestLoggerDryRun(t *testing.T) {
	var out bytes.Buffer
	logger := NewLoggerTo(&out, nil, false)
	logger.DryRun("create_vlan", "host %s", "hostA")
	assert.Contains(t, out.String(), "[DRY-RUN] create_vlan: host hostA")
}
