package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysOfWeek_Contains(t *testing.T) {
	days := DaysOfWeek{1, 3, 5}

	assert.True(t, days.Contains(3))
	assert.False(t, days.Contains(0))
	assert.False(t, DaysOfWeek(nil).Contains(3))
}

func TestDaysOfWeek_Value(t *testing.T) {
	days := DaysOfWeek{1, 3, 5}

	value, err := days.Value()

	require.NoError(t, err)
	assert.Equal(t, "{1,3,5}", value)
}

func TestDaysOfWeek_Value_Nil(t *testing.T) {
	value, err := DaysOfWeek(nil).Value()

	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestDaysOfWeek_Value_Empty(t *testing.T) {
	value, err := DaysOfWeek{}.Value()

	require.NoError(t, err)
	assert.Equal(t, "{}", value)
}

func TestDaysOfWeek_Scan(t *testing.T) {
	tests := []struct {
		name     string
		src      interface{}
		expected DaysOfWeek
	}{
		{"строка", "{1,3,5}", DaysOfWeek{1, 3, 5}},
		{"байты", []byte("{0,6}"), DaysOfWeek{0, 6}},
		{"пустой массив", "{}", DaysOfWeek{}},
		{"NULL", nil, nil},
		{"пробелы между элементами", "{1, 2, 3}", DaysOfWeek{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var days DaysOfWeek
			err := days.Scan(tt.src)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestDaysOfWeek_Scan_InvalidElement(t *testing.T) {
	var days DaysOfWeek
	err := days.Scan("{1,abc}")

	assert.Error(t, err)
}

func TestDaysOfWeek_Scan_UnsupportedType(t *testing.T) {
	var days DaysOfWeek
	err := days.Scan(42)

	assert.Error(t, err)
}
