package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    YearMonth
		wantErr bool
	}{
		{input: "2024-03", want: YearMonth{Year: 2024, Month: time.March}},
		{input: "1999-12", want: YearMonth{Year: 1999, Month: time.December}},
		{input: "2024-3", wantErr: true},
		{input: "2024-13", wantErr: true},
		{input: "2024-00", wantErr: true},
		{input: "24-03", wantErr: true},
		{input: "2024-03-01", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseYearMonth(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidYearMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestYearMonth_Bounds(t *testing.T) {
	tests := []struct {
		ym   string
		days int
	}{
		{ym: "2024-02", days: 29},
		{ym: "2023-02", days: 28},
		{ym: "1900-02", days: 28},
		{ym: "2000-02", days: 29},
		{ym: "2024-04", days: 30},
		{ym: "2024-12", days: 31},
	}

	for _, tt := range tests {
		t.Run(tt.ym, func(t *testing.T) {
			ym := MustParseYearMonth(tt.ym)

			assert.Equal(t, 1, ym.FirstDay().Day())
			assert.Equal(t, tt.days, ym.LastDay().Day())
			assert.Equal(t, ym.Month, ym.LastDay().Month())
			assert.True(t, ym.End().After(ym.LastDay()))
			assert.Equal(t, ym.FirstDay().AddDate(0, 1, 0), ym.End().Add(time.Nanosecond))
		})
	}
}

func TestYearMonth_Navigation(t *testing.T) {
	assert.True(t, MustParseYearMonth("2024-03").Contains(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, MustParseYearMonth("2024-03").Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	months := MonthsOfYear(2024)
	require.Len(t, months, 12)
	assert.Equal(t, "2024-01", months[0].String())
	assert.Equal(t, "2024-12", months[11].String())
}

func TestYearMonth_JSON(t *testing.T) {
	payload := struct {
		Month YearMonth `json:"month"`
	}{Month: MustParseYearMonth("2024-03")}

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2024-03"}`, string(data))

	var decoded struct {
		Month YearMonth `json:"month"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload.Month, decoded.Month)

	assert.Error(t, json.Unmarshal([]byte(`{"month":"March"}`), &decoded))
}
