package model

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_ExactlyTenNamedFields(t *testing.T) {
	cols := DefaultRecord().Columns()
	require.Len(t, cols, 10)

	got := make([]string, 0, len(cols))
	for k := range cols {
		got = append(got, k)
	}
	want := FieldNames()
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestColumns_Types(t *testing.T) {
	rec := DefaultRecord()
	cols := rec.Columns()

	assert.IsType(t, "", cols[ColPostalCode])
	assert.Equal(t, "98109", cols[ColPostalCode])
	assert.IsType(t, 0, cols[ColModelYear])
	assert.IsType(t, 0, cols[ColElectricRange])
	assert.Equal(t, "Battery Electric Vehicle (BEV)", cols[ColEVType])
	assert.Equal(t, "Clean Alternative Fuel Vehicle Eligible", cols[ColCAFV])
}

func TestColumns_PostalCodeKeepsLeadingZeros(t *testing.T) {
	rec := DefaultRecord()
	rec.PostalCode = "02134"
	assert.Equal(t, "02134", rec.Columns()[ColPostalCode])
}

func TestCells_Order(t *testing.T) {
	cells := DefaultRecord().Cells()
	require.Len(t, cells, len(FieldNames()))
	for i, name := range FieldNames() {
		assert.Equal(t, name, cells[i].Name)
	}
	assert.Equal(t, "2021", cells[4].Value)
	assert.Equal(t, "260", cells[9].Value)
}

func TestEnumerations_Closed(t *testing.T) {
	assert.Len(t, EVTypes(), 2)
	assert.Len(t, CAFVEligibilities(), 3)
}

func TestParseEVType(t *testing.T) {
	tests := []struct {
		in      string
		want    EVType
		wantErr bool
	}{
		{in: "Battery Electric Vehicle (BEV)", want: EVTypeBEV},
		{in: "Plug-in Hybrid Electric Vehicle (PHEV)", want: EVTypePHEV},
		{in: "battery electric vehicle (bev)", wantErr: true},
		{in: "Fuel Cell Vehicle", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEVType(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownCategory))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCAFVEligibility(t *testing.T) {
	for _, c := range CAFVEligibilities() {
		got, err := ParseCAFVEligibility(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCAFVEligibility("Not eligible due to low battery range ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
