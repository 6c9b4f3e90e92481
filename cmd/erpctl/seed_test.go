package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTramos_DiasYPorcentaje(t *testing.T) {
	tramos, err := parseTramos("30:50, 60:50")
	require.NoError(t, err)
	require.Len(t, tramos, 2)
	assert.Equal(t, 30, tramos[0].Days)
	assert.True(t, tramos[0].Percentage.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 60, tramos[1].Days)
}

func TestParseTramos_Invalidos(t *testing.T) {
	for _, raw := range []string{"30", "x:50", "30:abc"} {
		_, err := parseTramos(raw)
		assert.Error(t, err, raw)
	}
}
