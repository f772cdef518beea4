package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateResponse(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<TasasInteres>
  <TasaReferencia>
    <Fecha>2026-08-01</Fecha>
    <Tasa>6.53</Tasa>
  </TasaReferencia>
</TasasInteres>`)

	rate, err := parseRateResponse(body)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("6.53")))
}

func TestParseRateResponseMissingRate(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?><TasasInteres></TasasInteres>`)

	_, err := parseRateResponse(body)
	assert.Error(t, err)
}

func TestParseRateResponseInvalidXML(t *testing.T) {
	_, err := parseRateResponse([]byte("{not xml}"))
	assert.Error(t, err)
}
