package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
)

func TestWriteServiceErrorStatusMapping(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: заем", apperr.ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: сумма", apperr.ErrValidation), http.StatusBadRequest},
		{"constraint", fmt.Errorf("%w: остаток", apperr.ErrConstraint), http.StatusConflict},
		{"forbidden", fmt.Errorf("%w: группа", apperr.ErrForbidden), http.StatusForbidden},
		{"storage", fmt.Errorf("%w: база", apperr.ErrStorage), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, logger, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
