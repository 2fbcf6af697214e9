package ledger_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/ledger"
)

const duplicateFault = `{"Fault":{"Error":[{"Message":"Duplicate Name Exists Error","Detail":"The name supplied already exists. : Id=42","code":"6240","element":""}],"type":"ValidationFault"},"time":"2024-01-01T00:00:00.000-08:00"}`

func TestClassifyResponse_2xxSinFault(t *testing.T) {
	assert.NoError(t, ledger.ClassifyResponse(http.StatusOK, []byte(`{"Customer":{"Id":"1"}}`)))
	assert.NoError(t, ledger.ClassifyResponse(http.StatusOK, nil))
}

func TestClassifyResponse_NombreDuplicado(t *testing.T) {
	err := ledger.ClassifyResponse(http.StatusBadRequest, []byte(duplicateFault))
	require.Error(t, err)

	var dup *domledger.DuplicateNameError
	require.True(t, errors.As(err, &dup), "debe clasificarse como DuplicateNameError")
	assert.Contains(t, dup.Message, "already exists")
}

func TestClassifyResponse_OtroErrorDeValidacion(t *testing.T) {
	body := `{"Fault":{"Error":[{"Message":"Stale Object Error","Detail":"You and someone else edited","code":"5010"}],"type":"ValidationFault"}}`
	err := ledger.ClassifyResponse(http.StatusBadRequest, []byte(body))

	var apiErr *domledger.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, domledger.CodeStaleObject, apiErr.Code)
	assert.False(t, domledger.IsDuplicateName(err), "mismo status 400 pero no es duplicado")
}

func TestClassifyResponse_FaultEnMinusculas(t *testing.T) {
	body := `{"fault":{"error":[{"message":"message=AuthenticationFailed","detail":"Token expired","code":"3200"}],"type":"AUTHENTICATION"}}`
	err := ledger.ClassifyResponse(http.StatusUnauthorized, []byte(body))

	var apiErr *domledger.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "3200", apiErr.Code)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClassifyResponse_ObjetoNoEncontrado(t *testing.T) {
	body := `{"Fault":{"Error":[{"Message":"Object Not Found","Detail":"Object Not Found : Something you're trying to use has been made inactive or deleted.","code":"610"}],"type":"ValidationFault"}}`
	err := ledger.ClassifyResponse(http.StatusBadRequest, []byte(body))
	assert.ErrorIs(t, err, domledger.ErrRemoteNotFound)
}

func TestClassifyResponse_CuerpoNoJSON(t *testing.T) {
	err := ledger.ClassifyResponse(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	var apiErr *domledger.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "bad gateway")
}

func TestClassifyResponse_200ConFault(t *testing.T) {
	err := ledger.ClassifyResponse(http.StatusOK, []byte(duplicateFault))
	assert.True(t, domledger.IsDuplicateName(err))
}
