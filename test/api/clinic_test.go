package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClinicFlow(t *testing.T) {
	name := uniqueName("Test Clinic")

	createResp := makeRequest(http.MethodPost, "/clinics", map[string]interface{}{"name": name}, ownerToken)
	require.Equal(t, http.StatusCreated, createResp.Code, createResp.Message)
	clinicID := createResp.GetString("id")
	require.NotEmpty(t, clinicID)

	getResp := makeRequest(http.MethodGet, fmt.Sprintf("/clinics/%s", clinicID), nil, ownerToken)
	assert.True(t, getResp.IsSuccess())
	assert.Equal(t, name, getResp.GetString("name"))

	listResp := makeRequest(http.MethodGet, "/clinics", nil, ownerToken)
	require.True(t, listResp.IsSuccess())
	var found bool
	for _, c := range listResp.List() {
		if c["id"] == clinicID {
			found = true
		}
	}
	assert.True(t, found, "new clinic missing from member list")

	apptResp := makeRequest(http.MethodGet, fmt.Sprintf("/clinics/%s/appointments", clinicID), nil, ownerToken)
	assert.True(t, apptResp.IsSuccess())
	assert.Empty(t, apptResp.List())
}

func TestClinicIsolation(t *testing.T) {
	clinicID := createTestClinic(t)

	for _, path := range []string{
		fmt.Sprintf("/clinics/%s", clinicID),
		fmt.Sprintf("/clinics/%s/doctors", clinicID),
		fmt.Sprintf("/clinics/%s/patients", clinicID),
		fmt.Sprintf("/clinics/%s/appointments", clinicID),
	} {
		resp := makeRequest(http.MethodGet, path, nil, outsiderToken)
		assert.Equal(t, http.StatusForbidden, resp.Code, path)
	}

	resp := makeRequest(http.MethodPut, "/me/active-clinic", map[string]string{"clinic_id": clinicID}, outsiderToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestActiveClinic(t *testing.T) {
	clinicID := createTestClinic(t)

	resp := makeRequest(http.MethodPut, "/me/active-clinic", map[string]string{"clinic_id": clinicID}, ownerToken)
	require.True(t, resp.IsSuccess(), resp.Message)

	ctxResp := makeRequest(http.MethodGet, "/me/clinics", nil, ownerToken)
	require.True(t, ctxResp.IsSuccess())
	active, _ := ctxResp.Object()["active_clinic"].(map[string]interface{})
	require.NotNil(t, active)
	assert.Equal(t, clinicID, active["id"])
}

func TestUnauthenticated(t *testing.T) {
	resp := makeRequest(http.MethodGet, "/clinics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
