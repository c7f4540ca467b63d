package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMedicine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pharmacy/medicines/7", r.URL.Path)
		fmt.Fprint(w, `{"medicineId":7,"name":"Paracetamol 500mg","price":30000,"insuranceDiscount":5000}`)
	}))
	defer server.Close()

	c := NewPharmacyClient(server.URL, 5*time.Second)
	medicine, err := c.GetMedicine(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), medicine.MedicineID)
	assert.Equal(t, int64(30000), medicine.Price)
	assert.Equal(t, int64(5000), medicine.InsuranceDiscount)
}

func TestGetMedicineNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := NewPharmacyClient(server.URL, 5*time.Second)
	_, err := c.GetMedicine(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
