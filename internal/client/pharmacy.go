package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"medibill/internal/pkg/httpclient"
)

// Medicine is the pharmacy service's view of one medicine.
type Medicine struct {
	MedicineID        uint   `json:"medicineId"`
	Name              string `json:"name"`
	Price             int64  `json:"price"`
	InsuranceDiscount int64  `json:"insuranceDiscount"`
}

// PharmacyClient reads medicine pricing from the pharmacy record service.
// Billing only consumes it when pricing MEDICINE line items.
type PharmacyClient struct {
	client *httpclient.Client
}

func NewPharmacyClient(baseURL string, timeout time.Duration) *PharmacyClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PharmacyClient{
		client: httpclient.New().
			WithTimeout(timeout).
			WithBaseURL(strings.TrimRight(baseURL, "/")),
	}
}

// GetMedicine fetches one medicine by id.
func (c *PharmacyClient) GetMedicine(ctx context.Context, id uint) (*Medicine, error) {
	resp, err := c.client.Get(ctx, fmt.Sprintf("/pharmacy/medicines/%d", id))
	if err != nil {
		return nil, fmt.Errorf("pharmacy get medicine %d failed: %w", id, err)
	}

	var medicine Medicine
	if err := json.Unmarshal(resp, &medicine); err != nil {
		return nil, fmt.Errorf("pharmacy parse error: %w", err)
	}
	if medicine.MedicineID == 0 {
		return nil, fmt.Errorf("pharmacy medicine %d not found", id)
	}
	return &medicine, nil
}
