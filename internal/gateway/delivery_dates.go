package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aasan/postgang/internal/domain"
)

// deliveryDatesResponse JSON document shared by the Bring API and local files
type deliveryDatesResponse struct {
	DeliveryDates *[]string `json:"delivery_dates"`
}

// decodeDeliveryDates parses a delivery_dates document into a set.
// Every failure is reported as KindMalformed.
func decodeDeliveryDates(data []byte) (domain.DeliveryDateSet, error) {
	var resp deliveryDatesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindMalformed,
			fmt.Errorf("delivery dates JSON could not be decoded: %w", err))
	}
	if resp.DeliveryDates == nil {
		return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindMalformed,
			errors.New("delivery_dates field is missing"))
	}

	set := domain.NewDeliveryDateSet()
	for _, raw := range *resp.DeliveryDates {
		date, err := domain.ParseDeliveryDate(raw)
		if err != nil {
			return domain.DeliveryDateSet{}, domain.NewSourceError(domain.KindMalformed, err)
		}
		set.Add(date)
	}
	return set, nil
}
