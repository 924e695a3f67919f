// Package catalogfile loads an immutable rate-catalog snapshot from a JSON
// file. The snapshot bundles every externally maintained rate table the
// engine needs: tariff rules, marketplace fee schedules, and carrier
// profiles.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/resellkit/pricing/pkg/pricing"
)

// File is the on-disk catalog layout.
type File struct {
	Tariffs  []pricing.TariffRule     `json:"tariffs"`
	Fees     []pricing.FeeSchedule    `json:"fee_schedules"`
	Carriers []pricing.CarrierProfile `json:"carriers"`
}

// Load reads and validates a catalog snapshot.
func Load(path string) (*pricing.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	if len(f.Fees) == 0 {
		return nil, fmt.Errorf("catalog %s: no fee schedules", path)
	}
	for _, fs := range f.Fees {
		if fs.Tier == "" {
			return nil, fmt.Errorf("catalog %s: fee schedule without a tier", path)
		}
	}
	for _, t := range f.Tariffs {
		if t.HSCode == "" || t.OriginCountry == "" {
			return nil, fmt.Errorf("catalog %s: tariff rule missing hs_code or origin_country", path)
		}
	}

	return pricing.NewCatalog(f.Tariffs, f.Fees, f.Carriers), nil
}
