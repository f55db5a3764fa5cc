package analysis

import (
	"github.com/payout-hq/payout/internal/model"
)

// CalculateSectorRatios groups the given holdings by sector and computes
// each sector's share of the portfolio. Representation is counted per
// distinct stock, not weighted by share count. Sectors without any stock
// are omitted, so ratios over the result always sum to 1.
func CalculateSectorRatios(shares []model.StockShare) map[model.Sector]model.SectorInfo {
	res := make(map[model.Sector]model.SectorInfo)
	if len(shares) == 0 {
		return res
	}

	bySector := make(map[model.Sector][]model.StockShare)
	for _, share := range shares {
		bySector[share.Stock.Sector] = append(bySector[share.Stock.Sector], share)
	}

	total := len(shares)
	for sector, sectorShares := range bySector {
		res[sector] = model.SectorInfo{
			Ratio:       float64(len(sectorShares)) / float64(total),
			StockShares: sectorShares,
		}
	}

	return res
}
