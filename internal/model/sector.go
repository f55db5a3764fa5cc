package model

// Sector is the closed set of sector names used by the data provider.
type Sector string

const (
	SectorBasicMaterials        Sector = "Basic Materials"
	SectorCommunicationServices Sector = "Communication Services"
	SectorConsumerCyclical      Sector = "Consumer Cyclical"
	SectorConsumerDefensive     Sector = "Consumer Defensive"
	SectorEnergy                Sector = "Energy"
	SectorFinancialServices     Sector = "Financial Services"
	SectorHealthcare            Sector = "Healthcare"
	SectorIndustrials           Sector = "Industrials"
	SectorRealEstate            Sector = "Real Estate"
	SectorTechnology            Sector = "Technology"
	SectorUtilities             Sector = "Utilities"
	SectorEtc                   Sector = "Etc"
)

func Sectors() []Sector {
	return []Sector{
		SectorBasicMaterials,
		SectorCommunicationServices,
		SectorConsumerCyclical,
		SectorConsumerDefensive,
		SectorEnergy,
		SectorFinancialServices,
		SectorHealthcare,
		SectorIndustrials,
		SectorRealEstate,
		SectorTechnology,
		SectorUtilities,
	}
}

// SectorFromValue maps a provider sector string onto the enumeration,
// falling back to SectorEtc for anything unknown.
func SectorFromValue(v string) Sector {
	for _, s := range Sectors() {
		if string(s) == v {
			return s
		}
	}
	return SectorEtc
}

func (s Sector) Name() string {
	return string(s)
}

type Exchange string

const (
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangeAMEX   Exchange = "AMEX"
)

func Exchanges() []Exchange {
	return []Exchange{ExchangeNYSE, ExchangeNASDAQ, ExchangeAMEX}
}
