package domain

import "time"

// BusPreset is a catalog record of a fleet vehicle's static attributes and
// service intervals, keyed uniquely by bus number. Presets only pre-fill
// BusDetails at ticket creation; existing tickets keep their snapshot.
type BusPreset struct {
	BusNumber                   string `json:"bus_number"`
	FleetNumber                 string `json:"fleet_number"`
	ChassisNumber               string `json:"chassis_number"`
	RegistrationNumber          string `json:"registration_number"`
	Model                       string `json:"model"`
	Manufacturer                string `json:"manufacturer"`
	Year                        string `json:"year"`
	EngineServiceInterval       int    `json:"engine_service_interval"`
	TyreServiceInterval         int    `json:"tyre_service_interval"`
	ACServiceInterval           int    `json:"ac_service_interval"`
	TransmissionServiceInterval int    `json:"transmission_service_interval"`
	BrakePadServiceInterval     int    `json:"brake_pad_service_interval"`

	CreatedAt time.Time `json:"created_at"`
}

// Details copies the preset into a BusDetails snapshot.
func (p BusPreset) Details() BusDetails {
	return BusDetails{
		BusNumber:                   p.BusNumber,
		FleetNumber:                 p.FleetNumber,
		ChassisNumber:               p.ChassisNumber,
		RegistrationNumber:          p.RegistrationNumber,
		Model:                       p.Model,
		Manufacturer:                p.Manufacturer,
		Year:                        p.Year,
		EngineServiceInterval:       p.EngineServiceInterval,
		TyreServiceInterval:         p.TyreServiceInterval,
		ACServiceInterval:           p.ACServiceInterval,
		TransmissionServiceInterval: p.TransmissionServiceInterval,
		BrakePadServiceInterval:     p.BrakePadServiceInterval,
	}
}
