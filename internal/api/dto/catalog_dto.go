package dto

import (
	"time"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// AddBusPresetRequest payload.
type AddBusPresetRequest struct {
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
}

// Preset converts the request into the domain catalog entry.
func (r AddBusPresetRequest) Preset() *domain.BusPreset {
	return &domain.BusPreset{
		BusNumber:                   r.BusNumber,
		FleetNumber:                 r.FleetNumber,
		ChassisNumber:               r.ChassisNumber,
		RegistrationNumber:          r.RegistrationNumber,
		Model:                       r.Model,
		Manufacturer:                r.Manufacturer,
		Year:                        r.Year,
		EngineServiceInterval:       r.EngineServiceInterval,
		TyreServiceInterval:         r.TyreServiceInterval,
		ACServiceInterval:           r.ACServiceInterval,
		TransmissionServiceInterval: r.TransmissionServiceInterval,
		BrakePadServiceInterval:     r.BrakePadServiceInterval,
	}
}

// AddVendorRequest payload.
type AddVendorRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

// Vendor converts the request into the domain entity.
func (r AddVendorRequest) Vendor() *domain.Vendor {
	return &domain.Vendor{
		Name:          r.Name,
		Email:         r.Email,
		ContactPerson: r.ContactPerson,
		Phone:         r.Phone,
	}
}

// VendorResponse shape.
type VendorResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromVendor maps the domain entity.
func FromVendor(v *domain.Vendor) VendorResponse {
	return VendorResponse{
		ID:            v.ID,
		Name:          v.Name,
		Email:         v.Email,
		ContactPerson: v.ContactPerson,
		Phone:         v.Phone,
		CreatedAt:     v.CreatedAt,
	}
}
