package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets. Status is
// only ever set by the lifecycle engine; completed is terminal, rejected is
// terminal for the approval branch.
type TicketStatus string

const (
	TicketStatusPending         TicketStatus = "pending"
	TicketStatusApproved        TicketStatus = "approved"
	TicketStatusRejected        TicketStatus = "rejected"
	TicketStatusAcknowledged    TicketStatus = "acknowledged"
	TicketStatusQuoted          TicketStatus = "quoted"
	TicketStatusQuoteApproved   TicketStatus = "quote_approved"
	TicketStatusQuoteRejected   TicketStatus = "quote_rejected"
	TicketStatusUnderService    TicketStatus = "under_service"
	TicketStatusRepairRequested TicketStatus = "repair_requested"
	TicketStatusInvoiced        TicketStatus = "invoiced"
	TicketStatusCompleted       TicketStatus = "completed"
)

// AllTicketStatuses lists every lifecycle state once, for table sweeps and
// input validation.
var AllTicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusApproved,
	TicketStatusRejected,
	TicketStatusAcknowledged,
	TicketStatusQuoted,
	TicketStatusQuoteApproved,
	TicketStatusQuoteRejected,
	TicketStatusUnderService,
	TicketStatusRepairRequested,
	TicketStatusInvoiced,
	TicketStatusCompleted,
}

// IsValid reports whether s is a known lifecycle state.
func (s TicketStatus) IsValid() bool {
	for _, candidate := range AllTicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// ServiceType classifies the work a ticket asks for.
type ServiceType string

const (
	ServiceTypeMinor  ServiceType = "minor"
	ServiceTypeMajor  ServiceType = "major"
	ServiceTypeRepair ServiceType = "repair"
	ServiceTypeOther  ServiceType = "other"
)

// TicketPriority is informational and has no workflow effect.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
)

// RepairCategory narrows repair tickets; required when ServiceType is repair.
type RepairCategory string

const (
	RepairCategoryElectrical         RepairCategory = "electrical"
	RepairCategoryMechanical         RepairCategory = "mechanical"
	RepairCategoryACRepair           RepairCategory = "ac_repair"
	RepairCategoryEngine             RepairCategory = "engine"
	RepairCategoryBody               RepairCategory = "body"
	RepairCategoryBatteryReplacement RepairCategory = "battery_replacement"
	RepairCategoryTyreReplacement    RepairCategory = "tyre_replacement"
)

// RequiresManualVendor reports whether the category mandates manual vendor
// selection instead of manufacturer auto-matching.
func (c RepairCategory) RequiresManualVendor() bool {
	return c == RepairCategoryBatteryReplacement || c == RepairCategoryTyreReplacement
}

// BusDetails is a point-in-time snapshot of the vehicle copied onto a ticket
// at creation. Later edits to the BusPreset catalog never touch it.
type BusDetails struct {
	BusNumber                   string `json:"bus_number"`
	FleetNumber                 string `json:"fleet_number,omitempty"`
	ChassisNumber               string `json:"chassis_number,omitempty"`
	RegistrationNumber          string `json:"registration_number,omitempty"`
	Route                       string `json:"route,omitempty"`
	Model                       string `json:"model"`
	Manufacturer                string `json:"manufacturer"`
	Year                        string `json:"year"`
	Issue                       string `json:"issue"`
	EngineServiceInterval       int    `json:"engine_service_interval,omitempty"`
	TyreServiceInterval         int    `json:"tyre_service_interval,omitempty"`
	ACServiceInterval           int    `json:"ac_service_interval,omitempty"`
	TransmissionServiceInterval int    `json:"transmission_service_interval,omitempty"`
	BrakePadServiceInterval     int    `json:"brake_pad_service_interval,omitempty"`
}

// QuotationStatus tracks supervisor review of a vendor quotation.
type QuotationStatus string

const (
	QuotationStatusPending  QuotationStatus = "pending"
	QuotationStatusApproved QuotationStatus = "approved"
	QuotationStatusRejected QuotationStatus = "rejected"
)

// Quotation is the vendor's proposed price and scope. It is mutated in place
// on review so the amount and description history survives.
type Quotation struct {
	VendorEmail    string          `json:"vendor_email"`
	Amount         float64         `json:"amount"`
	Description    string          `json:"description"`
	Status         QuotationStatus `json:"status"`
	ReviewedBy     string          `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	RejectedReason string          `json:"rejected_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RepairRequest is a vendor-initiated request for additional unplanned work.
// Entries are append-only and transition pending -> approved independently.
type RepairRequest struct {
	ID            string     `json:"id"`
	Description   string     `json:"description"`
	EstimatedCost float64    `json:"estimated_cost"`
	Approved      bool       `json:"approved"`
	ApprovedBy    string     `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Invoice is the vendor's billing record; set at most once per ticket.
type Invoice struct {
	ID          string     `json:"id"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// Ticket is the aggregate root for a maintenance work item. The engine mutates
// a clone and the repository swaps whole snapshots, so a failed operation
// never leaves a partially updated ticket behind.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	Status         TicketStatus
	ServiceType    ServiceType
	Priority       TicketPriority
	RepairCategory RepairCategory
	CreatedBy      string
	AssignedVendor string
	Bus            BusDetails
	Quotation      *Quotation
	RepairRequests []RepairRequest
	Invoice        *Invoice
	EstimatedCost  *float64
	FinalCost      *float64
	Notes          []string
	RejectedReason string
	ApprovedBy     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ApprovedAt     *time.Time
	AcknowledgedAt *time.Time
	UnderServiceAt *time.Time
	CompletedAt    *time.Time

	// Version supports optimistic concurrency in the ticket store.
	Version int64
}

// Clone returns a deep copy of the ticket. Lifecycle operations work on
// clones so store state stays untouched until the final snapshot swap.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Quotation != nil {
		q := *t.Quotation
		q.ReviewedAt = cloneTime(t.Quotation.ReviewedAt)
		clone.Quotation = &q
	}
	if t.Invoice != nil {
		inv := *t.Invoice
		inv.PaidAt = cloneTime(t.Invoice.PaidAt)
		clone.Invoice = &inv
	}
	if t.RepairRequests != nil {
		clone.RepairRequests = make([]RepairRequest, len(t.RepairRequests))
		for i, r := range t.RepairRequests {
			r.ApprovedAt = cloneTime(r.ApprovedAt)
			clone.RepairRequests[i] = r
		}
	}
	if t.Notes != nil {
		clone.Notes = append([]string(nil), t.Notes...)
	}
	clone.EstimatedCost = cloneFloat(t.EstimatedCost)
	clone.FinalCost = cloneFloat(t.FinalCost)
	clone.ApprovedAt = cloneTime(t.ApprovedAt)
	clone.AcknowledgedAt = cloneTime(t.AcknowledgedAt)
	clone.UnderServiceAt = cloneTime(t.UnderServiceAt)
	clone.CompletedAt = cloneTime(t.CompletedAt)
	return &clone
}

// RepairRequestByID finds a repair request entry on the ticket.
func (t *Ticket) RepairRequestByID(id string) *RepairRequest {
	for i := range t.RepairRequests {
		if t.RepairRequests[i].ID == id {
			return &t.RepairRequests[i]
		}
	}
	return nil
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
