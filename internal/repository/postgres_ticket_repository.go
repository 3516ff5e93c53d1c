package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// postgresTicketRepository persists ticket snapshots in the tickets table.
// Scalar workflow fields live in columns; the attached documents (bus
// snapshot, quotation, invoice, repair requests, notes) are stored as jsonb.
type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates the postgres-backed ticket store.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, service_type, priority, repair_category,
       created_by, assigned_vendor, bus, quotation, invoice, repair_requests, notes,
       estimated_cost, final_cost, rejected_reason, approved_by,
       created_at, updated_at, approved_at, acknowledged_at, under_service_at, completed_at, version`

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	docs, err := marshalTicketDocs(ticket)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, title, description, status, service_type, priority, repair_category,
            created_by, assigned_vendor, bus, quotation, invoice, repair_requests, notes,
            estimated_cost, final_cost, rejected_reason, approved_by,
            approved_at, acknowledged_at, under_service_at, completed_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,1)
        RETURNING created_at, updated_at, version`
	err = r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.ServiceType,
		ticket.Priority,
		nullableString(string(ticket.RepairCategory)),
		ticket.CreatedBy,
		nullableString(ticket.AssignedVendor),
		docs.bus,
		docs.quotation,
		docs.invoice,
		docs.repairs,
		docs.notes,
		ticket.EstimatedCost,
		ticket.FinalCost,
		nullableString(ticket.RejectedReason),
		nullableString(ticket.ApprovedBy),
		ticket.ApprovedAt,
		ticket.AcknowledgedAt,
		ticket.UnderServiceAt,
		ticket.CompletedAt,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt, &ticket.Version)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *postgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	docs, err := marshalTicketDocs(ticket)
	if err != nil {
		return err
	}
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, service_type=$4, priority=$5,
            repair_category=$6, assigned_vendor=$7, bus=$8, quotation=$9, invoice=$10,
            repair_requests=$11, notes=$12, estimated_cost=$13, final_cost=$14,
            rejected_reason=$15, approved_by=$16, approved_at=$17, acknowledged_at=$18,
            under_service_at=$19, completed_at=$20, version=version+1, updated_at=NOW()
        WHERE id=$21 AND version=$22
        RETURNING updated_at, version`
	err = r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.ServiceType,
		ticket.Priority,
		nullableString(string(ticket.RepairCategory)),
		nullableString(ticket.AssignedVendor),
		docs.bus,
		docs.quotation,
		docs.invoice,
		docs.repairs,
		docs.notes,
		ticket.EstimatedCost,
		ticket.FinalCost,
		nullableString(ticket.RejectedReason),
		nullableString(ticket.ApprovedBy),
		ticket.ApprovedAt,
		ticket.AcknowledgedAt,
		ticket.UnderServiceAt,
		ticket.CompletedAt,
		ticket.ID,
		ticket.Version,
	).Scan(&ticket.UpdatedAt, &ticket.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		// Either the ticket is gone or another writer won the version race.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); checkErr == nil && exists {
			return ErrVersionConflict
		}
		return ErrNotFound
	}
	return err
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return ticket, err
}

func (r *postgresTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{})
}

func (r *postgresTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedVendor != nil {
		args = append(args, *filter.AssignedVendor)
		clauses = append(clauses, fmt.Sprintf("assigned_vendor=$%d", len(args)))
	}
	if filter.BusNumber != nil {
		args = append(args, *filter.BusNumber)
		clauses = append(clauses, fmt.Sprintf("bus->>'bus_number'=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at, id`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

type ticketDocs struct {
	bus       []byte
	quotation []byte
	invoice   []byte
	repairs   []byte
	notes     []byte
}

func marshalTicketDocs(ticket *domain.Ticket) (ticketDocs, error) {
	var docs ticketDocs
	var err error
	if docs.bus, err = json.Marshal(ticket.Bus); err != nil {
		return docs, err
	}
	if ticket.Quotation != nil {
		if docs.quotation, err = json.Marshal(ticket.Quotation); err != nil {
			return docs, err
		}
	}
	if ticket.Invoice != nil {
		if docs.invoice, err = json.Marshal(ticket.Invoice); err != nil {
			return docs, err
		}
	}
	repairs := ticket.RepairRequests
	if repairs == nil {
		repairs = []domain.RepairRequest{}
	}
	if docs.repairs, err = json.Marshal(repairs); err != nil {
		return docs, err
	}
	notes := ticket.Notes
	if notes == nil {
		notes = []string{}
	}
	if docs.notes, err = json.Marshal(notes); err != nil {
		return docs, err
	}
	return docs, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket         domain.Ticket
		repairCategory *string
		assignedVendor *string
		rejectedReason *string
		approvedBy     *string
		busDoc         []byte
		quotationDoc   []byte
		invoiceDoc     []byte
		repairsDoc     []byte
		notesDoc       []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.ServiceType,
		&ticket.Priority,
		&repairCategory,
		&ticket.CreatedBy,
		&assignedVendor,
		&busDoc,
		&quotationDoc,
		&invoiceDoc,
		&repairsDoc,
		&notesDoc,
		&ticket.EstimatedCost,
		&ticket.FinalCost,
		&rejectedReason,
		&approvedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ApprovedAt,
		&ticket.AcknowledgedAt,
		&ticket.UnderServiceAt,
		&ticket.CompletedAt,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	if repairCategory != nil {
		ticket.RepairCategory = domain.RepairCategory(*repairCategory)
	}
	if assignedVendor != nil {
		ticket.AssignedVendor = *assignedVendor
	}
	if rejectedReason != nil {
		ticket.RejectedReason = *rejectedReason
	}
	if approvedBy != nil {
		ticket.ApprovedBy = *approvedBy
	}
	if err := json.Unmarshal(busDoc, &ticket.Bus); err != nil {
		return nil, err
	}
	if len(quotationDoc) > 0 {
		ticket.Quotation = &domain.Quotation{}
		if err := json.Unmarshal(quotationDoc, ticket.Quotation); err != nil {
			return nil, err
		}
	}
	if len(invoiceDoc) > 0 {
		ticket.Invoice = &domain.Invoice{}
		if err := json.Unmarshal(invoiceDoc, ticket.Invoice); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(repairsDoc, &ticket.RepairRequests); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(notesDoc, &ticket.Notes); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
