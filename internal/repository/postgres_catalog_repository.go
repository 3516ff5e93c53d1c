package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zain-0/bus-track-ticket/internal/domain"
)

// postgresBusPresetRepository persists the bus catalog.
type postgresBusPresetRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBusPresetRepository instantiates the postgres bus catalog.
func NewPostgresBusPresetRepository(pool *pgxpool.Pool) BusPresetRepository {
	return &postgresBusPresetRepository{pool: pool}
}

const busPresetColumns = `bus_number, fleet_number, chassis_number, registration_number, model,
       manufacturer, year, engine_service_interval, tyre_service_interval, ac_service_interval,
       transmission_service_interval, brake_pad_service_interval, created_at`

func (r *postgresBusPresetRepository) Add(ctx context.Context, preset *domain.BusPreset) error {
	const query = `
        INSERT INTO bus_presets (bus_number, fleet_number, chassis_number, registration_number,
            model, manufacturer, year, engine_service_interval, tyre_service_interval,
            ac_service_interval, transmission_service_interval, brake_pad_service_interval)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		preset.BusNumber,
		preset.FleetNumber,
		preset.ChassisNumber,
		preset.RegistrationNumber,
		preset.Model,
		preset.Manufacturer,
		preset.Year,
		preset.EngineServiceInterval,
		preset.TyreServiceInterval,
		preset.ACServiceInterval,
		preset.TransmissionServiceInterval,
		preset.BrakePadServiceInterval,
	).Scan(&preset.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *postgresBusPresetRepository) GetByBusNumber(ctx context.Context, busNumber string) (*domain.BusPreset, error) {
	query := `SELECT ` + busPresetColumns + ` FROM bus_presets WHERE bus_number=$1`
	preset, err := scanBusPreset(r.pool.QueryRow(ctx, query, busNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return preset, err
}

func (r *postgresBusPresetRepository) List(ctx context.Context) ([]domain.BusPreset, error) {
	query := `SELECT ` + busPresetColumns + ` FROM bus_presets ORDER BY created_at, bus_number`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	presets := []domain.BusPreset{}
	for rows.Next() {
		preset, err := scanBusPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, *preset)
	}
	return presets, rows.Err()
}

func scanBusPreset(row pgx.Row) (*domain.BusPreset, error) {
	var preset domain.BusPreset
	if err := row.Scan(
		&preset.BusNumber,
		&preset.FleetNumber,
		&preset.ChassisNumber,
		&preset.RegistrationNumber,
		&preset.Model,
		&preset.Manufacturer,
		&preset.Year,
		&preset.EngineServiceInterval,
		&preset.TyreServiceInterval,
		&preset.ACServiceInterval,
		&preset.TransmissionServiceInterval,
		&preset.BrakePadServiceInterval,
		&preset.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &preset, nil
}

// postgresVendorRepository persists the vendor catalog.
type postgresVendorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresVendorRepository instantiates the postgres vendor catalog.
func NewPostgresVendorRepository(pool *pgxpool.Pool) VendorRepository {
	return &postgresVendorRepository{pool: pool}
}

func (r *postgresVendorRepository) Add(ctx context.Context, vendor *domain.Vendor) error {
	if vendor.ID == "" {
		vendor.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO vendors (id, name, email, contact_person, phone)
        VALUES ($1,$2,LOWER($3),$4,$5)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		vendor.ID,
		vendor.Name,
		vendor.Email,
		vendor.ContactPerson,
		vendor.Phone,
	).Scan(&vendor.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *postgresVendorRepository) GetByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	const query = `SELECT id, name, email, contact_person, phone, created_at FROM vendors WHERE email=LOWER($1)`
	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return vendor, err
}

func (r *postgresVendorRepository) List(ctx context.Context) ([]domain.Vendor, error) {
	const query = `SELECT id, name, email, contact_person, phone, created_at FROM vendors ORDER BY created_at, email`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := []domain.Vendor{}
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *vendor)
	}
	return vendors, rows.Err()
}

func scanVendor(row pgx.Row) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := row.Scan(
		&vendor.ID,
		&vendor.Name,
		&vendor.Email,
		&vendor.ContactPerson,
		&vendor.Phone,
		&vendor.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// postgresUserRepository stores login accounts.
type postgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository instantiates the postgres account store.
func NewPostgresUserRepository(pool *pgxpool.Pool) UserRepository {
	return &postgresUserRepository{pool: pool}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO users (id, name, email, password_hash, role)
        VALUES ($1,$2,LOWER($3),$4,$5)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE id=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, name, email, password_hash, role, created_at, updated_at FROM users WHERE email=LOWER($1)`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
