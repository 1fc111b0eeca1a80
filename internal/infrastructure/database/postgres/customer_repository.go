package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"goldloan-engine/internal/domain/customer"
	"goldloan-engine/internal/pkg/apperrors"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

const customerColumns = `id, full_name, email, phone_number, address, id_proof_type,
		id_proof_number, occupation, annual_income::text, created_at, updated_at`

func scanCustomer(row rowScanner) (*customer.Customer, error) {
	var (
		c      customer.Customer
		income string
	)
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.PhoneNumber, &c.Address, &c.IDProofType,
		&c.IDProofNumber, &c.Occupation, &income, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.AnnualIncome, err = scanDecimal(income); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	sql := `
        INSERT INTO customers (full_name, email, phone_number, address, id_proof_type,
            id_proof_number, occupation, annual_income, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, NOW(), NOW())
        RETURNING ` + customerColumns

	row := r.db.QueryRow(ctx, sql,
		c.FullName, c.Email, c.PhoneNumber, c.Address, c.IDProofType,
		c.IDProofNumber, c.Occupation, c.AnnualIncome.String(),
	)
	created, err := scanCustomer(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert customer", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	r.logger.InfoContext(ctx, "Customer created in DB", "customer_id", created.ID)
	return created, nil
}

func (r *CustomerRepository) GetCustomerByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	c, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "customer_id", customerID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get customer", "customer_id", customerID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return c, nil
}

func (r *CustomerRepository) ListCustomers(ctx context.Context) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", "error", err)
		return nil, translateDBError(err, r.logger)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, translateDBError(err, r.logger)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, r.logger)
	}
	return customers, nil
}

func (r *CustomerRepository) UpdateCustomer(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	sql := `
        UPDATE customers
        SET full_name = $1, email = $2, phone_number = $3, address = $4, id_proof_type = $5,
            id_proof_number = $6, occupation = $7, annual_income = $8::numeric, updated_at = NOW()
        WHERE id = $9
        RETURNING ` + customerColumns

	row := r.db.QueryRow(ctx, sql,
		c.FullName, c.Email, c.PhoneNumber, c.Address, c.IDProofType,
		c.IDProofNumber, c.Occupation, c.AnnualIncome.String(), c.ID,
	)
	updated, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to update customer", "customer_id", c.ID, "error", err)
		return nil, translateDBError(err, r.logger)
	}
	return updated, nil
}

func (r *CustomerRepository) DeleteCustomer(ctx context.Context, customerID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete customer", "customer_id", customerID, "error", err)
		return translateDBError(err, r.logger)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Customer deleted", "customer_id", customerID)
	return nil
}

func (r *CustomerRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", "error", err)
		return 0, translateDBError(err, r.logger)
	}
	return count, nil
}
