package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitstack/adaptive-payments/internal/core/domain"
)

// Repository implements the transaction ledger and settlement stores.
// Decimal values go through their sql.Scanner and driver.Valuer methods.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save appends a transaction record. Records are never updated.
func (r *Repository) Save(ctx context.Context, rec *domain.TransactionRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transaction_records (
		   id, is_sandbox, action, amount, currency, ack, correlation_id, pay_key,
		   payment_exec_status, error_code, error_message, raw_request, raw_response,
		   response_time_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.IsSandbox, rec.Action, rec.Amount, rec.Currency, rec.Ack, rec.CorrelationID, rec.PayKey,
		rec.PaymentExecStatus, rec.ErrorCode, rec.ErrorMessage, rec.RawRequest, rec.RawResponse,
		rec.ResponseTime, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction record: %w", err)
	}
	return nil
}

// ListByPayKey returns the records of a pay key, newest first.
func (r *Repository) ListByPayKey(ctx context.Context, payKey string) ([]domain.TransactionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, is_sandbox, action, amount, currency, ack, correlation_id, pay_key,
		        payment_exec_status, error_code, error_message, raw_request, raw_response,
		        response_time_ms, created_at
		 FROM transaction_records
		 WHERE pay_key = $1
		 ORDER BY created_at DESC`,
		payKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.TransactionRecord, 0)
	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(
			&rec.ID, &rec.IsSandbox, &rec.Action, &rec.Amount, &rec.Currency, &rec.Ack, &rec.CorrelationID, &rec.PayKey,
			&rec.PaymentExecStatus, &rec.ErrorCode, &rec.ErrorMessage, &rec.RawRequest, &rec.RawResponse,
			&rec.ResponseTime, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveSettlement stores a settlement and its payment event in one transaction.
func (r *Repository) SaveSettlement(ctx context.Context, s *domain.Settlement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO settlements (
		   id, basket_id, order_number, pay_key, payment_method, partner_share,
		   paid_shipping_costs, paid_shipping_insurance, source_type, currency,
		   amount_allocated, amount_debited, source_reference, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		s.ID, s.BasketID, s.OrderNumber, s.PayKey, s.PaymentMethod, s.PartnerShare,
		s.PaidShippingCosts, s.PaidShippingInsurance, s.Source.SourceType, s.Source.Currency,
		s.Source.AmountAllocated, s.Source.AmountDebited, s.Source.Reference, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payment_events (settlement_id, event_type, amount, reference, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.Event.EventType, s.Event.Amount, s.Event.Reference, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment event: %w", err)
	}

	return tx.Commit(ctx)
}

// GetSettlement returns the settlement of a pay key.
func (r *Repository) GetSettlement(ctx context.Context, payKey string) (*domain.Settlement, error) {
	var s domain.Settlement
	err := r.pool.QueryRow(ctx,
		`SELECT s.id, s.basket_id, s.order_number, s.pay_key, s.payment_method, s.partner_share,
		        s.paid_shipping_costs, s.paid_shipping_insurance, s.source_type, s.currency,
		        s.amount_allocated, s.amount_debited, s.source_reference, s.created_at,
		        e.event_type, e.amount, e.reference
		 FROM settlements s
		 JOIN payment_events e ON e.settlement_id = s.id
		 WHERE s.pay_key = $1
		 LIMIT 1`,
		payKey).Scan(
		&s.ID, &s.BasketID, &s.OrderNumber, &s.PayKey, &s.PaymentMethod, &s.PartnerShare,
		&s.PaidShippingCosts, &s.PaidShippingInsurance, &s.Source.SourceType, &s.Source.Currency,
		&s.Source.AmountAllocated, &s.Source.AmountDebited, &s.Source.Reference, &s.CreatedAt,
		&s.Event.EventType, &s.Event.Amount, &s.Event.Reference,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}
		return nil, err
	}
	return &s, nil
}
