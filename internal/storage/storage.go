// Package storage реализует журнал попыток оформления на основе PostgreSQL.
// Журнал append-only: строка появляется при фиксации суммы и адреса,
// дальше обновляется только исход (expired/cancelled). Состояние живой
// сессии в базу не попадает — оно целиком в памяти процесса.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kseleznyov/crypto-checkout/internal/models"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// SaveAttempt записывает зафиксированную попытку оформления с исходом pending.
func (s *Storage) SaveAttempt(ctx context.Context, attempt models.CheckoutAttempt) error {
	const op = "storage.SaveAttempt"

	query := `INSERT INTO checkout_attempts (session_id, brand, plan_id, asset, network,
			      email, amount, address, deadline, outcome)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		attempt.SessionID, attempt.Brand, attempt.PlanID, attempt.Asset, attempt.Network,
		attempt.Email, attempt.Amount, attempt.Address, attempt.Deadline,
		models.AttemptOutcomePending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkOutcome проставляет исход последней незакрытой попытки сессии.
func (s *Storage) MarkOutcome(ctx context.Context, sessionID, outcome string) error {
	const op = "storage.MarkOutcome"

	query := `UPDATE checkout_attempts
			  SET outcome = $2, closed_at = now()
			  WHERE session_id = $1 AND outcome = $3`
	_, err := s.DB.ExecContext(ctx, query, sessionID, outcome, models.AttemptOutcomePending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPending возвращает незакрытые попытки — их читает внешний процесс
// сверки и выдачи ключей.
func (s *Storage) ListPending(ctx context.Context, limit int) ([]*models.CheckoutAttempt, error) {
	const op = "storage.ListPending"

	query := `SELECT session_id, brand, plan_id, asset, network, email, amount, address, deadline, outcome
			  FROM checkout_attempts
			  WHERE outcome = $1
			  ORDER BY deadline
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, models.AttemptOutcomePending, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var attempts []*models.CheckoutAttempt
	for rows.Next() {
		var a models.CheckoutAttempt
		if err := rows.Scan(&a.SessionID, &a.Brand, &a.PlanID, &a.Asset, &a.Network,
			&a.Email, &a.Amount, &a.Address, &a.Deadline, &a.Outcome); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return attempts, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}
