package db

import (
	"context"
	"database/sql"

	"github.com/okozhina/go-task-manager/internal/models"
)

// defines methods for account db operations
type AccountRepositoryInterface interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, username, password_hash, role, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query, account.ID, account.Username, account.PasswordHash, account.Role,
		account.CreatedAt, account.UpdatedAt)
	return err
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, username, password_hash, role, created_at, updated_at
	 FROM accounts WHERE id = $1`
	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &account.Role,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT id, username, password_hash, role, created_at, updated_at
	 FROM accounts WHERE username = $1`
	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &account.Role,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT id, username, password_hash, role, created_at, updated_at
	 FROM accounts ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(
			&account.ID, &account.Username, &account.PasswordHash, &account.Role,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`
	err := r.db.QueryRowContext(ctx, query, account.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}

	query = `UPDATE accounts SET username = $1, password_hash = $2, role = $3, updated_at = $4
	 WHERE id = $5`
	_, err = r.db.ExecContext(ctx, query,
		account.Username, account.PasswordHash, account.Role, account.UpdatedAt, account.ID)
	return err
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}

	query = `DELETE FROM accounts WHERE id = $1`
	_, err = r.db.ExecContext(ctx, query, id)
	return err
}
