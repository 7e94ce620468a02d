package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/model"
)

var _ model.AccountStore = (*AccountRepository)(nil)

const accountColumns = `id, email, password_hash, first_name, last_name, phone, is_active, email_verified,
	email_verification_token, password_reset_token, password_reset_expires, last_login, role, avatar_key,
	created_at, updated_at, deleted_at`

var sortColumns = map[model.SortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByEmail:     "email",
	model.SortByFirstName: "first_name",
	model.SortByLastName:  "last_name",
	model.SortByLastLogin: "last_login",
}

type AccountRepository struct {
	db *Connection
}

func NewAccountRepository(db *Connection) *AccountRepository {
	return &AccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var (
		a    model.Account
		role string
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Phone, &a.IsActive, &a.EmailVerified,
		&a.VerificationTokenHash, &a.ResetTokenHash, &a.ResetExpires, &a.LastLogin, &role, &a.AvatarKey,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	)
	a.Role = model.Role(role)
	return a, err
}

func (r *AccountRepository) Create(ctx context.Context, account model.Account) (model.Account, error) {
	query := `INSERT INTO accounts (id, email, password_hash, first_name, last_name, phone, is_active, email_verified,
			  email_verification_token, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			  RETURNING ` + accountColumns

	saved, err := scanAccount(r.db.QueryRowContext(ctx, query,
		account.ID, strings.ToLower(account.Email), account.PasswordHash, account.FirstName, account.LastName,
		nullable(account.Phone), account.IsActive, account.EmailVerified, account.VerificationTokenHash,
		string(account.Role), account.CreatedAt, account.UpdatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, model.ErrDuplicateEmail
		}
		return model.Account{}, fmt.Errorf("failed to create account: %w", err)
	}

	return saved, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, "id", query, id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`
	return r.getOne(ctx, "email", query, email)
}

func (r *AccountRepository) GetByVerificationToken(ctx context.Context, tokenHash string) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
			  WHERE email_verification_token = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, "verification token", query, tokenHash)
}

func (r *AccountRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
			  WHERE password_reset_token = $1 AND password_reset_expires > $2 AND deleted_at IS NULL`
	return r.getOne(ctx, "reset token", query, tokenHash, now)
}

func (r *AccountRepository) getOne(ctx context.Context, by, query string, args ...any) (model.Account, error) {
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to get account by %s: %w", by, err)
	}
	return account, nil
}

func (r *AccountRepository) Update(ctx context.Context, id uuid.UUID, update model.AccountUpdate) (model.Account, error) {
	if update.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.FirstName != nil {
		set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		set("last_name", *update.LastName)
	}
	if update.Phone != nil {
		set("phone", nullable(update.Phone))
	}
	if update.IsActive != nil {
		set("is_active", *update.IsActive)
	}
	if update.Role != nil {
		set("role", string(*update.Role))
	}
	if update.PasswordHash != nil {
		set("password_hash", *update.PasswordHash)
	}
	if update.EmailVerified != nil {
		set("email_verified", *update.EmailVerified)
	}
	if update.LastLogin != nil {
		set("last_login", *update.LastLogin)
	}
	if update.AvatarKey != nil {
		set("avatar_key", nullable(update.AvatarKey))
	}
	if update.ClearVerificationToken {
		sets = append(sets, "email_verification_token = NULL")
	}
	switch {
	case update.ClearResetToken:
		sets = append(sets, "password_reset_token = NULL", "password_reset_expires = NULL")
	case update.ResetTokenHash != nil:
		set("password_reset_token", *update.ResetTokenHash)
		set("password_reset_expires", update.ResetExpires)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
		strings.Join(sets, ", "), len(args), accountColumns)

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, model.ErrNotFound
		}
		return model.Account{}, fmt.Errorf("failed to update account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, filter model.AccountFilter) ([]model.Account, int, error) {
	where := []string{"deleted_at IS NULL"}
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM accounts WHERE ` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s ORDER BY %s %s NULLS LAST, id LIMIT $%d OFFSET $%d`,
		accountColumns, whereClause, column, direction, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]model.Account, 0, filter.Limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// nullable maps an empty optional string to NULL.
func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
