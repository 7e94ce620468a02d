package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/model"
)

var _ model.AccountStore = (*AccountRepository)(nil)

type AccountRepository struct {
	db  *DB
	now func() time.Time
}

func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db, now: time.Now}
}

// Create stores account. The email uniqueness check and the insert happen under one lock.
func (r *AccountRepository) Create(_ context.Context, account model.Account) (model.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	account.Email = strings.ToLower(account.Email)
	if _, ok := r.findLocked(func(a model.Account) bool { return a.Email == account.Email }); ok {
		return model.Account{}, model.ErrDuplicateEmail
	}
	if account.Phone != nil && *account.Phone == "" {
		account.Phone = nil
	}

	stored := cloneAccount(account)
	r.db.accounts[account.ID] = stored
	return cloneAccount(stored), nil
}

func (r *AccountRepository) GetByID(_ context.Context, id uuid.UUID) (model.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.db.accounts[id]
	if !ok || a.DeletedAt != nil {
		return model.Account{}, model.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (model.Account, error) {
	email = strings.ToLower(email)
	return r.find(func(a model.Account) bool { return a.Email == email })
}

func (r *AccountRepository) GetByVerificationToken(_ context.Context, tokenHash string) (model.Account, error) {
	return r.find(func(a model.Account) bool {
		return a.VerificationTokenHash != nil && *a.VerificationTokenHash == tokenHash
	})
}

func (r *AccountRepository) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (model.Account, error) {
	return r.find(func(a model.Account) bool {
		return a.ResetTokenHash != nil && *a.ResetTokenHash == tokenHash &&
			a.ResetExpires != nil && a.ResetExpires.After(now)
	})
}

func (r *AccountRepository) find(match func(model.Account) bool) (model.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	a, ok := r.findLocked(match)
	if !ok {
		return model.Account{}, model.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *AccountRepository) findLocked(match func(model.Account) bool) (model.Account, bool) {
	for _, a := range r.db.accounts {
		if a.DeletedAt == nil && match(a) {
			return a, true
		}
	}
	return model.Account{}, false
}

func (r *AccountRepository) Update(_ context.Context, id uuid.UUID, u model.AccountUpdate) (model.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.accounts[id]
	if !ok || a.DeletedAt != nil {
		return model.Account{}, model.ErrNotFound
	}
	if u.Empty() {
		return cloneAccount(a), nil
	}

	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.Phone != nil {
		a.Phone = cloneString(u.Phone)
		if *u.Phone == "" {
			a.Phone = nil
		}
	}
	if u.IsActive != nil {
		a.IsActive = *u.IsActive
	}
	if u.Role != nil {
		a.Role = *u.Role
	}
	if u.PasswordHash != nil {
		a.PasswordHash = *u.PasswordHash
	}
	if u.EmailVerified != nil {
		a.EmailVerified = *u.EmailVerified
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		a.LastLogin = &t
	}
	if u.AvatarKey != nil {
		a.AvatarKey = cloneString(u.AvatarKey)
	}
	if u.ClearVerificationToken {
		a.VerificationTokenHash = nil
	}
	switch {
	case u.ClearResetToken:
		a.ResetTokenHash, a.ResetExpires = nil, nil
	case u.ResetTokenHash != nil:
		a.ResetTokenHash = cloneString(u.ResetTokenHash)
		if u.ResetExpires != nil {
			t := *u.ResetExpires
			a.ResetExpires = &t
		}
	}
	a.UpdatedAt = r.now()

	r.db.accounts[id] = a
	return cloneAccount(a), nil
}

func (r *AccountRepository) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	a, ok := r.db.accounts[id]
	if !ok || a.DeletedAt != nil {
		return model.ErrNotFound
	}
	now := r.now()
	a.DeletedAt = &now
	a.UpdatedAt = now
	r.db.accounts[id] = a
	return nil
}

func (r *AccountRepository) List(_ context.Context, filter model.AccountFilter) ([]model.Account, int, error) {
	r.db.mu.RLock()
	matched := make([]model.Account, 0, len(r.db.accounts))
	search := strings.ToLower(filter.Search)
	for _, a := range r.db.accounts {
		if a.DeletedAt != nil {
			continue
		}
		if filter.IsActive != nil && a.IsActive != *filter.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.FirstName), search) &&
			!strings.Contains(strings.ToLower(a.LastName), search) &&
			!strings.Contains(a.Email, search) {
			continue
		}
		matched = append(matched, cloneAccount(a))
	}
	r.db.mu.RUnlock()

	less := lessFunc(filter.SortBy)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		// nulls last regardless of direction
		if filter.SortBy == model.SortByLastLogin && (a.LastLogin == nil) != (b.LastLogin == nil) {
			return b.LastLogin == nil
		}
		if less(a, b) {
			return !filter.SortDesc
		}
		if less(b, a) {
			return filter.SortDesc
		}
		return a.ID.String() < b.ID.String()
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}

	return matched[start:end], total, nil
}

func lessFunc(field model.SortField) func(a, b model.Account) bool {
	switch field {
	case model.SortByEmail:
		return func(a, b model.Account) bool { return a.Email < b.Email }
	case model.SortByFirstName:
		return func(a, b model.Account) bool { return a.FirstName < b.FirstName }
	case model.SortByLastName:
		return func(a, b model.Account) bool { return a.LastName < b.LastName }
	case model.SortByLastLogin:
		return func(a, b model.Account) bool {
			if a.LastLogin == nil || b.LastLogin == nil {
				return false
			}
			return a.LastLogin.Before(*b.LastLogin)
		}
	default:
		return func(a, b model.Account) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

func (r *AccountRepository) Ping(context.Context) error {
	return nil
}
