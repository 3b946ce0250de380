package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"electro-shop/internal/domain"
	"electro-shop/internal/sqlbuild"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this user name or email already exists")
)

const userColumns = `user_number, first_name, last_name, user_name, password_hash, email,
	phone_number, user_id, user_role, date_of_birth, address, created`

// UserRepository defines the interface for user data access
type UserRepository interface {
	List(ctx context.Context) ([]*domain.User, error)
	FindByID(ctx context.Context, userNumber int64) (*domain.User, error)
	FindByUserName(ctx context.Context, userName string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error)
	FindForRecovery(ctx context.Context, email, phoneNumber, userID string) (*domain.User, error)
	Create(ctx context.Context, in *domain.UserInput, passwordHash string) (*domain.User, error)
	Update(ctx context.Context, userNumber int64, in *domain.UserInput) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userNumber int64, passwordHash string) error
	UpdateRole(ctx context.Context, userNumber int64, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, userNumber int64) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.UserNumber,
		&user.FirstName,
		&user.LastName,
		&user.UserName,
		&user.PasswordHash,
		&user.Email,
		&user.PhoneNumber,
		&user.UserID,
		&user.UserRole,
		&user.DateOfBirth,
		&user.Address,
		&user.Created,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_number`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func (r *userRepository) findOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where + ` LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, userNumber int64) (*domain.User, error) {
	return r.findOne(ctx, `user_number = $1`, userNumber)
}

func (r *userRepository) FindByUserName(ctx context.Context, userName string) (*domain.User, error) {
	return r.findOne(ctx, `user_name = $1`, userName)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `email = $1`, email)
}

// FindByLogin matches either the user name or the email.
func (r *userRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	return r.findOne(ctx, `user_name = $1 OR email = $1`, usernameOrEmail)
}

// FindForRecovery requires all three identity fields to match one account.
func (r *userRepository) FindForRecovery(ctx context.Context, email, phoneNumber, userID string) (*domain.User, error) {
	return r.findOne(ctx, `email = $1 AND phone_number = $2 AND user_id = $3`, email, phoneNumber, userID)
}

func (r *userRepository) Create(ctx context.Context, in *domain.UserInput, passwordHash string) (*domain.User, error) {
	cols := sqlbuild.Pick(in)
	cols["password_hash"] = passwordHash

	query, args, err := sqlbuild.BuildInsert("users", cols, userColumns)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrUserAlreadyExists, err)
		}
		return nil, classify("create user", err)
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, userNumber int64, in *domain.UserInput) (*domain.User, error) {
	query, args, err := sqlbuild.BuildUpdate("users", sqlbuild.Pick(in), "user_number", userNumber, userColumns)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrUserAlreadyExists, err)
		}
		return nil, classify("update user", err)
	}
	return user, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userNumber int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE user_number = $2`

	result, err := r.db.ExecContext(ctx, query, passwordHash, userNumber)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, userNumber int64, role domain.Role) (*domain.User, error) {
	query := `UPDATE users SET user_role = $1 WHERE user_number = $2 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, string(role), userNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, classify("update user role", err)
	}
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, userNumber int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_number = $1`, userNumber)
	if err != nil {
		return classify("delete user", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
