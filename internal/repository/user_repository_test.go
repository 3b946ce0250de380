package repository

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"electro-shop/internal/database"
	"electro-shop/internal/domain"
	"electro-shop/migrations"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context) error, error) {
	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(testDB, migrations.FS, zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}

	if code != 0 {
		log.Fatalf("tests failed with exit code %d", code)
	}
}

// resetTables empties every table and restarts the sequences.
func resetTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(`TRUNCATE users, refresh_tokens, categories, category_images, products,
		product_images, product_descriptions, payment_methods, orders RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func createTestUser(t *testing.T, repo UserRepository, userName string) *domain.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &domain.UserInput{
		UserName: strPtr(userName),
		Email:    strPtr(userName + "@example.com"),
	}, "hash")
	require.NoError(t, err)
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	dob, err := domain.ParseDate("1990-05-17")
	require.NoError(t, err)

	created, err := repo.Create(ctx, &domain.UserInput{
		FirstName:   strPtr("Ada"),
		UserName:    strPtr("ada"),
		Email:       strPtr("ada@example.com"),
		PhoneNumber: strPtr("0501234567"),
		UserID:      strPtr("123456789"),
		DateOfBirth: &dob,
	}, "hashed")
	require.NoError(t, err)

	assert.NotZero(t, created.UserNumber)
	assert.Equal(t, domain.RoleUser, created.UserRole)
	assert.Equal(t, "1990-05-17", created.DateOfBirth.Format(domain.DateLayout))
	assert.Nil(t, created.LastName)

	byName, err := repo.FindByUserName(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, created.UserNumber, byName.UserNumber)

	byLogin, err := repo.FindByLogin(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.UserNumber, byLogin.UserNumber)

	recovered, err := repo.FindForRecovery(ctx, "ada@example.com", "0501234567", "123456789")
	require.NoError(t, err)
	assert.Equal(t, created.UserNumber, recovered.UserNumber)

	_, err = repo.FindForRecovery(ctx, "ada@example.com", "0501234567", "000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateUserName(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testDB)
	createTestUser(t, repo, "dup")

	_, err := repo.Create(context.Background(), &domain.UserInput{
		UserName: strPtr("dup"),
		Email:    strPtr("other@example.com"),
	}, "hash")

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUserRepository_UpdateOnlyTouchesSentFields(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	user, err := repo.Create(ctx, &domain.UserInput{
		FirstName: strPtr("Grace"),
		LastName:  strPtr("Hopper"),
		UserName:  strPtr("grace"),
		Email:     strPtr("grace@example.com"),
	}, "hash")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, user.UserNumber, &domain.UserInput{Address: strPtr("Arlington")})
	require.NoError(t, err)

	require.NotNil(t, updated.Address)
	assert.Equal(t, "Arlington", *updated.Address)
	assert.Equal(t, "Grace", *updated.FirstName)
	assert.Equal(t, "Hopper", *updated.LastName)

	_, err = repo.Update(ctx, 999999, &domain.UserInput{Address: strPtr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_RoleAndDelete(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()
	user := createTestUser(t, repo, "roles")

	promoted, err := repo.UpdateRole(ctx, user.UserNumber, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.UserRole)

	_, err = repo.UpdateRole(ctx, user.UserNumber, domain.Role("root"))
	assert.ErrorIs(t, err, ErrConstraint)

	require.NoError(t, repo.Delete(ctx, user.UserNumber))
	assert.ErrorIs(t, repo.Delete(ctx, user.UserNumber), ErrUserNotFound)
}

func TestProperty_PasswordHashesRoundTrip(t *testing.T) {
	resetTables(t)
	repo := NewUserRepository(testDB)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)
	properties.Property("stored password hashes verify and never equal the password", prop.ForAll(
		func(suffix string, password string) bool {
			userName := "user_" + suffix
			_, _ = testDB.Exec("DELETE FROM users WHERE user_name = $1", userName)

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				return false
			}

			user, err := repo.Create(ctx, &domain.UserInput{
				UserName: strPtr(userName),
				Email:    strPtr(userName + "@example.com"),
			}, string(hash))
			if err != nil {
				t.Logf("Failed to create user: %v", err)
				return false
			}

			stored, err := repo.FindByID(ctx, user.UserNumber)
			if err != nil {
				return false
			}

			return stored.PasswordHash != password &&
				bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) == nil
		},
		gen.Identifier().SuchThat(func(s string) bool { return len(s) <= 40 }),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) >= 6 && len(s) <= 72 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
