package database_test

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"subtracker/internal/models"
	"subtracker/internal/testutil"
	"subtracker/migrations"
)

func readMigration(t *testing.T, open func() (io.ReadCloser, string, error)) string {
	t.Helper()
	r, _, err := open()
	if err != nil {
		t.Fatalf("open migration: %v", err)
	}
	defer r.Close()
	body, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		t.Fatal("migration is empty")
	}
	return string(body)
}

// loadMigrations walks the embedded source the same way golang-migrate does
// and returns the concatenated up scripts.
func loadMigrations(t *testing.T) (versions []uint, up string) {
	t.Helper()
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("iofs.New: %v", err)
	}
	defer src.Close()

	var sb strings.Builder
	version, err := src.First()
	for err == nil {
		v := version
		versions = append(versions, v)
		sb.WriteString(readMigration(t, func() (io.ReadCloser, string, error) { return src.ReadUp(v) }))
		readMigration(t, func() (io.ReadCloser, string, error) { return src.ReadDown(v) })
		version, err = src.Next(v)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("walking migrations: %v", err)
	}
	return versions, sb.String()
}

func TestMigrations_Load(t *testing.T) {
	versions, _ := loadMigrations(t)

	want := []uint{1, 2, 3, 4, 5}
	if len(versions) != len(want) {
		t.Fatalf("expected versions %v, got %v", want, versions)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("expected versions %v, got %v", want, versions)
			break
		}
	}
}

// The Postgres migrations and the gorm models must agree on constraint names:
// error classification matches on them.
func TestMigrations_ConstraintNamesMatchModels(t *testing.T) {
	_, up := loadMigrations(t)

	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	indexes := []struct {
		model interface{}
		name  string
	}{
		{&models.User{}, "uni_users_email"},
		{&models.User{}, "uni_users_phone"},
		{&models.AuthToken{}, "idx_auth_tokens_user_id"},
		{&models.AuthToken{}, "idx_auth_tokens_refresh_token"},
		{&models.AuthToken{}, "idx_auth_tokens_expires_at"},
		{&models.BankAccount{}, "idx_bank_accounts_user_id"},
		{&models.Category{}, "idx_categories_type"},
		{&models.Transaction{}, "idx_transactions_user_date"},
		{&models.Transaction{}, "idx_transactions_bank_account_id"},
		{&models.Transaction{}, "idx_transactions_category_id"},
		{&models.Transaction{}, "idx_transactions_type"},
	}
	for _, tt := range indexes {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(up, tt.name) {
				t.Errorf("%s missing from migrations", tt.name)
			}
			if !db.Migrator().HasIndex(tt.model, tt.name) {
				t.Errorf("%s missing from model schema", tt.name)
			}
		})
	}

	constraints := []struct {
		model interface{}
		name  string
	}{
		{&models.AuthToken{}, "fk_auth_tokens_user"},
		{&models.BankAccount{}, "fk_bank_accounts_user"},
		{&models.BankAccount{}, "chk_bank_accounts_account_type"},
		{&models.Category{}, "chk_categories_type"},
		{&models.Transaction{}, "fk_transactions_user"},
		{&models.Transaction{}, "fk_transactions_bank_account"},
		{&models.Transaction{}, "fk_transactions_category"},
		{&models.Transaction{}, "chk_transactions_type"},
		{&models.Transaction{}, "chk_transactions_source"},
	}
	for _, tt := range constraints {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(up, "CONSTRAINT "+tt.name+" ") {
				t.Errorf("%s missing from migrations", tt.name)
			}
			if !db.Migrator().HasConstraint(tt.model, tt.name) {
				t.Errorf("%s missing from model schema", tt.name)
			}
		})
	}
}
