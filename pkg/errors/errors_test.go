package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := Code("SOMETHING_ELSE").Meta()
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected 500 fallback, got %d", meta.HTTPStatus)
	}
	if meta.ExposeMessage {
		t.Fatal("internal errors must not expose their message")
	}
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load cart: %w", Newf(CodeNotFound, "product %s not found", "p-1"))
	if !stdErrors.Is(err, New(CodeNotFound, "")) {
		t.Fatal("expected errors.Is to match on code")
	}
	if stdErrors.Is(err, New(CodeConflict, "")) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if got := As(err).Message(); got != "product p-1 not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAsFindsWrappedTypedError(t *testing.T) {
	base := New(CodeNotFound, "product not found")
	wrapped := fmt.Errorf("resolve variant: %w", base)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", typed)
	}
	if !IsCode(wrapped, CodeNotFound) {
		t.Fatal("IsCode should see through wrapping")
	}
	if IsCode(wrapped, CodeConflict) {
		t.Fatal("IsCode matched the wrong code")
	}
}

func TestDumpExtractsPostgresDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key", TableName: "users"}
	err := Wrap(CodeConflict, pgErr, "create user")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.Postgres == nil || dump.Postgres.Code != "23505" || dump.Postgres.Constraint != "users_email_key" {
		t.Fatalf("postgres details missing: %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two links in chain, got %v", dump.Chain)
	}
	if _, ok := dump.Fields()["pg_code"]; !ok {
		t.Fatal("expected pg fields in log output")
	}
}

func TestDumpFollowsJoinedErrors(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.Join(stdErrors.New("first"), stdErrors.New("second")), "cleanup")

	dump := Dump(err)
	if len(dump.Chain) != 4 {
		t.Fatalf("expected wrapper, join and both leaves, got %v", dump.Chain)
	}
	if dump.Postgres != nil {
		t.Fatalf("unexpected postgres detail %+v", dump.Postgres)
	}
	if _, ok := dump.Fields()["pg_code"]; ok {
		t.Fatal("expected no pg fields without a postgres error")
	}
}
