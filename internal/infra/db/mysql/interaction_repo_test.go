package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	domain "github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
)

var interactionColumns = []string{"id", "tenant_id", "operation", "success", "error", "source", "input",
	"result_json", "image_url", "duration_ms", "created_at"}

func newMockRepo(t *testing.T) (*InteractionRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewInteractionRepository(db), mock
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ai_interactions")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveArgumentOrder(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("WIB", 7*3600))
	in := &domain.Interaction{
		ID:         "id-1",
		TenantID:   "acme",
		Operation:  domain.OpAnalyzeData,
		Success:    true,
		Source:     "fallback",
		Input:      "people.csv (csv, 3 rows)",
		Result:     `{"quality_issues":[]}`,
		ImageURL:   "",
		DurationMS: 42,
		CreatedAt:  created,
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_interactions")).
		WithArgs("id-1", "acme", "analyze_data", true, "", "fallback", "people.csv (csv, 3 rows)",
			`{"quality_issues":[]}`, "", int64(42), created.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Save(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveFillsBlankTenantAndResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ai_interactions")).
		WithArgs("id-2", "-", "chat", false, "Failed to generate response", "", "hi", "{}", "", int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Save(context.Background(), &domain.Interaction{
		ID: "id-2", Operation: domain.OpChat, Error: "Failed to generate response", Input: "hi",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPaginateScansRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(interactionColumns).
		AddRow("id-9", "acme", "image_ocr", true, "", "", "scan.png", `"INVOICE"`, "http://minio/b/k.jpg", int64(120), created).
		AddRow("id-8", "acme", "chat", false, "Failed to generate response", "", "hi", `"sorry"`, "", int64(5), created.Add(-time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("FROM ai_interactions")).
		WithArgs("acme", 10, 10).
		WillReturnRows(rows)

	got, err := repo.Paginate(context.Background(), "acme", 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	first := got[0]
	if first.ID != "id-9" || first.Operation != domain.OpImageOCR || !first.Success ||
		first.Result != `"INVOICE"` || first.ImageURL != "http://minio/b/k.jpg" || first.DurationMS != 120 ||
		!first.CreatedAt.Equal(created) {
		t.Fatalf("unexpected first row %+v", first)
	}
	if got[1].Error != "Failed to generate response" || got[1].Success {
		t.Fatalf("unexpected second row %+v", got[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPaginateQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM ai_interactions")).
		WithArgs("-", 20, 0).
		WillReturnError(errors.New("connection lost"))

	if _, err := repo.Paginate(context.Background(), "", 0, 0); err == nil {
		t.Fatal("expected error")
	}
}
