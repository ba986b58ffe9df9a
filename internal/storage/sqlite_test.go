package storage

import (
	"errors"
	"fmt"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestReport(t *testing.T, s *Store, filename string) int64 {
	t.Helper()
	id, err := s.CreateReport(Report{
		OriginalFilename: filename,
		FilePath:         "audio/" + filename,
		FileSize:         2048,
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	return id
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
	if len(v1) == 0 {
		t.Error("expected at least one applied migration")
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_reports_created", "idx_reports_status"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying sqlite_master for %q: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %q not found in sqlite_master", idx)
		}
	}
}

func TestCreateAndGetReport(t *testing.T) {
	s := openTestStore(t)

	id := createTestReport(t, s, "meeting.mp3")
	if id == 0 {
		t.Fatal("expected non-zero id")
	}

	got, err := s.GetReport(id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}

	if got.OriginalFilename != "meeting.mp3" {
		t.Errorf("OriginalFilename = %q, want %q", got.OriginalFilename, "meeting.mp3")
	}
	if got.FileSize != 2048 {
		t.Errorf("FileSize = %d, want 2048", got.FileSize)
	}
	if got.Status != StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, StatusPending)
	}
	if got.Transcription != "" || got.Summary != "" || got.ErrorMessage != "" {
		t.Errorf("new report carries derived fields: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetReportNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetReport(42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport(42) = %v, want ErrNotFound", err)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i := range 5 {
		createTestReport(t, s, fmt.Sprintf("meeting_%d.mp3", i))
	}

	reports, err := s.ListReports(0, 10)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 5 {
		t.Fatalf("got %d reports, want 5", len(reports))
	}
	for i := 1; i < len(reports); i++ {
		if reports[i].ID > reports[i-1].ID {
			t.Errorf("reports not newest-first: id %d before id %d", reports[i-1].ID, reports[i].ID)
		}
	}
}

func TestListReportsPagination(t *testing.T) {
	s := openTestStore(t)

	for i := range 5 {
		createTestReport(t, s, fmt.Sprintf("meeting_%d.mp3", i))
	}

	page, err := s.ListReports(2, 2)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d reports, want 2", len(page))
	}
	// Newest first: ids 5..1, so skip=2 limit=2 yields ids 3, 2.
	if page[0].ID != 3 || page[1].ID != 2 {
		t.Errorf("page ids = [%d %d], want [3 2]", page[0].ID, page[1].ID)
	}
}

func TestSaveTranscription(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.SaveTranscription(id, "hello world", "en", 12.5); err != nil {
		t.Fatalf("SaveTranscription: %v", err)
	}

	got, err := s.GetReport(id)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Status != StatusTranscribed {
		t.Errorf("Status = %q, want %q", got.Status, StatusTranscribed)
	}
	if got.Transcription != "hello world" || got.Language != "en" || got.Duration != 12.5 {
		t.Errorf("transcript fields = (%q, %q, %v)", got.Transcription, got.Language, got.Duration)
	}
}

func TestSaveTranscriptionClearsError(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.MarkFailed(id, "engine unavailable"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ := s.GetReport(id)
	if got.Status != StatusFailed || got.ErrorMessage != "engine unavailable" {
		t.Fatalf("after MarkFailed: status=%q msg=%q", got.Status, got.ErrorMessage)
	}

	// A successful retry overwrites the transcript fields and clears the error.
	if err := s.SaveTranscription(id, "second attempt", "en", 3); err != nil {
		t.Fatalf("SaveTranscription: %v", err)
	}
	got, _ = s.GetReport(id)
	if got.ErrorMessage != "" {
		t.Errorf("ErrorMessage = %q, want cleared", got.ErrorMessage)
	}
	if got.Status != StatusTranscribed || got.Transcription != "second attempt" {
		t.Errorf("retry state: status=%q transcription=%q", got.Status, got.Transcription)
	}
}

func TestSaveSummary(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.SaveSummary(id, "the gist", `[{"title":"t"}]`, `[]`, `[]`); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, _ := s.GetReport(id)
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, StatusCompleted)
	}
	if got.Summary != "the gist" || got.Topics != `[{"title":"t"}]` {
		t.Errorf("summary fields = (%q, %q)", got.Summary, got.Topics)
	}
}

func TestMarkFailedKeepsPartialState(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.SaveTranscription(id, "kept transcript", "en", 10); err != nil {
		t.Fatalf("SaveTranscription: %v", err)
	}
	if err := s.MarkFailed(id, "summarizer blew up"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	got, _ := s.GetReport(id)
	if got.Status != StatusFailed || got.ErrorMessage != "summarizer blew up" {
		t.Errorf("failed state: status=%q msg=%q", got.Status, got.ErrorMessage)
	}
	if got.Transcription != "kept transcript" {
		t.Errorf("transcript lost on failure: %q", got.Transcription)
	}
}

func TestSetStatus(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.SetStatus(id, StatusTranscribing); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, _ := s.GetReport(id)
	if got.Status != StatusTranscribing {
		t.Errorf("Status = %q, want %q", got.Status, StatusTranscribing)
	}

	if err := s.SetStatus(99, StatusTranscribing); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus(unknown) = %v, want ErrNotFound", err)
	}
}

func TestDeleteReport(t *testing.T) {
	s := openTestStore(t)
	id := createTestReport(t, s, "meeting.mp3")

	if err := s.DeleteReport(id); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if _, err := s.GetReport(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteReport(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteReport = %v, want ErrNotFound", err)
	}
}
