package backup

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
	"github.com/devitsbeka/foodvault/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	delErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.delErr != nil {
		return nil, m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func enabledConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "test-passphrase",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config it stays disabled
	m := NewManager(Config{}, nil, nil, nil, slog.Default())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}

	// S3 config without a passphrase is still disabled
	m2 := NewManager(Config{
		S3: S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
	}, nil, nil, nil, slog.Default())
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q without passphrase", m2.Status().State, StateDisabled)
	}

	// Full config transitions to idle
	m3 := NewManager(enabledConfig(), nil, nil, nil, slog.Default())
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
	if !m3.Enabled() {
		t.Error("expected Enabled() = true")
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(enabledConfig(), nil, nil, cb, slog.Default())

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(enabledConfig(), nil, nil, nil, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, slog.Default())

	ctx := context.Background()
	m.Start(ctx) // should be a no-op for disabled state

	// Stop should not block
	m.Stop()
}

func TestRunNowNotConfigured(t *testing.T) {
	m := NewManager(Config{}, nil, nil, nil, slog.Default())
	if _, err := m.RunNow(context.Background()); err == nil {
		t.Fatal("expected error for unconfigured manager")
	}
}

func setupBackupManager(t *testing.T) (*Manager, *mockS3Client, *store.BackupStore, *Config) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "foodvault.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := store.NewUserStore(db).Create("alice@example.com", "Alice", "hash1"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	cfg := enabledConfig()
	cfg.DBPath = dbPath

	bs := store.NewBackupStore(db)
	m := NewManager(cfg, db, bs, nil, slog.Default())
	mock := newMockS3()
	m.client = mock
	return m, mock, bs, &cfg
}

func TestRunNowRoundTrip(t *testing.T) {
	m, mock, bs, cfg := setupBackupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	record, err := bs.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", record.Status, model.BackupStatusCompleted)
	}
	if record.SizeBytes == 0 {
		t.Error("expected non-zero backup size")
	}

	mock.mu.Lock()
	encrypted, ok := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if !ok {
		t.Fatalf("expected object at %s", record.S3Key)
	}
	if int64(len(encrypted)) != record.SizeBytes {
		t.Errorf("object size = %d, want %d", len(encrypted), record.SizeBytes)
	}

	// The uploaded object must open back into a SQLite database
	dir := t.TempDir()
	encPath := filepath.Join(dir, "download.fvb")
	decPath := filepath.Join(dir, "download.db")
	if err := os.WriteFile(encPath, encrypted, 0600); err != nil {
		t.Fatalf("write downloaded object: %v", err)
	}
	if err := OpenFile(encPath, decPath, cfg.Passphrase); err != nil {
		t.Fatalf("open uploaded backup: %v", err)
	}

	status := m.Status()
	if status.State != StateIdle {
		t.Errorf("state = %q, want %q", status.State, StateIdle)
	}
	if status.LastBackup == nil {
		t.Error("expected LastBackup to be set")
	}
}

func TestDownloadStreamsBackup(t *testing.T) {
	m, mock, bs, _ := setupBackupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}

	body, size, err := m.Download(context.Background(), id)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read download: %v", err)
	}
	if int64(len(data)) != size {
		t.Errorf("downloaded %d bytes, want %d", len(data), size)
	}

	record, _ := bs.GetByID(id)
	mock.mu.Lock()
	stored := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if !bytes.Equal(data, stored) {
		t.Error("downloaded bytes differ from stored object")
	}
}

func TestDownloadMissingRecord(t *testing.T) {
	m, _, _, _ := setupBackupManager(t)

	if _, _, err := m.Download(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing backup record")
	}
}

func TestCleanupDeletesOldBackups(t *testing.T) {
	m, mock, bs, _ := setupBackupManager(t)

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run backup: %v", err)
	}
	record, _ := bs.GetByID(id)

	// Backdate the record past the retention window
	if _, err := m.db.Exec(`UPDATE backups SET created_at = datetime('now', '-40 day') WHERE id = ?`, id); err != nil {
		t.Fatalf("backdate record: %v", err)
	}

	if err := m.Cleanup(context.Background(), 30); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	gone, err := bs.GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if gone != nil {
		t.Error("expected old record to be deleted")
	}

	mock.mu.Lock()
	_, stillThere := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if stillThere {
		t.Error("expected old S3 object to be deleted")
	}
}
