package backup

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/volbak/volbak/internal/archive"
	"github.com/volbak/volbak/pkg/models"
)

// fakeArchiver writes canned bytes per volume, or fails. It stands in for
// the tar container.
type fakeArchiver struct {
	payload map[string][]byte // volume -> file content; nil entry writes nothing
	fail    map[string]bool
	calls   []string
}

func (f *fakeArchiver) Compress(ctx context.Context, volumeName, hostDir, archiveName string) error {
	f.calls = append(f.calls, volumeName)

	if f.fail[volumeName] {
		// simulate a partial write before the non-zero exit
		_ = os.WriteFile(filepath.Join(hostDir, archiveName), []byte("partial"), 0644)
		return fmt.Errorf("archive container exited with code 2")
	}

	data, ok := f.payload[volumeName]
	if !ok {
		data = validTarGz()
	}
	return os.WriteFile(filepath.Join(hostDir, archiveName), data, 0644)
}

func validTarGz() []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	content := []byte("payload")
	_ = tw.WriteHeader(&tar.Header{Name: "file.txt", Mode: 0644, Size: int64(len(content))})
	_, _ = tw.Write(content)
	_ = tw.Close()
	_ = gz.Close()
	return buf.Bytes()
}

func testConfig(t *testing.T, keep int) *models.Config {
	t.Helper()
	return &models.Config{
		BackupDirectory:   t.TempDir(),
		DefaultMaxBackups: keep,
	}
}

func archiveFiles(t *testing.T, cfg *models.Config, volume string) []string {
	t.Helper()
	archives, err := archive.List(cfg.BackupDirectory, volume)
	if err != nil {
		t.Fatal(err)
	}
	paths := make([]string, len(archives))
	for i, a := range archives {
		paths[i] = a.Path
	}
	return paths
}

func TestBackupSuccess(t *testing.T) {
	cfg := testConfig(t, 5)
	m, err := NewManager(cfg, &fakeArchiver{})
	if err != nil {
		t.Fatal(err)
	}

	a, err := m.Backup(context.Background(), "app_data")
	if err != nil {
		t.Fatal(err)
	}

	if a.VolumeName != "app_data" {
		t.Errorf("VolumeName = %q", a.VolumeName)
	}
	if a.SizeBytes == 0 {
		t.Error("SizeBytes = 0")
	}
	if _, err := os.Stat(a.Path); err != nil {
		t.Errorf("archive missing on disk: %v", err)
	}
	if _, err := time.Parse(archive.TimestampLayout, a.Timestamp); err != nil {
		t.Errorf("bad timestamp %q: %v", a.Timestamp, err)
	}
}

func TestBackupInvalidVolumeName(t *testing.T) {
	cfg := testConfig(t, 5)
	m, err := NewManager(cfg, &fakeArchiver{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Backup(context.Background(), "///"); !errors.Is(err, archive.ErrInvalidVolumeName) {
		t.Errorf("err = %v, want ErrInvalidVolumeName", err)
	}
}

func TestBackupArchiverFailureLeavesNoFile(t *testing.T) {
	cfg := testConfig(t, 5)
	fa := &fakeArchiver{fail: map[string]bool{"logs": true}}
	m, err := NewManager(cfg, fa)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Backup(context.Background(), "logs"); !errors.Is(err, ErrArchive) {
		t.Fatalf("err = %v, want ErrArchive", err)
	}

	if files := archiveFiles(t, cfg, "logs"); len(files) != 0 {
		t.Errorf("partial archive left on disk: %v", files)
	}
}

func TestBackupCorruptArchiveDeleted(t *testing.T) {
	cfg := testConfig(t, 5)
	fa := &fakeArchiver{payload: map[string][]byte{"db_data": []byte("not a gzip stream")}}
	m, err := NewManager(cfg, fa)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Backup(context.Background(), "db_data"); !errors.Is(err, archive.ErrCorruptArchive) {
		t.Fatalf("err = %v, want ErrCorruptArchive", err)
	}

	if files := archiveFiles(t, cfg, "db_data"); len(files) != 0 {
		t.Errorf("corrupt archive left on disk: %v", files)
	}
}

func TestBackupRotatesHistory(t *testing.T) {
	cfg := testConfig(t, 2)
	m, err := NewManager(cfg, &fakeArchiver{})
	if err != nil {
		t.Fatal(err)
	}

	// pre-seed two older archives so the third backup pushes one out
	dir, err := archive.Dir(cfg.BackupDirectory, "app_data")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, ts := range []string{"20200101_000000", "20200102_000000"} {
		name, err := archive.Filename("app_data", ts)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), validTarGz(), 0644); err != nil {
			t.Fatal(err)
		}
	}

	a, err := m.Backup(context.Background(), "app_data")
	if err != nil {
		t.Fatal(err)
	}

	remaining, err := archive.List(cfg.BackupDirectory, "app_data")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 2 {
		t.Fatalf("%d archives remain, want 2", len(remaining))
	}
	if remaining[0].Timestamp != a.Timestamp {
		t.Errorf("newest archive is %s, want the fresh backup %s", remaining[0].Timestamp, a.Timestamp)
	}
	if remaining[1].Timestamp != "20200102_000000" {
		t.Errorf("second archive is %s, want 20200102_000000", remaining[1].Timestamp)
	}
}

func TestBackupRecordsRegistry(t *testing.T) {
	cfg := testConfig(t, 5)
	m, err := NewManager(cfg, &fakeArchiver{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Backup(context.Background(), "my/app_data"); err != nil {
		t.Fatal(err)
	}

	registry, err := archive.LoadRegistry(cfg.BackupDirectory)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := registry.Original("my_app_data"); !ok || got != "my/app_data" {
		t.Errorf("registry lookup = %q, %v; want original name", got, ok)
	}
}

func TestBackupAllIsolatesFailures(t *testing.T) {
	cfg := testConfig(t, 5)
	fa := &fakeArchiver{fail: map[string]bool{"logs": true}}
	m, err := NewManager(cfg, fa)
	if err != nil {
		t.Fatal(err)
	}

	result := m.BackupAll(context.Background(), []string{"app_data", "logs", "db_data"})

	if len(result.Succeeded) != 2 {
		t.Errorf("%d succeeded, want 2", len(result.Succeeded))
	}
	if len(result.Failed) != 1 || result.Failed[0].VolumeName != "logs" {
		t.Errorf("Failed = %+v, want just logs", result.Failed)
	}
	if result.Err() == nil {
		t.Error("batch with a failure reported overall success")
	}
	if len(fa.calls) != 3 {
		t.Errorf("archiver called %d times, want 3 (failure must not abort siblings)", len(fa.calls))
	}

	if files := archiveFiles(t, cfg, "logs"); len(files) != 0 {
		t.Errorf("failed volume left archives: %v", files)
	}
	if files := archiveFiles(t, cfg, "db_data"); len(files) != 1 {
		t.Errorf("sibling volume has %d archives, want 1", len(files))
	}
}

func TestBackupAllEmptySet(t *testing.T) {
	cfg := testConfig(t, 5)
	m, err := NewManager(cfg, &fakeArchiver{})
	if err != nil {
		t.Fatal(err)
	}

	result := m.BackupAll(context.Background(), nil)
	if result.Err() != nil {
		t.Errorf("empty batch should succeed, got %v", result.Err())
	}
}
