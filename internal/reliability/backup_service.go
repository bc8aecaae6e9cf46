package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// ObjectStore is the slice of the S3 client the backup service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// archivePrefix names backup objects; the timestamp between the prefix and
// the .tar.gz suffix orders them.
const archivePrefix = "folioplan-backup-"

const archiveTimeLayout = "2006-01-02-150405"

// minBackupsToKeep bounds pruning regardless of the configured retention.
const minBackupsToKeep = 3

// Database is the slice of the database wrapper the backup service needs.
type Database interface {
	Name() string
	BackupTo(destPath string) error
}

// BackupMetadata describes the databases inside one archive.
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes one database file in a backup.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo summarizes one stored backup archive.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// BackupService archives all databases into a tar.gz and uploads it to an
// S3-compatible bucket, keeping only the newest archives.
type BackupService struct {
	s3        ObjectStore
	databases []Database
	dataDir   string
	keep      int
	log       zerolog.Logger
}

// NewBackupService creates a backup service keeping the newest keep archives.
func NewBackupService(s3 ObjectStore, databases []Database, dataDir string, keep int, log zerolog.Logger) *BackupService {
	if keep < minBackupsToKeep {
		keep = minBackupsToKeep
	}
	return &BackupService{
		s3:        s3,
		databases: databases,
		dataDir:   dataDir,
		keep:      keep,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// Run creates, uploads and prunes backups. This is the scheduled entry point.
func (s *BackupService) Run(ctx context.Context) error {
	if err := s.CreateAndUpload(ctx); err != nil {
		return err
	}
	return s.Prune(ctx)
}

// CreateAndUpload snapshots every database into a staging directory, bundles
// them with a metadata file and uploads the archive.
func (s *BackupService) CreateAndUpload(ctx context.Context) error {
	start := time.Now()
	s.log.Info().Msg("Starting backup")

	stagingDir := filepath.Join(s.dataDir, "backup-staging")
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	var files []string
	for _, db := range s.databases {
		filename := db.Name() + ".db"
		dbPath := filepath.Join(stagingDir, filename)

		if err := db.BackupTo(dbPath); err != nil {
			return fmt.Errorf("failed to back up %s: %w", db.Name(), err)
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s backup: %w", db.Name(), err)
		}

		checksum, err := checksumFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s backup: %w", db.Name(), err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      db.Name(),
			Filename:  filename,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		files = append(files, filename)
	}

	metadataFile := "backup-metadata.json"
	if err := writeMetadata(filepath.Join(stagingDir, metadataFile), metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	files = append(files, metadataFile)

	archiveName := archivePrefix + time.Now().Format(archiveTimeLayout) + ".tar.gz"
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, files); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archive, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := s.s3.Upload(ctx, archiveName, archive); err != nil {
		return err
	}

	info, _ := os.Stat(archivePath)
	s.log.Info().
		Str("archive", archiveName).
		Int64("size_bytes", info.Size()).
		Dur("duration", time.Since(start)).
		Msg("Backup uploaded")

	return nil
}

// ListBackups returns stored archives, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.s3.List(ctx, archivePrefix)
	if err != nil {
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := *obj.Key
		raw := strings.TrimSuffix(strings.TrimPrefix(filename, archivePrefix), ".tar.gz")
		timestamp, err := time.Parse(archiveTimeLayout, raw)
		if err != nil {
			s.log.Warn().Str("filename", filename).Msg("Skipping object with unparsable timestamp")
			continue
		}

		var size int64
		if obj.Size != nil {
			size = *obj.Size
		}

		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: size,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// Prune deletes archives beyond the configured retention count.
func (s *BackupService) Prune(ctx context.Context) error {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}

	deleted := 0
	for i := s.keep; i < len(backups); i++ {
		if err := s.s3.Delete(ctx, backups[i].Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backups[i].Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Int("kept", len(backups)-deleted).Msg("Pruned old backups")
	}

	return nil
}

func checksumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata BackupMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func createArchive(archivePath, sourceDir string, filenames []string) error {
	archive, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archive.Close()

	gzipWriter := gzip.NewWriter(archive)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, filename := range filenames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, filename), filename); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", filename, err)
		}
	}

	return nil
}

func addFileToArchive(tarWriter *tar.Writer, path, nameInArchive string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
