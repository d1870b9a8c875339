// Package archive keeps a catalogue of progressive meshes in a SQLite
// database. Meshes are stored in the binary PMB encoding.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/myronyliu/Rainbow-Cow/internal/logger"
	"github.com/myronyliu/Rainbow-Cow/pkg/formats"
)

// FormatVersion is the schema version written to new archives.
const FormatVersion = 1

// Archive errors.
var (
	ErrNotFound  = errors.New("archive entry not found")
	ErrEmptyName = errors.New("archive entry name is empty")
	ErrClosed    = errors.New("archive is closed")
)

// Entry is one stored progressive mesh.
type Entry struct {
	Name         string `gorm:"primaryKey"`
	FullVertices int
	FullFaces    int
	BaseVertices int `gorm:"index"`
	BaseFaces    int
	Collapses    int
	Data         []byte // PMB encoding
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Metadata holds archive-wide key/value settings.
type Metadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// listColumns are the Entry columns loaded by List.
var listColumns = []string{
	"name", "full_vertices", "full_faces", "base_vertices", "base_faces",
	"collapses", "created_at", "updated_at",
}

// Archive is an open catalogue.
type Archive struct {
	db   *gorm.DB
	path string
}

// Open opens or creates the archive at path and migrates its schema.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}, &Metadata{}); err != nil {
		return nil, fmt.Errorf("migrating archive %s: %w", path, err)
	}
	if err := db.Save(&Metadata{Key: "FormatVersion", Value: strconv.Itoa(FormatVersion)}).Error; err != nil {
		return nil, fmt.Errorf("writing archive metadata: %w", err)
	}

	logger.Info("archive opened", zap.String("path", path))
	return &Archive{db: db, path: path}, nil
}

// Path returns the database file of the archive.
func (a *Archive) Path() string { return a.path }

// Close releases the database handle.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	a.db = nil
	return sqlDB.Close()
}

// Put stores pm under name, replacing any entry with the same name.
func (a *Archive) Put(name string, pm *formats.PM) (*Entry, error) {
	if a.db == nil {
		return nil, ErrClosed
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if err := pm.Validate(); err != nil {
		return nil, fmt.Errorf("archiving %s: %w", name, err)
	}

	e := &Entry{
		Name:         name,
		FullVertices: pm.FullVertices,
		FullFaces:    pm.FullFaces,
		BaseVertices: len(pm.Vertices),
		BaseFaces:    len(pm.Faces),
		Collapses:    len(pm.Records),
		Data:         formats.MarshalPMB(pm),
	}
	var old Entry
	if err := a.db.Select("created_at").First(&old, "name = ?", name).Error; err == nil {
		e.CreatedAt = old.CreatedAt
	}
	if err := a.db.Save(e).Error; err != nil {
		return nil, fmt.Errorf("archiving %s: %w", name, err)
	}

	logger.Info("progressive mesh archived",
		zap.String("name", name),
		zap.Int("collapses", e.Collapses),
		zap.Int("bytes", len(e.Data)))
	return e, nil
}

// Get loads and decodes the entry stored under name.
func (a *Archive) Get(name string) (*formats.PM, *Entry, error) {
	if a.db == nil {
		return nil, nil, ErrClosed
	}
	var e Entry
	if err := a.db.First(&e, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("loading %s: %w", name, err)
	}
	pm, err := formats.ParsePMB(e.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return pm, &e, nil
}

// List returns every entry ordered by name, without mesh data.
func (a *Archive) List() ([]Entry, error) {
	if a.db == nil {
		return nil, ErrClosed
	}
	var entries []Entry
	if err := a.db.Select(listColumns).Order("name").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	return entries, nil
}

// Delete removes the entry stored under name.
func (a *Archive) Delete(name string) error {
	if a.db == nil {
		return ErrClosed
	}
	res := a.db.Delete(&Entry{}, "name = ?", name)
	if res.Error != nil {
		return fmt.Errorf("deleting %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	logger.Info("archive entry deleted", zap.String("name", name))
	return nil
}

// Version returns the schema version recorded in the archive.
func (a *Archive) Version() (int, error) {
	if a.db == nil {
		return 0, ErrClosed
	}
	var m Metadata
	if err := a.db.First(&m, "key = ?", "FormatVersion").Error; err != nil {
		return 0, err
	}
	return strconv.Atoi(m.Value)
}
