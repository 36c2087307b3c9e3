package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/RachedNaguez/PcBuilder/internal/model"
	"github.com/RachedNaguez/PcBuilder/pkg/logger"
)

// DiskStorage keeps one JSON file per session under dataDir/sessions plus
// a sessions.json index, with a bounded in-memory cache of hot sessions.
type DiskStorage struct {
	dataDir   string
	mu        sync.RWMutex
	cache     map[string]*model.Session
	cacheSize int
}

type sessionIndexEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewDiskStorage(dataDir string, cacheSize int) *DiskStorage {
	if cacheSize <= 0 {
		cacheSize = 100
	}
	return &DiskStorage{
		dataDir:   dataDir,
		cache:     make(map[string]*model.Session),
		cacheSize: cacheSize,
	}
}

func (d *DiskStorage) Init() error {
	for _, dir := range []string{
		d.dataDir,
		filepath.Join(d.dataDir, "sessions"),
		filepath.Join(d.dataDir, "backup"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageInit, err)
		}
	}

	indexes, err := d.loadIndex()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageInit, err)
	}

	for _, index := range indexes {
		if len(d.cache) >= d.cacheSize {
			break
		}
		session, err := d.loadSessionFromFile(index.ID)
		if err != nil {
			logger.Errorf("Failed to load session %s: %v", index.ID, err)
			continue
		}
		d.cache[index.ID] = session
	}

	logger.Infof("Disk storage initialized with %d cached sessions", len(d.cache))
	return nil
}

// Close snapshots the data directory so a restart can recover from a
// half-written index.
func (d *DiskStorage) Close() error {
	return d.Backup()
}

// Backup copies the session files and the index into a timestamped
// directory under dataDir/backup.
func (d *DiskStorage) Backup() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	backupDir := filepath.Join(d.dataDir, "backup", fmt.Sprintf("backup_%d", time.Now().Unix()))
	sessionsDst := filepath.Join(backupDir, "sessions")
	if err := os.MkdirAll(sessionsDst, 0755); err != nil {
		return err
	}

	entries, err := os.ReadDir(filepath.Join(d.dataDir, "sessions"))
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(d.dataDir, "sessions", entry.Name())
		if err := copyFile(src, filepath.Join(sessionsDst, entry.Name())); err != nil {
			return err
		}
	}

	if err := copyFile(d.indexPath(), filepath.Join(backupDir, "sessions.json")); err != nil {
		return err
	}

	logger.Infof("Backup completed: %s", backupDir)
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func (d *DiskStorage) indexPath() string {
	return filepath.Join(d.dataDir, "sessions.json")
}

func (d *DiskStorage) sessionPath(sessionID string) string {
	return filepath.Join(d.dataDir, "sessions", sessionID+".json")
}

func (d *DiskStorage) loadIndex() ([]*sessionIndexEntry, error) {
	data, err := os.ReadFile(d.indexPath())
	if os.IsNotExist(err) {
		return nil, d.saveIndex(nil)
	}
	if err != nil {
		return nil, err
	}

	var indexes []*sessionIndexEntry
	if err := json.Unmarshal(data, &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

func (d *DiskStorage) saveIndex(indexes []*sessionIndexEntry) error {
	if indexes == nil {
		indexes = []*sessionIndexEntry{}
	}
	data, err := json.MarshalIndent(indexes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.indexPath(), data, 0644)
}

func (d *DiskStorage) loadSessionFromFile(sessionID string) (*model.Session, error) {
	data, err := os.ReadFile(d.sessionPath(sessionID))
	if err != nil {
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &session, nil
}

func (d *DiskStorage) saveSessionToFile(session *model.Session) error {
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(d.sessionPath(session.ID), data, 0644)
}

// rebuildIndex rewrites the index from the cache and the session files on
// disk. Called with the write lock held.
func (d *DiskStorage) rebuildIndex() error {
	entries, err := os.ReadDir(filepath.Join(d.dataDir, "sessions"))
	if err != nil {
		return err
	}

	indexes := make([]*sessionIndexEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		session, ok := d.cache[id]
		if !ok {
			session, err = d.loadSessionFromFile(id)
			if err != nil {
				logger.Warnf("Skipping unreadable session file %s: %v", entry.Name(), err)
				continue
			}
		}
		indexes = append(indexes, &sessionIndexEntry{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}

	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i].UpdatedAt.After(indexes[j].UpdatedAt)
	})
	return d.saveIndex(indexes)
}

// evictIfNeeded drops the stalest cached session once the cache is full.
// Called with the write lock held; evicted sessions stay on disk.
func (d *DiskStorage) evictIfNeeded() {
	if len(d.cache) < d.cacheSize {
		return
	}
	var oldestID string
	var oldest time.Time
	for id, session := range d.cache {
		if oldestID == "" || session.UpdatedAt.Before(oldest) {
			oldestID = id
			oldest = session.UpdatedAt
		}
	}
	if oldestID != "" {
		delete(d.cache, oldestID)
	}
}

func (d *DiskStorage) CreateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.saveSessionToFile(session); err != nil {
		return err
	}
	d.evictIfNeeded()
	d.cache[session.ID] = session
	return d.rebuildIndex()
}

func (d *DiskStorage) GetSession(sessionID string) (*model.Session, error) {
	d.mu.RLock()
	if session, ok := d.cache[sessionID]; ok {
		d.mu.RUnlock()
		return session, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if session, ok := d.cache[sessionID]; ok {
		return session, nil
	}
	session, err := d.loadSessionFromFile(sessionID)
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	d.evictIfNeeded()
	d.cache[sessionID] = session
	return session, nil
}

func (d *DiskStorage) UpdateSession(session *model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := os.Stat(d.sessionPath(session.ID)); os.IsNotExist(err) {
		return ErrSessionNotFound
	}
	if err := d.saveSessionToFile(session); err != nil {
		return err
	}
	d.cache[session.ID] = session
	return d.rebuildIndex()
}

func (d *DiskStorage) DeleteSession(sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := os.Remove(d.sessionPath(sessionID))
	if os.IsNotExist(err) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	delete(d.cache, sessionID)
	return d.rebuildIndex()
}

func (d *DiskStorage) ListSessions() ([]*model.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(d.dataDir, "sessions"))
	if err != nil {
		return nil, err
	}

	sessions := make([]*model.Session, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		if session, ok := d.cache[id]; ok {
			sessions = append(sessions, session)
			continue
		}
		session, err := d.loadSessionFromFile(id)
		if err != nil {
			logger.Warnf("Skipping unreadable session file %s: %v", entry.Name(), err)
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}
