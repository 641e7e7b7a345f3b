package library

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manager is a thin façade over the Database, keeping CLI code simple.
type Manager struct {
	db *Database
}

// NewManager opens (or creates) the SQLite database at dbPath.
func NewManager(dbPath string) (*Manager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// OpenManager opens the store for the given driver. For SQLite, dsn is the
// database file path.
func OpenManager(driver, dsn string) (*Manager, error) {
	if driver == DriverSQLite {
		return NewManager(dsn)
	}
	db, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// Close closes the underlying database.
func (m *Manager) Close() error { return m.db.Close() }

// ------------------ Account helpers ------------------

func (m *Manager) CreateUser(username, password string) (int64, error) {
	return m.db.CreateUser(username, password)
}

func (m *Manager) Users() ([]*User, error) { return m.db.Users() }

func (m *Manager) Authenticate(username, password string) (*User, error) {
	return m.db.Authenticate(username, password)
}

func (m *Manager) UsernameTaken(username string) (bool, error) {
	return m.db.UsernameTaken(username)
}

// ------------------ Catalog helpers ------------------

func (m *Manager) AddBook(name, author, genre string) (int64, error) {
	return m.db.AddBook(name, author, genre)
}

func (m *Manager) AddVideo(name, genre, director, datePublished string) (int64, error) {
	return m.db.AddVideo(name, genre, director, datePublished)
}

func (m *Manager) AllBooks() ([]*Book, error)   { return m.db.AllBooks() }
func (m *Manager) AllVideos() ([]*Video, error) { return m.db.AllVideos() }

// ImportBooksCSV loads books from a CSV file with name,author,genre rows and
// returns how many were inserted.
func (m *Manager) ImportBooksCSV(path string) (int, error) {
	return m.importCSV(path, 3, func(rec []string) error {
		_, err := m.db.AddBook(rec[0], rec[1], rec[2])
		return err
	})
}

// ImportVideosCSV loads videos from a CSV file with
// name,genre,director,date_published rows.
func (m *Manager) ImportVideosCSV(path string) (int, error) {
	return m.importCSV(path, 4, func(rec []string) error {
		_, err := m.db.AddVideo(rec[0], rec[1], rec[2], rec[3])
		return err
	})
}

func (m *Manager) importCSV(path string, fields int, insert func([]string) error) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("read %s: %w", path, err)
		}
		if err := insert(rec); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ------------------ Circulation helpers ------------------

func (m *Manager) AvailableBooks(userID int64) ([]*Book, error) {
	return m.db.AvailableBooks(userID)
}

func (m *Manager) AvailableVideos(userID int64) ([]*Video, error) {
	return m.db.AvailableVideos(userID)
}

func (m *Manager) UserBooks(userID int64) ([]*Book, error) { return m.db.UserBooks(userID) }

func (m *Manager) UserVideos(userID int64) ([]*Video, error) { return m.db.UserVideos(userID) }

func (m *Manager) LinkBookToUser(userID, bookID int64) error {
	return m.db.LinkBookToUser(userID, bookID)
}

func (m *Manager) LinkVideoToUser(userID, videoID int64) error {
	return m.db.LinkVideoToUser(userID, videoID)
}

func (m *Manager) UnlinkBookFromUser(userID, bookID int64) error {
	return m.db.UnlinkBookFromUser(userID, bookID)
}

func (m *Manager) UnlinkVideoFromUser(userID, videoID int64) error {
	return m.db.UnlinkVideoFromUser(userID, videoID)
}
