package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Database provides high-level helpers around a SQL connection. All queries
// use bound parameters; no SQL is ever built from user input.
type Database struct {
	db     *sql.DB
	driver string

	addUserStmt  *sql.Stmt
	addBookStmt  *sql.Stmt
	addVideoStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	return Open(DriverSQLite, dsn)
}

// Open connects with an explicit driver and data source. Use NewDatabase for
// the common SQLite case.
func Open(driver, dsn string) (*Database, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	database := &Database{db: db, driver: driver}
	if err := database.applyMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addUserStmt != nil {
		d.addUserStmt.Close()
	}
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	if d.addVideoStmt != nil {
		d.addVideoStmt.Close()
	}
	return d.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (d *Database) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var result strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&result, "$%d", argNum)
			argNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// isConflict recognizes uniqueness violations from both drivers.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func (d *Database) applyMigrations() error {
	if d.driver == DriverSQLite {
		// WAL improves write concurrency.
		if _, err := d.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}

	if _, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = d.db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range d.schemaStatements() {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(d.rebind(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`), fmt.Sprint(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// schemaStatements yields the DDL for the configured driver. The two variants
// differ only in how generated ids are declared.
func (d *Database) schemaStatements() []string {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.driver == DriverPostgres {
		id = "SERIAL PRIMARY KEY"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
            user_id %s,
            username TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            video_list_id INTEGER
        );`, id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS books (
            book_id %s,
            book_name TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL
        );`, id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS videos (
            video_id %s,
            video_name TEXT NOT NULL,
            genre TEXT NOT NULL,
            director TEXT NOT NULL,
            date_published TEXT NOT NULL
        );`, id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS book_list (
            book_list_id %s,
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id)
        );`, id),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS video_list (
            video_list_id %s,
            user_id INTEGER NOT NULL UNIQUE REFERENCES users(user_id)
        );`, id),
		`CREATE TABLE IF NOT EXISTS book_slots (
            book_list_id INTEGER NOT NULL REFERENCES book_list(book_list_id),
            book_id INTEGER NOT NULL REFERENCES books(book_id),
            UNIQUE(book_list_id, book_id)
        );`,
		`CREATE TABLE IF NOT EXISTS video_slots (
            video_list_id INTEGER NOT NULL REFERENCES video_list(video_list_id),
            video_id INTEGER NOT NULL REFERENCES videos(video_id),
            UNIQUE(video_list_id, video_id)
        );`,
	}
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addUserStmt, err = d.prepareInsert(`INSERT INTO users(username,password) VALUES(?,?)`, "user_id"); err != nil {
		return err
	}
	if d.addBookStmt, err = d.prepareInsert(`INSERT INTO books(book_name,author,genre) VALUES(?,?,?)`, "book_id"); err != nil {
		return err
	}
	if d.addVideoStmt, err = d.prepareInsert(`INSERT INTO videos(video_name,genre,director,date_published) VALUES(?,?,?,?)`, "video_id"); err != nil {
		return err
	}
	return nil
}

// prepareInsert appends a RETURNING clause for PostgreSQL, which has no
// LastInsertId support.
func (d *Database) prepareInsert(query, idColumn string) (*sql.Stmt, error) {
	if d.driver == DriverPostgres {
		query += " RETURNING " + idColumn
	}
	return d.db.Prepare(d.rebind(query))
}

func (d *Database) execInsert(stmt *sql.Stmt, args ...any) (int64, error) {
	if d.driver == DriverPostgres {
		var id int64
		err := stmt.QueryRow(args...).Scan(&id)
		return id, err
	}
	res, err := stmt.Exec(args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// insertReturningID is the ad-hoc counterpart of execInsert.
func (d *Database) insertReturningID(query, idColumn string, args ...any) (int64, error) {
	if d.driver == DriverPostgres {
		var id int64
		err := d.db.QueryRow(d.rebind(query+" RETURNING "+idColumn), args...).Scan(&id)
		return id, err
	}
	res, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// CreateUser inserts a new account and commits. Empty usernames or passwords
// are rejected before touching the store; duplicate usernames surface as a
// ConflictError from the UNIQUE constraint.
func (d *Database) CreateUser(username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, &ValidationError{Msg: "username cannot be empty"}
	}
	if strings.TrimSpace(password) == "" {
		return 0, &ValidationError{Msg: "password cannot be empty"}
	}

	id, err := d.execInsert(d.addUserStmt, username, password)
	if err != nil {
		if isConflict(err) {
			return 0, &ConflictError{Msg: fmt.Sprintf("username %q is already taken", username)}
		}
		return 0, &StoreError{Op: "create user", Err: err}
	}
	return id, nil
}

// Users returns all accounts in insertion order. Passwords are not loaded.
func (d *Database) Users() ([]*User, error) {
	rows, err := d.db.Query(`SELECT user_id, username FROM users ORDER BY user_id`)
	if err != nil {
		return nil, &StoreError{Op: "list users", Err: err}
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, &StoreError{Op: "list users", Err: err}
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

// Authenticate looks up an exact username/password match. A miss yields
// ErrInvalidCredentials, never a partial result.
func (d *Database) Authenticate(username, password string) (*User, error) {
	var u User
	err := d.db.QueryRow(d.rebind(`SELECT user_id, username, COALESCE(video_list_id, 0)
        FROM users WHERE username = ? AND password = ?`), username, password).
		Scan(&u.ID, &u.Username, &u.VideoListID)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &StoreError{Op: "authenticate", Err: err}
	}
	return &u, nil
}

// UsernameTaken reports whether an account with the given username exists.
func (d *Database) UsernameTaken(username string) (bool, error) {
	var taken bool
	err := d.db.QueryRow(d.rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`), username).Scan(&taken)
	if err != nil {
		return false, &StoreError{Op: "check username", Err: err}
	}
	return taken, nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// AddBook inserts a catalog book. Only the seeding tool calls this; the
// interactive session treats the catalog as read-only.
func (d *Database) AddBook(name, author, genre string) (int64, error) {
	id, err := d.execInsert(d.addBookStmt, name, author, genre)
	if err != nil {
		return 0, &StoreError{Op: "add book", Err: err}
	}
	return id, nil
}

// AddVideo inserts a catalog video.
func (d *Database) AddVideo(name, genre, director, datePublished string) (int64, error) {
	id, err := d.execInsert(d.addVideoStmt, name, genre, director, datePublished)
	if err != nil {
		return 0, &StoreError{Op: "add video", Err: err}
	}
	return id, nil
}

// AllBooks returns the full book catalog.
func (d *Database) AllBooks() ([]*Book, error) {
	return d.queryBooks(`SELECT book_id, book_name, author, genre FROM books ORDER BY book_id`)
}

// AllVideos returns the full video catalog.
func (d *Database) AllVideos() ([]*Video, error) {
	return d.queryVideos(`SELECT video_id, video_name, genre, director, date_published FROM videos ORDER BY video_id`)
}

// ---------------------------------------------------------------------------
// Availability and per-user lists
// ---------------------------------------------------------------------------

// AvailableBooks returns every book absent from the user's slot table. The
// set-difference subquery keeps results duplicate-free; a user without a book
// list sees the whole catalog.
func (d *Database) AvailableBooks(userID int64) ([]*Book, error) {
	return d.queryBooks(`
        SELECT b.book_id, b.book_name, b.author, b.genre
        FROM books b
        WHERE b.book_id NOT IN (
            SELECT bs.book_id
            FROM book_slots bs
            JOIN book_list bl ON bs.book_list_id = bl.book_list_id
            WHERE bl.user_id = ?
        )
        ORDER BY b.book_id`, userID)
}

// AvailableVideos returns every video absent from the user's slot table.
func (d *Database) AvailableVideos(userID int64) ([]*Video, error) {
	return d.queryVideos(`
        SELECT v.video_id, v.video_name, v.genre, v.director, v.date_published
        FROM videos v
        WHERE v.video_id NOT IN (
            SELECT vs.video_id
            FROM video_slots vs
            JOIN video_list vl ON vs.video_list_id = vl.video_list_id
            WHERE vl.user_id = ?
        )
        ORDER BY v.video_id`, userID)
}

// UserBooks returns the books currently on the user's list. A user without a
// list gets an empty result, not an error.
func (d *Database) UserBooks(userID int64) ([]*Book, error) {
	return d.queryBooks(`
        SELECT b.book_id, b.book_name, b.author, b.genre
        FROM books b
        JOIN book_slots bs ON b.book_id = bs.book_id
        JOIN book_list bl ON bs.book_list_id = bl.book_list_id
        WHERE bl.user_id = ?
        ORDER BY b.book_id`, userID)
}

// UserVideos returns the videos currently on the user's list.
func (d *Database) UserVideos(userID int64) ([]*Video, error) {
	return d.queryVideos(`
        SELECT v.video_id, v.video_name, v.genre, v.director, v.date_published
        FROM videos v
        JOIN video_slots vs ON v.video_id = vs.video_id
        JOIN video_list vl ON vs.video_list_id = vl.video_list_id
        WHERE vl.user_id = ?
        ORDER BY v.video_id`, userID)
}

func (d *Database) queryBooks(query string, args ...any) ([]*Book, error) {
	rows, err := d.db.Query(d.rebind(query), args...)
	if err != nil {
		return nil, &StoreError{Op: "query books", Err: err}
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Name, &b.Author, &b.Genre); err != nil {
			return nil, &StoreError{Op: "query books", Err: err}
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

func (d *Database) queryVideos(query string, args ...any) ([]*Video, error) {
	rows, err := d.db.Query(d.rebind(query), args...)
	if err != nil {
		return nil, &StoreError{Op: "query videos", Err: err}
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		var v Video
		if err := rows.Scan(&v.ID, &v.Name, &v.Genre, &v.Director, &v.DatePublished); err != nil {
			return nil, &StoreError{Op: "query videos", Err: err}
		}
		videos = append(videos, &v)
	}
	return videos, rows.Err()
}

// ---------------------------------------------------------------------------
// Linking
// ---------------------------------------------------------------------------

// EnsureBookList finds the user's book list, creating it on first use. The
// operation is idempotent: repeated calls return the same list id.
func (d *Database) EnsureBookList(userID int64) (int64, error) {
	var listID int64
	err := d.db.QueryRow(d.rebind(`SELECT book_list_id FROM book_list WHERE user_id = ?`), userID).Scan(&listID)
	if err == nil {
		return listID, nil
	}
	if err != sql.ErrNoRows {
		return 0, &StoreError{Op: "find book list", Err: err}
	}

	listID, err = d.insertReturningID(`INSERT INTO book_list(user_id) VALUES(?)`, "book_list_id", userID)
	if err != nil {
		return 0, &StoreError{Op: "create book list", Err: err}
	}
	return listID, nil
}

// EnsureVideoList finds the user's video list, creating it on first use.
func (d *Database) EnsureVideoList(userID int64) (int64, error) {
	var listID int64
	err := d.db.QueryRow(d.rebind(`SELECT video_list_id FROM video_list WHERE user_id = ?`), userID).Scan(&listID)
	if err == nil {
		return listID, nil
	}
	if err != sql.ErrNoRows {
		return 0, &StoreError{Op: "find video list", Err: err}
	}

	listID, err = d.insertReturningID(`INSERT INTO video_list(user_id) VALUES(?)`, "video_list_id", userID)
	if err != nil {
		return 0, &StoreError{Op: "create video list", Err: err}
	}
	return listID, nil
}

// LinkBookToUser puts a book on the user's list, creating the list first if
// needed. Borrowing the same book twice violates the slot uniqueness
// constraint and returns a ConflictError.
func (d *Database) LinkBookToUser(userID, bookID int64) error {
	listID, err := d.EnsureBookList(userID)
	if err != nil {
		return err
	}

	if _, err := d.db.Exec(d.rebind(`INSERT INTO book_slots(book_list_id, book_id) VALUES(?,?)`), listID, bookID); err != nil {
		if isConflict(err) {
			return &ConflictError{Msg: fmt.Sprintf("book %d is already on your list", bookID)}
		}
		return &StoreError{Op: "link book", Err: err}
	}
	return nil
}

// LinkVideoToUser puts a video on the user's list.
func (d *Database) LinkVideoToUser(userID, videoID int64) error {
	listID, err := d.EnsureVideoList(userID)
	if err != nil {
		return err
	}

	if _, err := d.db.Exec(d.rebind(`INSERT INTO video_slots(video_list_id, video_id) VALUES(?,?)`), listID, videoID); err != nil {
		if isConflict(err) {
			return &ConflictError{Msg: fmt.Sprintf("video %d is already on your list", videoID)}
		}
		return &StoreError{Op: "link video", Err: err}
	}
	return nil
}

// UnlinkBookFromUser removes a book from the user's list. Removing a book
// that is not linked is a silent no-op; the catalog row is never touched.
func (d *Database) UnlinkBookFromUser(userID, bookID int64) error {
	_, err := d.db.Exec(d.rebind(`
        DELETE FROM book_slots
        WHERE book_list_id = (SELECT book_list_id FROM book_list WHERE user_id = ?)
        AND book_id = ?`), userID, bookID)
	if err != nil {
		return &StoreError{Op: "unlink book", Err: err}
	}
	return nil
}

// UnlinkVideoFromUser removes a video from the user's list.
func (d *Database) UnlinkVideoFromUser(userID, videoID int64) error {
	_, err := d.db.Exec(d.rebind(`
        DELETE FROM video_slots
        WHERE video_list_id = (SELECT video_list_id FROM video_list WHERE user_id = ?)
        AND video_id = ?`), userID, videoID)
	if err != nil {
		return &StoreError{Op: "unlink video", Err: err}
	}
	return nil
}
