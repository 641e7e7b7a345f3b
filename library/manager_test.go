package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImportBooksCSV(t *testing.T) {
	mgr := newManager(t)

	csvPath := filepath.Join(t.TempDir(), "books.csv")
	data := "Dune,Frank Herbert,SciFi\n1984,George Orwell,Dystopia\n"
	if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	n, err := mgr.ImportBooksCSV(csvPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 imported, got %d", n)
	}

	books, err := mgr.AllBooks()
	if err != nil {
		t.Fatalf("all books: %v", err)
	}
	if len(books) != 2 || books[0].Name != "Dune" || books[1].Author != "George Orwell" {
		t.Fatalf("unexpected catalog %v", books)
	}
}

func TestImportVideosCSV(t *testing.T) {
	mgr := newManager(t)

	csvPath := filepath.Join(t.TempDir(), "videos.csv")
	data := "Alien,Horror,Ridley Scott,1979-05-25\n"
	if err := os.WriteFile(csvPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	n, err := mgr.ImportVideosCSV(csvPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 imported, got %d", n)
	}

	videos, err := mgr.AllVideos()
	if err != nil {
		t.Fatalf("all videos: %v", err)
	}
	if len(videos) != 1 || videos[0].DatePublished != "1979-05-25" {
		t.Fatalf("unexpected catalog %v", videos)
	}
}

func TestImportBooksCSVRejectsShortRows(t *testing.T) {
	mgr := newManager(t)

	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(csvPath, []byte("only,two\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	if _, err := mgr.ImportBooksCSV(csvPath); err == nil {
		t.Fatalf("short row should fail")
	}
}

func TestManagerRoundTrip(t *testing.T) {
	mgr := newManager(t)

	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	user, err := mgr.Authenticate("alice", "pw")
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	bookID, err := mgr.AddBook("Dune", "Herbert", "SciFi")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := mgr.LinkBookToUser(user.ID, bookID); err != nil {
		t.Fatalf("link: %v", err)
	}
	books, err := mgr.UserBooks(user.ID)
	if err != nil {
		t.Fatalf("user books: %v", err)
	}
	if len(books) != 1 || books[0].Name != "Dune" {
		t.Fatalf("unexpected list %v", books)
	}
}
