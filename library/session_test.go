package library

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	mgr, err := NewManager(filepath.Join(dir, "lib.db"))
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// runSession feeds scripted input to a session and returns everything it
// printed. Input lines stand in for keyboard entry, passwords included.
func runSession(t *testing.T, mgr *Manager, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	s := NewSession(mgr, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	if err := s.Run(); err != nil {
		t.Fatalf("session: %v", err)
	}
	return out.String()
}

func TestSignupThenLogin(t *testing.T) {
	mgr := newManager(t)

	out := runSession(t, mgr,
		"2", "alice", "pw", // sign up
		"1", "alice", "pw", // log in
		"7", // log out
		"3", // exit
	)

	if !strings.Contains(out, "Account created successfully! You can now log in, alice.") {
		t.Fatalf("missing signup confirmation:\n%s", out)
	}
	if !strings.Contains(out, "Welcome back, alice!") {
		t.Fatalf("missing login greeting:\n%s", out)
	}
	if !strings.Contains(out, "Logging out...") {
		t.Fatalf("missing logout:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("missing exit message:\n%s", out)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "wrong",
		"1", "ghost", "pw",
		"3",
	)

	if strings.Count(out, "Invalid username or password. Please try again.") != 2 {
		t.Fatalf("both attempts should be rejected:\n%s", out)
	}
	if strings.Contains(out, "Welcome back") {
		t.Fatalf("nobody should log in:\n%s", out)
	}
}

func TestSignupRejectsDuplicateUsername(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr, "2", "alice", "other", "3")

	if !strings.Contains(out, "Username already exists. Please choose a different one.") {
		t.Fatalf("duplicate signup should be rejected:\n%s", out)
	}
}

func TestSignupRejectsEmptyPassword(t *testing.T) {
	mgr := newManager(t)

	out := runSession(t, mgr, "2", "alice", "", "3")

	if !strings.Contains(out, "password cannot be empty") {
		t.Fatalf("empty password should be rejected:\n%s", out)
	}
	users, _ := mgr.Users()
	if len(users) != 0 {
		t.Fatalf("no user should be created, got %v", users)
	}
}

func TestInvalidMenuChoicesReprompt(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"9",                // bad top-level choice
		"1", "alice", "pw", // log in
		"0", // bad per-user choice
		"7",
		"3",
	)

	if !strings.Contains(out, "Invalid choice. Please enter 1, 2, or 3.") {
		t.Fatalf("top-level invalid choice not reported:\n%s", out)
	}
	if !strings.Contains(out, "Invalid choice. Please enter a valid option.") {
		t.Fatalf("per-user invalid choice not reported:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("session should survive bad choices:\n%s", out)
	}
}

func TestBorrowAndReturnBook(t *testing.T) {
	mgr := newManager(t)
	bookID, err := mgr.AddBook("Dune", "Herbert", "SciFi")
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3", "1", // borrow book 1
		"1",      // view list
		"5", "1", // return book 1
		"1", // view empty list
		"7",
		"3",
	)

	if !strings.Contains(out, "Book added to your list!") {
		t.Fatalf("borrow not confirmed:\n%s", out)
	}
	if !strings.Contains(out, "Dune") {
		t.Fatalf("book listing missing title:\n%s", out)
	}
	if !strings.Contains(out, "Book removed from your list.") {
		t.Fatalf("return not confirmed:\n%s", out)
	}
	if !strings.Contains(out, "You have no books in your list.") {
		t.Fatalf("final listing should be empty:\n%s", out)
	}

	books, _ := mgr.UserBooks(1)
	if len(books) != 0 {
		t.Fatalf("book %d should be returned, got %v", bookID, books)
	}
}

func TestBorrowAndReturnVideo(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.AddVideo("Alien", "Horror", "Ridley Scott", "1979-05-25"); err != nil {
		t.Fatalf("add video: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"4", "1", // borrow video 1
		"2",      // view list
		"6", "1", // return video 1
		"7",
		"3",
	)

	if !strings.Contains(out, "Video added to your list!") {
		t.Fatalf("borrow not confirmed:\n%s", out)
	}
	if !strings.Contains(out, "Ridley Scott") {
		t.Fatalf("video listing missing director:\n%s", out)
	}
	if !strings.Contains(out, "Video removed from your list.") {
		t.Fatalf("return not confirmed:\n%s", out)
	}
}

func TestBorrowMalformedIDKeepsSessionAlive(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.AddBook("Dune", "Herbert", "SciFi"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3", "abc", // malformed id
		"7",
		"3",
	)

	if !strings.Contains(out, "Invalid book ID: abc") {
		t.Fatalf("malformed id not reported:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Fatalf("session should survive malformed input:\n%s", out)
	}
}

func TestBorrowCancel(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.AddBook("Dune", "Herbert", "SciFi"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3", "0", // cancel borrow
		"7",
		"3",
	)

	if !strings.Contains(out, "Add book cancelled.") {
		t.Fatalf("cancel not acknowledged:\n%s", out)
	}
	books, _ := mgr.UserBooks(1)
	if len(books) != 0 {
		t.Fatalf("cancelled borrow must not link, got %v", books)
	}
}

func TestReturnRejectsIDNotOnList(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.AddBook("Dune", "Herbert", "SciFi"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.AddBook("1984", "Orwell", "Dystopia"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3", "1", // borrow book 1
		"5", "2", // try to return book 2, which is not on the list
		"7",
		"3",
	)

	if !strings.Contains(out, "Invalid book ID. Please try again.") {
		t.Fatalf("off-list return should be rejected:\n%s", out)
	}
	books, _ := mgr.UserBooks(1)
	if len(books) != 1 {
		t.Fatalf("book 1 must stay linked, got %v", books)
	}
}

func TestBorrowWithEmptyCatalog(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3",
		"4",
		"5",
		"6",
		"7",
		"3",
	)

	if !strings.Contains(out, "No available books to add.") {
		t.Fatalf("empty book catalog not reported:\n%s", out)
	}
	if !strings.Contains(out, "No available videos to add.") {
		t.Fatalf("empty video catalog not reported:\n%s", out)
	}
	if !strings.Contains(out, "You have no books to remove.") {
		t.Fatalf("empty return list not reported:\n%s", out)
	}
	if !strings.Contains(out, "You have no videos to remove.") {
		t.Fatalf("empty video return list not reported:\n%s", out)
	}
}

func TestBorrowedItemLeavesAvailableSet(t *testing.T) {
	mgr := newManager(t)
	if _, err := mgr.AddBook("Dune", "Herbert", "SciFi"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.AddBook("1984", "Orwell", "Dystopia"); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := mgr.CreateUser("alice", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}

	out := runSession(t, mgr,
		"1", "alice", "pw",
		"3", "1", // borrow Dune
		"3", "0", // open the borrow menu again, then cancel
		"7",
		"3",
	)

	// The second "Available Books" listing must not offer Dune again.
	second := out[strings.LastIndex(out, "Available Books:"):]
	if strings.Contains(second, "Dune") {
		t.Fatalf("borrowed book still offered:\n%s", second)
	}
	if !strings.Contains(second, "1984") {
		t.Fatalf("unborrowed book missing:\n%s", second)
	}
}
