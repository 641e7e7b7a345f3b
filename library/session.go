package library

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Session drives the interactive menu loop. Input and output are injected so
// the control flow can be exercised in tests without a terminal; main wires
// os.Stdin and os.Stdout.
type Session struct {
	mgr *Manager
	sc  *bufio.Scanner
	out io.Writer

	// readPassword masks input when stdin is a real terminal and falls back
	// to a plain line read otherwise. Tests rely on the fallback.
	readPassword func(prompt string) (string, bool)
}

// NewSession binds a session to a manager and an I/O pair.
func NewSession(mgr *Manager, in io.Reader, out io.Writer) *Session {
	s := &Session{
		mgr: mgr,
		sc:  bufio.NewScanner(in),
		out: out,
	}
	s.readPassword = func(prompt string) (string, bool) {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(s.out, prompt)
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(s.out)
			if err != nil {
				return "", false
			}
			return strings.TrimSpace(string(b)), true
		}
		return s.prompt(prompt)
	}
	return s
}

// Run executes the top-level menu until the user exits or input ends. A bad
// action never terminates the session; every error is reported and the menu
// re-prompts.
func (s *Session) Run() error {
	fmt.Fprintln(s.out, "Welcome! Log in to your account, or sign up to make one.")

	for {
		fmt.Fprintln(s.out, "\nMenu:")
		fmt.Fprintln(s.out, "1. Log in")
		fmt.Fprintln(s.out, "2. Sign up")
		fmt.Fprintln(s.out, "3. Exit")

		choice, ok := s.prompt("Enter your choice (1/2/3): ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			s.handleLogin()
		case "2":
			s.handleSignup()
		case "3":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

// prompt prints msg and reads one trimmed line. ok is false when input ends.
func (s *Session) prompt(msg string) (string, bool) {
	fmt.Fprint(s.out, msg)
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

func (s *Session) handleLogin() {
	username, ok := s.prompt("Enter your username: ")
	if !ok {
		return
	}
	password, ok := s.readPassword("Enter your password: ")
	if !ok {
		return
	}

	user, err := s.mgr.Authenticate(username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		fmt.Fprintln(s.out, "Invalid username or password. Please try again.")
		return
	}
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Welcome back, %s!\n", user.Username)
	s.userMenu(user)
}

func (s *Session) handleSignup() {
	username, ok := s.prompt("Choose a username: ")
	if !ok {
		return
	}
	password, ok := s.readPassword("Choose a password: ")
	if !ok {
		return
	}

	taken, err := s.mgr.UsernameTaken(username)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if taken {
		fmt.Fprintln(s.out, "Username already exists. Please choose a different one.")
		return
	}

	if _, err := s.mgr.CreateUser(username, password); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Account created successfully! You can now log in, %s.\n", username)
}

// userMenu is the per-user loop. Logging out returns to the top-level menu.
func (s *Session) userMenu(user *User) {
	for {
		fmt.Fprintln(s.out, "\nUser Menu:")
		fmt.Fprintln(s.out, "1. View your books")
		fmt.Fprintln(s.out, "2. View your videos")
		fmt.Fprintln(s.out, "3. Add a book to your list")
		fmt.Fprintln(s.out, "4. Add a video to your list")
		fmt.Fprintln(s.out, "5. Remove a book from your list")
		fmt.Fprintln(s.out, "6. Remove a video from your list")
		fmt.Fprintln(s.out, "7. Log out")

		choice, ok := s.prompt("Enter your choice (1/2/3/4/5/6/7): ")
		if !ok {
			return
		}

		switch choice {
		case "1":
			s.showUserBooks(user.ID)
		case "2":
			s.showUserVideos(user.ID)
		case "3":
			s.borrowBook(user.ID)
		case "4":
			s.borrowVideo(user.ID)
		case "5":
			s.returnBook(user.ID)
		case "6":
			s.returnVideo(user.ID)
		case "7":
			fmt.Fprintln(s.out, "Logging out...")
			return
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please enter a valid option.")
		}
	}
}

func (s *Session) showUserBooks(userID int64) {
	books, err := s.mgr.UserBooks(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "You have no books in your list.")
		return
	}
	fmt.Fprintln(s.out, "\nYour Books:")
	s.printBooks(books)
}

func (s *Session) showUserVideos(userID int64) {
	videos, err := s.mgr.UserVideos(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(videos) == 0 {
		fmt.Fprintln(s.out, "You have no videos in your list.")
		return
	}
	fmt.Fprintln(s.out, "\nYour Videos:")
	s.printVideos(videos)
}

func (s *Session) borrowBook(userID int64) {
	books, err := s.mgr.AvailableBooks(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "No available books to add.")
		return
	}

	fmt.Fprintln(s.out, "\nAvailable Books:")
	s.printBooks(books)

	input, ok := s.prompt("Enter the ID of the book you want to add (or 0 to cancel): ")
	if !ok {
		return
	}
	if input == "0" {
		fmt.Fprintln(s.out, "Add book cancelled.")
		return
	}

	bookID, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid book ID: %s\n", input)
		return
	}

	if err := s.mgr.LinkBookToUser(userID, bookID); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Book added to your list!")
}

func (s *Session) borrowVideo(userID int64) {
	videos, err := s.mgr.AvailableVideos(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(videos) == 0 {
		fmt.Fprintln(s.out, "No available videos to add.")
		return
	}

	fmt.Fprintln(s.out, "\nAvailable Videos:")
	s.printVideos(videos)

	input, ok := s.prompt("Enter the ID of the video you want to add (or 0 to cancel): ")
	if !ok {
		return
	}
	if input == "0" {
		fmt.Fprintln(s.out, "Add video cancelled.")
		return
	}

	videoID, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid video ID: %s\n", input)
		return
	}

	if err := s.mgr.LinkVideoToUser(userID, videoID); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Video added to your list!")
}

func (s *Session) returnBook(userID int64) {
	books, err := s.mgr.UserBooks(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(books) == 0 {
		fmt.Fprintln(s.out, "You have no books to remove.")
		return
	}

	fmt.Fprintln(s.out, "\nYour Books:")
	s.printBooks(books)

	input, ok := s.prompt("Enter the ID of the book you want to remove (or 0 to cancel): ")
	if !ok {
		return
	}
	if input == "0" {
		fmt.Fprintln(s.out, "Remove book cancelled.")
		return
	}

	bookID, err := strconv.ParseInt(input, 10, 64)
	if err != nil || !containsBook(books, bookID) {
		fmt.Fprintln(s.out, "Invalid book ID. Please try again.")
		return
	}

	if err := s.mgr.UnlinkBookFromUser(userID, bookID); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Book removed from your list.")
}

func (s *Session) returnVideo(userID int64) {
	videos, err := s.mgr.UserVideos(userID)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if len(videos) == 0 {
		fmt.Fprintln(s.out, "You have no videos to remove.")
		return
	}

	fmt.Fprintln(s.out, "\nYour Videos:")
	s.printVideos(videos)

	input, ok := s.prompt("Enter the ID of the video you want to remove (or 0 to cancel): ")
	if !ok {
		return
	}
	if input == "0" {
		fmt.Fprintln(s.out, "Remove video cancelled.")
		return
	}

	videoID, err := strconv.ParseInt(input, 10, 64)
	if err != nil || !containsVideo(videos, videoID) {
		fmt.Fprintln(s.out, "Invalid video ID. Please try again.")
		return
	}

	if err := s.mgr.UnlinkVideoFromUser(userID, videoID); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, "Video removed from your list.")
}

func containsBook(books []*Book, id int64) bool {
	for _, b := range books {
		if b.ID == id {
			return true
		}
	}
	return false
}

func containsVideo(videos []*Video, id int64) bool {
	for _, v := range videos {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) printBooks(books []*Book) {
	fmt.Fprintf(s.out, "%-5s %-30s %-25s %-15s\n", "ID", "Title", "Author", "Genre")
	fmt.Fprintln(s.out, strings.Repeat("-", 80))
	for _, b := range books {
		fmt.Fprintf(s.out, "%-5d %-30s %-25s %-15s\n",
			b.ID,
			truncateString(b.Name, 30),
			truncateString(b.Author, 25),
			truncateString(b.Genre, 15))
	}
}

func (s *Session) printVideos(videos []*Video) {
	fmt.Fprintf(s.out, "%-5s %-30s %-15s %-25s %-12s\n", "ID", "Title", "Genre", "Director", "Published")
	fmt.Fprintln(s.out, strings.Repeat("-", 92))
	for _, v := range videos {
		fmt.Fprintf(s.out, "%-5d %-30s %-15s %-25s %-12s\n",
			v.ID,
			truncateString(v.Name, 30),
			truncateString(v.Genre, 15),
			truncateString(v.Director, 25),
			truncateString(v.DatePublished, 12))
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
