package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"media-lending/internal/config"
	"media-lending/library"
)

var (
	dbPath    string
	reset     bool
	booksCSV  string
	videosCSV string
)

// starterBooks is inserted when no --books file is given.
var starterBooks = [][3]string{
	{"Dune", "Frank Herbert", "SciFi"},
	{"1984", "George Orwell", "Dystopia"},
	{"The Hobbit", "J.R.R. Tolkien", "Fantasy"},
	{"Pride and Prejudice", "Jane Austen", "Romance"},
	{"The Name of the Rose", "Umberto Eco", "Mystery"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "SciFi"},
}

// starterVideos is inserted when no --videos file is given.
var starterVideos = [][4]string{
	{"Blade Runner", "SciFi", "Ridley Scott", "1982-06-25"},
	{"Spirited Away", "Animation", "Hayao Miyazaki", "2001-07-20"},
	{"The Godfather", "Crime", "Francis Ford Coppola", "1972-03-24"},
	{"Alien", "Horror", "Ridley Scott", "1979-05-25"},
	{"Seven Samurai", "Drama", "Akira Kurosawa", "1954-04-26"},
}

func main() {
	root := &cobra.Command{
		Use:   "seed-catalog",
		Short: "Populate the lending database with a catalog of books and videos",
		RunE:  run,
	}
	root.Flags().StringVar(&dbPath, "db", config.DefaultDatabasePath, "path to the SQLite database")
	root.Flags().BoolVar(&reset, "reset", false, "delete any existing database first")
	root.Flags().StringVar(&booksCSV, "books", "", "CSV file of books (name,author,genre)")
	root.Flags().StringVar(&videosCSV, "videos", "", "CSV file of videos (name,genre,director,date_published)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if reset {
		fmt.Println("Cleaning up existing database files...")
		for _, file := range []string{dbPath, dbPath + "-shm", dbPath + "-wal"} {
			if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
				fmt.Printf("Warning: could not remove %s: %v\n", file, err)
			}
		}
	}

	manager, err := library.NewManager(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer manager.Close()

	bookCount, err := seedBooks(manager)
	if err != nil {
		return err
	}
	videoCount, err := seedVideos(manager)
	if err != nil {
		return err
	}

	fmt.Printf("\nSeed complete! Inserted %d book(s) and %d video(s).\n", bookCount, videoCount)
	return printSummary(manager)
}

func seedBooks(manager *library.Manager) (int, error) {
	if booksCSV != "" {
		n, err := manager.ImportBooksCSV(booksCSV)
		if err != nil {
			return n, fmt.Errorf("import books: %w", err)
		}
		return n, nil
	}
	for _, b := range starterBooks {
		if _, err := manager.AddBook(b[0], b[1], b[2]); err != nil {
			return 0, fmt.Errorf("add book %q: %w", b[0], err)
		}
	}
	return len(starterBooks), nil
}

func seedVideos(manager *library.Manager) (int, error) {
	if videosCSV != "" {
		n, err := manager.ImportVideosCSV(videosCSV)
		if err != nil {
			return n, fmt.Errorf("import videos: %w", err)
		}
		return n, nil
	}
	for _, v := range starterVideos {
		if _, err := manager.AddVideo(v[0], v[1], v[2], v[3]); err != nil {
			return 0, fmt.Errorf("add video %q: %w", v[0], err)
		}
	}
	return len(starterVideos), nil
}

func printSummary(manager *library.Manager) error {
	books, err := manager.AllBooks()
	if err != nil {
		return err
	}
	fmt.Println("\nCatalog books:")
	fmt.Printf("%-5s %-40s %-30s %-15s\n", "ID", "Title", "Author", "Genre")
	fmt.Println(strings.Repeat("-", 95))
	for _, b := range books {
		fmt.Printf("%-5d %-40s %-30s %-15s\n", b.ID, truncateString(b.Name, 40), truncateString(b.Author, 30), b.Genre)
	}

	videos, err := manager.AllVideos()
	if err != nil {
		return err
	}
	fmt.Println("\nCatalog videos:")
	fmt.Printf("%-5s %-40s %-15s %-25s %-12s\n", "ID", "Title", "Genre", "Director", "Published")
	fmt.Println(strings.Repeat("-", 102))
	for _, v := range videos {
		fmt.Printf("%-5d %-40s %-15s %-25s %-12s\n", v.ID, truncateString(v.Name, 40), v.Genre, truncateString(v.Director, 25), v.DatePublished)
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
