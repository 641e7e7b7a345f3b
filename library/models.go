package library

// Book is a catalog entry. The catalog is pre-populated by the seeding tool
// and read-only from the application's perspective.
type Book struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// Video is a catalog entry on the video shelf.
type Video struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Genre         string `json:"genre"`
	Director      string `json:"director"`
	DatePublished string `json:"date_published"`
}

// User is a registered account. The password is stored as entered; credential
// hardening is out of scope for this tool.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Password    string `json:"-"` // Don't serialize the password
	VideoListID int64  `json:"video_list_id,omitempty"`
}
