package archive

// Response DTOs mirror the archive server's JSON field names.

type postDTO struct {
	PostID        string     `json:"postId"`
	ScreenName    string     `json:"screenName"`
	TwitterID     string     `json:"twitterId"`
	PostText      string     `json:"postText"`
	PostDate      int64      `json:"postDate"`    // unix seconds
	ArchiveDate   int64      `json:"archiveDate"` // unix seconds
	SafetyRating  string     `json:"safetyRating"`
	ContentRating string     `json:"contentRating"`
	Media         []mediaDTO `json:"media"`
}

type mediaDTO struct {
	ID            int64  `json:"id"`
	PostID        string `json:"postId"`
	MediaType     string `json:"mediaType"`
	OriginalURL   string `json:"originalUrl"`
	LocalPath     string `json:"localPath"`
	Caption       string `json:"caption"`
	MediaIndex    int    `json:"mediaIndex"`
	DuplicateOf   int64  `json:"duplicateOf"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	FileSize      int64  `json:"filesize"`
	SafetyRating  string `json:"safetyRating"`
	ContentRating string `json:"contentRating"`
}

type accountDTO struct {
	TwitterID      string `json:"twitterId"`
	ArtistID       int64  `json:"artistId"`
	ScreenName     string `json:"screenName"`
	DisplayName    string `json:"displayName"`
	AccountStatus  string `json:"accountStatus"`
	IsProtected    bool   `json:"isProtected"`
	LastScrapedID  string `json:"lastScrapedId"`
	DownloadStatus bool   `json:"downloadStatus"`
	SafetyRating   string `json:"safetyRating"`
}

type artistDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type aliasDTO struct {
	ID           int64  `json:"id"`
	ArtistID     int64  `json:"artistId"`
	AliasName    string `json:"aliasName"`
	SafetyRating string `json:"safetyRating"`
}

type artistDetailDTO struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Aliases     []aliasDTO   `json:"aliases"`
	Accounts    []accountDTO `json:"accounts"`
}

type configDTO struct {
	Content []string `json:"content"`
	Safety  []string `json:"safety"`
}
