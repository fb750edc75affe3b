package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ArticleRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	CoverURL    string   `json:"cover_url"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
}

type ProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	RepoURL     string   `json:"repo_url"`
	LiveURL     string   `json:"live_url"`
	CoverURL    string   `json:"cover_url"`
	Featured    bool     `json:"featured"`
	SortOrder   int      `json:"sort_order"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type WorkRequestRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Budget  string `json:"budget"`
	Details string `json:"details"`
}

type SubscribeRequest struct {
	Email string `json:"email"`
}

type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
}
