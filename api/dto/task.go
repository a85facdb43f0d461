package dto

type CreateTaskRequest struct {
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

type TaskResponse struct {
	ID            string  `json:"task_id"`
	URL           string  `json:"url"`
	Status        string  `json:"status"`
	ArticlesCount int     `json:"articles_count"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

type TaskListResponse struct {
	Tasks    []*TaskResponse `json:"tasks"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

type ArticleResponse struct {
	ID                  string  `json:"id"`
	TaskID              string  `json:"task_id"`
	Title               string  `json:"title"`
	TitleCN             string  `json:"title_cn,omitempty"`
	Content             string  `json:"content,omitempty"`
	ContentCN           string  `json:"content_cn,omitempty"`
	SourceURL           string  `json:"source_url"`
	Author              string  `json:"author,omitempty"`
	PublishTime         *string `json:"publish_time,omitempty"`
	AudioPath           string  `json:"audio_path,omitempty"`
	AudioPathOriginal   string  `json:"audio_path_original,omitempty"`
	Status              string  `json:"status"`
	ErrorMessage        string  `json:"error_message,omitempty"`
	TranslationProgress int     `json:"translation_progress"`
	CreatedAt           string  `json:"created_at"`
}

type ArticleListResponse struct {
	Articles []*ArticleResponse `json:"articles"`
}

type GenerateAudioRequest struct {
	Variant string `json:"variant"`
}

type GenerateAudioResponse struct {
	Message string `json:"message"`
}

type DeleteAllResponse struct {
	Message         string `json:"message"`
	DeletedTasks    int    `json:"deleted_tasks"`
	DeletedArticles int    `json:"deleted_articles"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}
