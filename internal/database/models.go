package database

// Run is one generated draft.
type Run struct {
	ID          string
	Topic       string
	Keyword     string
	Slug        string
	Tone        string
	ArticleType string
	Provider    string
	Model       string
	FilePath    string // empty when the draft was not saved
	WordCount   int
	SEOPassed   int
	SEOWarnings int
	SEOFailures int
	CreatedAt   string
}

// Publication kinds.
const (
	KindPublish      = "publish"
	KindUploadImages = "upload-images"
)

// Publication is one write to WordPress: a new draft or an image recovery.
type Publication struct {
	ID            int64
	RunID         *string
	Slug          string
	PostID        int
	EditURL       string
	ImagesStatus  string
	InternalLinks int
	RankMathSet   bool
	Kind          string
	PublishedAt   string
}

// Stats summarizes the journal.
type Stats struct {
	Runs          int
	SavedDrafts   int
	Publications  int
	Published     int // distinct slugs with a draft on WordPress
	LastRunAt     *string
	LastPublished *string
}
