package model

// Constant values stamped on every master-data document so the app can tell
// imported restrooms apart from user submissions.
const (
	CreatedByMasterData = "master-data"
	SourceMaster        = "master"
)

// Restroom classifications derived from category and ownership text
const (
	TypePrivate = "private"
	TypePublic  = "public"
	TypeOpen    = "open"
)

// Record is the canonical restroom document produced by the normalizer and
// folded together by the merge step
type Record struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	CreatedBy   string  `json:"createdBy"`
	Source      string  `json:"source"`

	// Engagement placeholders, filled in later by app users
	LikeCount       int      `json:"likeCount"`
	DislikeCount    int      `json:"dislikeCount"`
	LikedUserIDs    []string `json:"likedUserIds"`
	DislikedUserIDs []string `json:"dislikedUserIds"`

	Name        string `json:"name"`
	RoadAddress string `json:"roadAddress"`
	LotAddress  string `json:"lotAddress"`
	Address     string `json:"address"`
	District    string `json:"district"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	Ownership   string `json:"ownership"`
	OpenHours   string `json:"openHours"`

	SourceRegion string `json:"sourceRegion"`
	SourceFile   string `json:"sourceFile"`
	SourceRowID  string `json:"sourceRowId"`
	DedupeKey    string `json:"dedupeKey"`

	// Provenance accumulated while merging duplicates
	SourceFiles    []string `json:"sourceFiles"`
	SourceRowIDs   []string `json:"sourceRowIds"`
	DuplicateCount int      `json:"duplicateCount"`
}

// Stats holds the ingestion counters reported after a build
type Stats struct {
	RowsTotal        int `json:"rows_total"`
	RowsInvalidCoord int `json:"rows_invalid_coord"`
	RowsUnique       int `json:"rows_unique"`
	RowsDuplicate    int `json:"rows_duplicate"`
}

// Valid reports whether the counters are conserved: every row read is either
// rejected, new, or folded into an existing record
func (s Stats) Valid() bool {
	return s.RowsUnique+s.RowsDuplicate == s.RowsTotal-s.RowsInvalidCoord
}
