package model

import (
	"strings"
	"time"
)

// Identity is the account record behind a bearer token, as reported by
// GET /auth/me. Role is the raw server-side role string ("admin",
// "observer", ...); tier resolution happens in the session package.
type Identity struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Token is the pair issued by login/register/refresh. Each token carries
// its own expiry inside the JWT; TokenType is always "bearer".
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Profile is a researcher profile as returned by the service.
//
// The service stores competencies as one comma-joined "major" column, while
// the client edits them as an ordered tag list. Majors()/JoinMajors convert
// between the two; the wire struct keeps the raw string.
type Profile struct {
	ID     int `json:"id"`
	UserID int `json:"user_id"`

	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	University  string `json:"university,omitempty"`
	Major       string `json:"major,omitempty"`
	Bio         string `json:"bio,omitempty"`
	ContactInfo string `json:"contact_info,omitempty"`

	GoogleScholarID   string `json:"google_scholar_id,omitempty"`
	ScopusID          string `json:"scopus_id,omitempty"`
	ORCID             string `json:"orcid,omitempty"`
	ArxivName         string `json:"arxiv_name,omitempty"`
	SemanticScholarID string `json:"semantic_scholar_id,omitempty"`

	CitationsTotal   int `json:"citations_total,omitempty"`
	CitationsRecent  int `json:"citations_recent,omitempty"`
	HIndex           int `json:"h_index,omitempty"`
	I10Index         int `json:"i10_index,omitempty"`
	PublicationCount int `json:"publication_count,omitempty"`
}

// Majors splits the joined major column into the ordered tag list the
// editors work with. Empty segments are dropped.
func (p Profile) Majors() []string {
	return SplitMajors(p.Major)
}

// DisplayName is "First Last" when either part is set, else "".
func (p Profile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	return name
}

func SplitMajors(joined string) []string {
	var out []string
	for _, part := range strings.Split(joined, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func JoinMajors(majors []string) string {
	var kept []string
	for _, m := range majors {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		kept = append(kept, m)
	}
	return strings.Join(kept, ", ")
}

// ProfileInput is the create/update payload. Fields are pointers so a
// payload carries only the keys it means to set; the service leaves
// missing keys untouched. The editor sends every prefilled text field
// (blank clears) and omits blank external identifiers (stored ids are
// never overwritten with "").
type ProfileInput struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	University  *string `json:"university,omitempty"`
	Major       *string `json:"major,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	ContactInfo *string `json:"contact_info,omitempty"`

	GoogleScholarID   *string `json:"google_scholar_id,omitempty"`
	ScopusID          *string `json:"scopus_id,omitempty"`
	ORCID             *string `json:"orcid,omitempty"`
	ArxivName         *string `json:"arxiv_name,omitempty"`
	SemanticScholarID *string `json:"semantic_scholar_id,omitempty"`
}

// ProfileSummary is one row of GET /profile/search.
type ProfileSummary struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	University string `json:"university,omitempty"`
	Major      string `json:"major,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

func (s ProfileSummary) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
	if name == "" {
		return "(unnamed)"
	}
	return name
}

// TeamRequestInput is the POST /requests payload. RequiredRoles keeps
// submission order and may repeat a label (a team can need two Backend
// people); uniqueness is a majors-only rule.
type TeamRequestInput struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	RequiredRoles []string `json:"required_roles"`
}

// TeamRequest is a stored request, optionally enriched with recommended
// collaborators computed server-side.
type TeamRequest struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	RequiredRoles []string  `json:"required_roles"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`

	RecommendedUserIDs []int             `json:"recommended_user_ids,omitempty"`
	Recommendations    []RecommendedUser `json:"recommendations_details,omitempty"`
}

type RecommendedUser struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Major     string `json:"major,omitempty"`
}

// Article is one publication row from the articles feed.
type Article struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Year          int      `json:"year,omitempty"`
	Abstract      string   `json:"abstract,omitempty"`
	DOI           string   `json:"doi,omitempty"`
	ArxivID       string   `json:"arxiv_id,omitempty"`
	URL           string   `json:"url,omitempty"`
	Venue         string   `json:"venue,omitempty"`
	Citations     int      `json:"citations"`
	AuthorsList   []string `json:"authors_list,omitempty"`
	AuthorUserIDs []int    `json:"author_user_ids,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// UserArticles is GET /articles/user/{id}: the author's publications plus
// the profile metrics snapshot the server keeps alongside them.
type UserArticles struct {
	Articles []Article      `json:"articles"`
	Total    int            `json:"total"`
	Metrics  ArticleMetrics `json:"metrics"`
}

type ArticleMetrics struct {
	CitationsTotal   int    `json:"citations_total"`
	HIndex           int    `json:"h_index"`
	I10Index         int    `json:"i10_index"`
	PublicationCount int    `json:"publication_count"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// ImportResult is the admin bulk-import summary. Status is "success"
// with counts, or "skipped" with a message when the file carried no
// profile columns.
type ImportResult struct {
	Status           string `json:"status"`
	UsersProcessed   int    `json:"users_processed"`
	ProfilesUpserted int    `json:"profiles_upserted"`
	Message          string `json:"message,omitempty"`
}
