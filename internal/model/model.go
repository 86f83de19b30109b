package model

// ShortLink is one stored code -> URL mapping together with the link that
// addresses it.
type ShortLink struct {
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	ShortURL    string `json:"short_url,omitempty"`
}

// LandingKind is the outcome of opening a page with (or without) a code
// fragment.
type LandingKind int

const (
	LandingIdle LandingKind = iota
	LandingRedirect
	LandingNotFound
)

func (k LandingKind) String() string {
	switch k {
	case LandingRedirect:
		return "redirect"
	case LandingNotFound:
		return "not_found"
	default:
		return "idle"
	}
}

type Landing struct {
	Kind   LandingKind `json:"kind"`
	Code   string      `json:"code,omitempty"`
	Target string      `json:"target,omitempty"`
	// Home is the tool's base URL with fragment and query removed.
	Home string `json:"home,omitempty"`
}
