package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/amonks/catalog/data"
)

const maxNameLen = 255

// requiredName trims a name or title and checks that something is left.
func requiredName(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid("%s must not be empty.", field)
	}
	if utf8.RuneCountInString(value) > maxNameLen {
		return "", invalid("%s must be at most %d characters.", field, maxNameLen)
	}
	return value, nil
}

// optionalText trims value, returning nil if nothing is left.
func optionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// prose is optionalText for free text that may have been pasted as HTML.
// Markup is reduced to its text, keeping paragraph breaks.
func prose(value string) *string {
	if !strings.ContainsRune(value, '<') {
		return optionalText(value)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return optionalText(value)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, blockquote").AppendHtml("\n\n")

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return optionalText(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func (s *Service) imageURL(field, value string) (*string, error) {
	url := optionalText(value)
	if url == nil {
		return nil, nil
	}
	if err := s.inspector.CheckReference(*url); err != nil {
		return nil, invalid("%s must be a local data path ('data/...', '/data/...', 'file://...') or remote URL.", field)
	}
	return url, nil
}

func status(value data.Status) (data.Status, error) {
	if value == "" {
		return data.StatusDraft, nil
	}
	if !value.Valid() {
		return "", invalid("Unknown status '%s'.", value)
	}
	return value, nil
}

func albumType(value data.AlbumType) (data.AlbumType, error) {
	if value == "" {
		return data.AlbumTypeAlbum, nil
	}
	if !value.Valid() {
		return "", invalid("Unknown album type '%s'.", value)
	}
	return value, nil
}

// ids trims and drops empty and repeated ids, keeping order.
func ids(values []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func styleTags(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func positive(field string, value int64) (int64, error) {
	if value == 0 {
		return 1, nil
	}
	if value < 1 {
		return 0, invalid("%s must be at least 1.", field)
	}
	return value, nil
}

func lyrics(in *data.LyricsInput) (*data.Lyrics, error) {
	if in == nil {
		return nil, nil
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("lyrics.content must not be empty.")
	}
	language := strings.ToLower(strings.TrimSpace(in.Language))
	if language == "" {
		language = data.DefaultLyricsLanguage
	}
	if len(language) != 2 || !isLetters(language) {
		return nil, invalid("lyrics.language must be a 2-letter code.")
	}
	return &data.Lyrics{Content: in.Content, Language: language, HasTimestamps: in.HasTimestamps}, nil
}

func isLetters(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// artistLinks checks secondary links. A link naming the primary artist is
// dropped by the synchronizer, but a link claiming the primary role is a
// caller error.
func artistLinks(links []data.ArtistLinkInput) ([]data.ArtistLinkInput, error) {
	out := make([]data.ArtistLinkInput, 0, len(links))
	for i, link := range links {
		link.ArtistID = strings.TrimSpace(link.ArtistID)
		if link.ArtistID == "" {
			return nil, invalid("artistLinks[%d].artistId must not be empty.", i)
		}
		if link.Role == "" {
			link.Role = data.RoleFeatured
		}
		if !link.Role.Valid() {
			return nil, invalid("artistLinks[%d].role '%s' is not a known role.", i, link.Role)
		}
		if link.Role == data.RolePrimary {
			return nil, invalid("artistLinks[%d] may not use the primary role; set primaryArtistId instead.", i)
		}
		if link.DisplayOrder < 0 {
			return nil, invalid("artistLinks[%d].displayOrder must not be negative.", i)
		}
		out = append(out, link)
	}
	return out, nil
}
