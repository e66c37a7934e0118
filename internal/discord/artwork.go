package discord

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
)

const (
	searchEndpoint = "https://itunes.apple.com/search"

	// missTTL is how long a track without artwork is remembered
	missTTL = 10 * time.Minute
)

// artworkQuery is one iTunes search attempt
type artworkQuery struct {
	term   string
	entity string // "album" or "song"
}

// queriesFor lists the searches for a track in order: the album first,
// then the track itself for singles that are only indexed as songs.
func queriesFor(md media.Metadata) []artworkQuery {
	var queries []artworkQuery
	if md.Album != "" {
		queries = append(queries, artworkQuery{term: joinTerm(md.Artist, md.Album), entity: "album"})
	}
	if md.Title != "" {
		queries = append(queries, artworkQuery{term: joinTerm(md.Artist, md.Title), entity: "song"})
	}
	return queries
}

func joinTerm(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// artworkKey identifies a track in the artwork cache
func artworkKey(md media.Metadata) string {
	return strings.ToLower(md.Artist + "\x00" + md.Album + "\x00" + md.Title)
}

type artworkEntry struct {
	url     string
	checked time.Time
}

// artworkLookup finds cover art for tracks published without a cover URL
type artworkLookup struct {
	client   *http.Client
	endpoint string
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]artworkEntry
}

func newArtworkLookup(logger zerolog.Logger) *artworkLookup {
	return &artworkLookup{
		client:   &http.Client{Timeout: 3 * time.Second},
		endpoint: searchEndpoint,
		logger:   logger,
		now:      time.Now,
		entries:  make(map[string]artworkEntry),
	}
}

// Lookup returns a cover art URL for the track, or "" when none is found.
// Hits are kept for the life of the lookup and misses for missTTL.
func (a *artworkLookup) Lookup(md media.Metadata) string {
	queries := queriesFor(md)
	if len(queries) == 0 {
		return ""
	}

	key := artworkKey(md)
	if entry, ok := a.cached(key); ok {
		return entry.url
	}

	var found string
	for _, q := range queries {
		u, err := a.search(q)
		if err != nil {
			a.logger.Debug().Err(err).Str("entity", q.entity).Str("term", q.term).Msg("Artwork search failed")
			continue
		}
		if u != "" {
			found = u
			break
		}
	}

	a.mu.Lock()
	a.entries[key] = artworkEntry{url: found, checked: a.now()}
	a.mu.Unlock()
	return found
}

func (a *artworkLookup) cached(key string) (artworkEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry, ok := a.entries[key]
	if !ok {
		return artworkEntry{}, false
	}
	if entry.url == "" && a.now().Sub(entry.checked) >= missTTL {
		return artworkEntry{}, false
	}
	return entry, true
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ArtworkURL100 string `json:"artworkUrl100"`
}

// search runs one query and returns the first result's artwork at 600px
func (a *artworkLookup) search(q artworkQuery) (string, error) {
	params := url.Values{
		"term":   {q.term},
		"entity": {q.entity},
		"media":  {"music"},
		"limit":  {"1"},
	}
	resp, err := a.client.Get(a.endpoint + "?" + params.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search returned %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(body.Results) == 0 {
		return "", nil
	}
	return strings.Replace(body.Results[0].ArtworkURL100, "100x100bb", "600x600bb", 1), nil
}
