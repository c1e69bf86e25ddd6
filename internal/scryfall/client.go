package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"cambiacartas-api/internal/model"
)

// ErrNotFound is returned when the catalog has no matching card. Transport
// failures and malformed responses are folded into it as well: lookup
// misses are recovered locally and never surfaced as fatal.
var ErrNotFound = errors.New("scryfall: card not found")

const (
	defaultBaseURL      = "https://api.scryfall.com"
	defaultTimeout      = 10 * time.Second
	defaultMaxRetries   = 2
	defaultMaxPages     = 20
	defaultSuggestLimit = 20
)

// Config holds client settings.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	MaxPages     int
	SuggestLimit int
}

// Client queries the Scryfall card catalog. Read-only: it never mutates
// local state.
type Client struct {
	baseURL      string
	http         *http.Client
	maxRetries   int
	maxPages     int
	suggestLimit int
}

// NewClient creates a Scryfall client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.SuggestLimit == 0 {
		cfg.SuggestLimit = defaultSuggestLimit
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		http:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:   cfg.MaxRetries,
		maxPages:     cfg.MaxPages,
		suggestLimit: cfg.SuggestLimit,
	}
}

// wire types; only the fields we consume.

type wireImageURIs struct {
	Normal string `json:"normal"`
	Large  string `json:"large"`
}

type wireCardFace struct {
	ImageURIs *wireImageURIs `json:"image_uris"`
}

type wirePrices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

type wireCard struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	SetName         string         `json:"set_name"`
	Set             string         `json:"set"`
	CollectorNumber string         `json:"collector_number"`
	Rarity          string         `json:"rarity"`
	ReleasedAt      string         `json:"released_at"`
	Lang            string         `json:"lang"`
	Colors          []string       `json:"colors"`
	ImageURIs       *wireImageURIs `json:"image_uris"`
	CardFaces       []wireCardFace `json:"card_faces"`
	Prices          wirePrices     `json:"prices"`
}

type wireSearchPage struct {
	TotalCards int        `json:"total_cards"`
	HasMore    bool       `json:"has_more"`
	NextPage   string     `json:"next_page"`
	Data       []wireCard `json:"data"`
}

type wireCatalog struct {
	Data []string `json:"data"`
}

type wireSetList struct {
	Data []Set `json:"data"`
}

// Set is one Scryfall card set, consumed by the catalog sync job.
type Set struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	CardCount  int    `json:"card_count"`
	ReleasedAt string `json:"released_at"`
	Digital    bool   `json:"digital"`
}

func (c wireCard) toEntry() model.CatalogEntry {
	image := ""
	if c.ImageURIs != nil {
		image = c.ImageURIs.Normal
		if image == "" {
			image = c.ImageURIs.Large
		}
	}
	// Double-faced cards carry images per face.
	if image == "" && len(c.CardFaces) > 0 && c.CardFaces[0].ImageURIs != nil {
		image = c.CardFaces[0].ImageURIs.Normal
		if image == "" {
			image = c.CardFaces[0].ImageURIs.Large
		}
	}

	price := c.Prices.USD
	if price == "" {
		price = c.Prices.USDFoil
	}

	return model.CatalogEntry{
		ID:              c.ID,
		Name:            c.Name,
		SetName:         c.SetName,
		SetCode:         c.Set,
		CollectorNumber: c.CollectorNumber,
		ImageURI:        image,
		Rarity:          c.Rarity,
		Colors:          c.Colors,
		Lang:            c.Lang,
		PriceUSD:        price,
		ReleasedAt:      c.ReleasedAt,
	}
}

// doGetJSON issues a GET with bounded retries on transport errors and 5xx
// responses. A 404 short-circuits to ErrNotFound.
func (c *Client) doGetJSON(ctx context.Context, rawURL string, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 250 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("scryfall: status %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			return fmt.Errorf("scryfall: unexpected status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("scryfall: decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// LookupByName fetches a single card by exact name, optionally scoped to
// a set code. Transport errors degrade to ErrNotFound.
func (c *Client) LookupByName(ctx context.Context, exactName, setCode string) (*model.CatalogEntry, error) {
	q := url.Values{}
	q.Set("exact", exactName)
	if setCode != "" {
		q.Set("set", setCode)
	}

	var card wireCard
	err := c.doGetJSON(ctx, c.baseURL+"/cards/named?"+q.Encode(), &card)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Scryfall] Named lookup failed for %q: %v", exactName, err)
		}
		return nil, ErrNotFound
	}

	entry := card.toEntry()
	return &entry, nil
}

// LookupByID fetches a single card by Scryfall id. Transport errors
// degrade to ErrNotFound.
func (c *Client) LookupByID(ctx context.Context, id string) (*model.CatalogEntry, error) {
	var card wireCard
	err := c.doGetJSON(ctx, c.baseURL+"/cards/"+url.PathEscape(id), &card)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Scryfall] ID lookup failed for %s: %v", id, err)
		}
		return nil, ErrNotFound
	}

	entry := card.toEntry()
	return &entry, nil
}

// ListPrintings returns every known printing of a name, deduplicated and
// ordered by release date ascending. Pagination is followed to exhaustion
// or the page cap. Returns an empty slice on any failure: callers must
// treat empty as "no data available", not "definitively zero results".
func (c *Client) ListPrintings(ctx context.Context, name string) []model.CatalogEntry {
	q := url.Values{}
	q.Set("q", fmt.Sprintf("!%q", name))
	q.Set("unique", "prints")
	q.Set("order", "released")
	q.Set("dir", "asc")

	cards, err := c.searchAllPages(ctx, c.baseURL+"/cards/search?"+q.Encode())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Scryfall] Printings search failed for %q: %v", name, err)
		}
		return nil
	}

	// The upstream may return near-matches; keep exact name matches only.
	seen := make(map[string]bool, len(cards))
	entries := make([]model.CatalogEntry, 0, len(cards))
	for _, card := range cards {
		if !nameMatches(card.Name, name) || seen[card.ID] {
			continue
		}
		seen[card.ID] = true
		entries = append(entries, card.toEntry())
	}
	return entries
}

// SearchCards runs a free-text catalog search and returns the first page.
func (c *Client) SearchCards(ctx context.Context, query string) []model.CatalogEntry {
	q := url.Values{}
	q.Set("q", query)

	var page wireSearchPage
	err := c.doGetJSON(ctx, c.baseURL+"/cards/search?"+q.Encode(), &page)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Scryfall] Search failed for %q: %v", query, err)
		}
		return nil
	}

	entries := make([]model.CatalogEntry, 0, len(page.Data))
	for _, card := range page.Data {
		entries = append(entries, card.toEntry())
	}
	return entries
}

// Suggest returns name completions for a prefix, at most SuggestLimit.
// Prefixes shorter than two characters return an empty slice without a
// request.
func (c *Client) Suggest(ctx context.Context, prefix string) []string {
	if utf8.RuneCountInString(strings.TrimSpace(prefix)) < 2 {
		return nil
	}

	q := url.Values{}
	q.Set("q", prefix)

	var catalog wireCatalog
	if err := c.doGetJSON(ctx, c.baseURL+"/cards/autocomplete?"+q.Encode(), &catalog); err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[Scryfall] Autocomplete failed for %q: %v", prefix, err)
		}
		return nil
	}

	if len(catalog.Data) > c.suggestLimit {
		return catalog.Data[:c.suggestLimit]
	}
	return catalog.Data
}

// ListSets returns all catalog sets. Unlike lookups this propagates the
// error: the sync job needs to record failed runs.
func (c *Client) ListSets(ctx context.Context) ([]Set, error) {
	var list wireSetList
	if err := c.doGetJSON(ctx, c.baseURL+"/sets", &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

// CardsBySet returns every printing in a set, following pagination.
func (c *Client) CardsBySet(ctx context.Context, setCode string) ([]model.CatalogEntry, error) {
	q := url.Values{}
	q.Set("q", "e:"+setCode)
	q.Set("unique", "prints")
	q.Set("order", "set")

	cards, err := c.searchAllPages(ctx, c.baseURL+"/cards/search?"+q.Encode())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	entries := make([]model.CatalogEntry, 0, len(cards))
	for _, card := range cards {
		entries = append(entries, card.toEntry())
	}
	return entries, nil
}

// searchAllPages follows next_page links up to the page cap, guarding
// against a misbehaving upstream looping forever.
func (c *Client) searchAllPages(ctx context.Context, firstURL string) ([]wireCard, error) {
	var cards []wireCard

	pageURL := firstURL
	for page := 0; page < c.maxPages && pageURL != ""; page++ {
		var result wireSearchPage
		if err := c.doGetJSON(ctx, pageURL, &result); err != nil {
			// Partial results from earlier pages are better than none.
			if len(cards) > 0 {
				log.Printf("[Scryfall] Pagination stopped early: %v", err)
				return cards, nil
			}
			return nil, err
		}

		cards = append(cards, result.Data...)

		pageURL = ""
		if result.HasMore {
			pageURL = result.NextPage
		}
	}

	return cards, nil
}

// nameMatches compares card names case-insensitively; double-faced cards
// ("Front // Back") match on either the full name or the front face.
func nameMatches(cardName, wanted string) bool {
	if strings.EqualFold(cardName, wanted) {
		return true
	}
	if front, _, found := strings.Cut(cardName, " // "); found {
		return strings.EqualFold(front, wanted)
	}
	return false
}
