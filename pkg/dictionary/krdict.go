package dictionary

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultKrdictURL = "https://krdict.korean.go.kr/api/search"

// Krdict looks words up in the Basic Korean Dictionary open API.
type Krdict struct {
	baseURL    string
	apiKey     string
	transLang  string
	maxResults int
	parallel   int
	httpClient *http.Client
	log        *zap.Logger
}

// KrdictOption configures a Krdict client.
type KrdictOption func(*Krdict)

// WithKrdictURL overrides the API endpoint (used by tests).
func WithKrdictURL(u string) KrdictOption { return func(k *Krdict) { k.baseURL = u } }

// WithKrdictTimeout sets the per-request timeout.
func WithKrdictTimeout(d time.Duration) KrdictOption {
	return func(k *Krdict) { k.httpClient = &http.Client{Timeout: d} }
}

// WithKrdictParallel bounds the number of concurrent stem requests.
func WithKrdictParallel(n int) KrdictOption {
	return func(k *Krdict) {
		if n > 0 {
			k.parallel = n
		}
	}
}

// NewKrdict creates a client. transLang "1" is English in the API's numbering.
func NewKrdict(apiKey string, logger *zap.Logger, opts ...KrdictOption) *Krdict {
	if logger == nil {
		logger = zap.NewNop()
	}
	k := &Krdict{
		baseURL:    defaultKrdictURL,
		apiKey:     apiKey,
		transLang:  "1",
		maxResults: 10,
		parallel:   4,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With(zap.String("adapter", "krdict")),
	}
	for _, o := range opts {
		o(k)
	}
	return k
}

// Lookup issues one search per stem and returns the results index-aligned.
// Any failed request fails the whole call with ErrLookupUnavailable.
func (k *Krdict) Lookup(ctx context.Context, stems []string) ([][]Entry, error) {
	out := make([][]Entry, len(stems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k.parallel)
	for i, stem := range stems {
		g.Go(func() error {
			entries, err := k.search(gctx, stem)
			if err != nil {
				return err
			}
			out[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type krdictChannel struct {
	XMLName xml.Name     `xml:"channel"`
	Total   int          `xml:"total"`
	Items   []krdictItem `xml:"item"`
}

type krdictError struct {
	XMLName xml.Name `xml:"error"`
	Code    string   `xml:"error_code"`
	Message string   `xml:"message"`
}

type krdictItem struct {
	TargetCode string        `xml:"target_code"`
	Word       string        `xml:"word"`
	SupNo      int           `xml:"sup_no"`
	Origin     string        `xml:"origin"`
	POS        string        `xml:"pos"`
	Senses     []krdictSense `xml:"sense"`
}

type krdictSense struct {
	Order       int    `xml:"sense_order"`
	Definition  string `xml:"definition"`
	Translation struct {
		Word       string `xml:"trans_word"`
		Definition string `xml:"trans_dfn"`
	} `xml:"translation"`
}

func (k *Krdict) search(ctx context.Context, stem string) ([]Entry, error) {
	q := url.Values{}
	q.Set("key", k.apiKey)
	q.Set("q", stem)
	q.Set("part", "word")
	q.Set("translated", "y")
	q.Set("trans_lang", k.transLang)
	q.Set("num", fmt.Sprint(k.maxResults))
	reqURL := k.baseURL + "?" + q.Encode()

	k.log.Debug("krdict request", zap.String("stem", stem))

	resp, err := k.doWithRetry(ctx, reqURL, stem)
	if err != nil {
		k.log.Error("krdict request failed", zap.String("stem", stem), zap.Error(err))
		return nil, fmt.Errorf("%w: krdict: %v", ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: krdict: unexpected status %d", ErrLookupUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: krdict: read body: %v", ErrLookupUnavailable, err)
	}

	var apiErr krdictError
	if xml.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
		return nil, fmt.Errorf("%w: krdict: error %s: %s", ErrLookupUnavailable, apiErr.Code, apiErr.Message)
	}

	var ch krdictChannel
	if err := xml.Unmarshal(body, &ch); err != nil {
		return nil, fmt.Errorf("%w: krdict: decode xml: %v", ErrLookupUnavailable, err)
	}

	entries := mapItems(stem, ch.Items)
	k.log.Debug("krdict response", zap.String("stem", stem), zap.Int("entries", len(entries)))
	return entries, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (k *Krdict) doWithRetry(ctx context.Context, reqURL, stem string) (*http.Response, error) {
	do := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		return k.httpClient.Do(req)
	}

	resp, err := do()
	shouldRetry := err != nil || resp.StatusCode >= 500
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	k.log.Warn("krdict retry", zap.String("stem", stem), zap.String("reason", reason))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}
	return do()
}

// mapItems turns search items into entries. Items whose headword matches
// the stem come first, in API order; the rest are related words.
func mapItems(stem string, items []krdictItem) []Entry {
	var primary, related []Entry
	want := Normalize(stem)
	for _, it := range items {
		e := Entry{
			Word:       strings.TrimSpace(it.Word),
			Origin:     strings.TrimSpace(it.Origin),
			Definition: itemGloss(it),
		}
		if e.Definition == "" {
			continue
		}
		if Normalize(e.Word) == want {
			primary = append(primary, e)
		} else {
			related = append(related, e)
		}
	}
	return append(primary, related...)
}

func itemGloss(it krdictItem) string {
	for _, s := range it.Senses {
		if w := strings.TrimSpace(s.Translation.Word); w != "" {
			return w
		}
	}
	for _, s := range it.Senses {
		if d := strings.TrimSpace(s.Definition); d != "" {
			return d
		}
	}
	return ""
}
