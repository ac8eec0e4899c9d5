// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve queries biomedical APIs and turns the responses into
// citable evidence snippets. PubMed supplies the literature evidence;
// ChEMBL resolves drug names and supplies molecular context. All requests
// go through an injectable response cache keyed by a deterministic
// fingerprint, and through a shared retrying transport.
package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/evidence-engine/internal/cache"
	"github.com/pdiddy/evidence-engine/internal/httputil"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// eutilsBase is the NCBI E-utilities endpoint. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// packCacheVersion is bumped whenever the pack layout or query
// construction changes, invalidating older cache entries.
const packCacheVersion = "v1"

const (
	defaultMaxPapers   = 25
	defaultMaxSnippets = 10
	defaultSort        = "relevance"
	authorCap          = 10
	pubTypeCap         = 8
)

// PubMedClient retrieves literature evidence through NCBI E-utilities.
type PubMedClient struct {
	client *http.Client
	cache  cache.Cache
	cfg    types.RetrievalConfig
}

// NewPubMedClient builds a client from the retrieval configuration. A nil
// cache disables caching.
func NewPubMedClient(cfg types.RetrievalConfig, c cache.Cache) *PubMedClient {
	if c == nil {
		c = cache.Nop{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &PubMedClient{
		client: &http.Client{Timeout: timeout},
		cache:  c,
		cfg:    cfg,
	}
}

// BuildEvidencePack searches PubMed for the disease+drug pair and returns
// the parsed articles that carry abstracts. The whole pack is cached under
// a fingerprint of the query parameters.
func (c *PubMedClient) BuildEvidencePack(ctx context.Context, disease, drug, chemblID string) (*types.EvidencePack, error) {
	maxPapers := c.cfg.MaxPapers
	if maxPapers <= 0 {
		maxPapers = defaultMaxPapers
	}
	sortOrder := c.cfg.Sort
	if sortOrder == "" {
		sortOrder = defaultSort
	}

	query := fmt.Sprintf(`("%s"[Title/Abstract]) AND ("%s"[Title/Abstract])`, disease, drug)

	key := cache.Fingerprint("pubmed-pack", packCacheVersion, disease, drug, strconv.Itoa(maxPapers), sortOrder)
	if data, ok, err := c.cache.Get(key); err == nil && ok {
		var pack types.EvidencePack
		if err := json.Unmarshal(data, &pack); err == nil {
			return &pack, nil
		}
		// Corrupt entry: fall through and refetch.
	}

	pmids, err := c.esearch(ctx, query, maxPapers, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("searching PubMed: %w", err)
	}

	pack := &types.EvidencePack{
		Disease:     disease,
		Drug:        drug,
		ChEMBLID:    chemblID,
		Query:       query,
		Sort:        sortOrder,
		PMIDs:       pmids,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if len(pmids) > 0 {
		xmlText, err := c.efetch(ctx, pmids)
		if err != nil {
			return nil, fmt.Errorf("fetching PubMed records: %w", err)
		}
		articles, err := ParseArticles(xmlText)
		if err != nil {
			return nil, fmt.Errorf("parsing PubMed records: %w", err)
		}
		for _, a := range articles {
			if strings.TrimSpace(a.Abstract) != "" {
				pack.Articles = append(pack.Articles, a)
			}
		}
	}

	if data, err := json.Marshal(pack); err == nil {
		c.cache.Put(key, data)
	}
	return pack, nil
}

// esearch returns PMIDs for the query, in rank order.
func (c *PubMedClient) esearch(ctx context.Context, term string, retmax int, sortOrder string) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {strconv.Itoa(retmax)},
		"retmode": {"json"},
		"sort":    {sortOrder},
	}

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return parsed.ESearchResult.IDList, nil
}

// efetch returns the raw XML for the given PMIDs.
func (c *PubMedClient) efetch(ctx context.Context, pmids []string) ([]byte, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	}
	return c.get(ctx, "efetch.fcgi", params)
}

// get performs one E-utilities request with identification parameters and
// the retrying transport.
func (c *PubMedClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	reqURL := eutilsBase + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("E-utilities request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}

	return readAll(resp)
}
