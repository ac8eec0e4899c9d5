// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

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

// chemblBase is the ChEMBL REST endpoint. Declared as a var so tests can
// substitute an httptest server.
var chemblBase = "https://www.ebi.ac.uk/chembl/api/data"

const (
	moleculeSearchLimit = 25
	mechanismLimit      = 5
)

// formHints flags molecule names that denote a salt or hydrate form
// rather than the parent compound.
var formHints = []string{
	"hydrochloride", "hcl", "sodium", "potassium", "calcium",
	"monohydrate", "hydrate", "tartrate", "phosphate", "sulfate",
	"mesylate", "maleate", "acetate", "bromide", "chloride",
}

// ChEMBLClient resolves drug names to ChEMBL molecules and fetches
// mechanism context.
type ChEMBLClient struct {
	client *http.Client
	cache  cache.Cache
	cfg    types.RetrievalConfig
}

// NewChEMBLClient builds a client from the retrieval configuration. A nil
// cache disables caching.
func NewChEMBLClient(cfg types.RetrievalConfig, c cache.Cache) *ChEMBLClient {
	if c == nil {
		c = cache.Nop{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChEMBLClient{
		client: &http.Client{Timeout: timeout},
		cache:  c,
		cfg:    cfg,
	}
}

// moleculeSearchResponse is the subset of the molecule search payload the
// resolver consumes.
type moleculeSearchResponse struct {
	Molecules []struct {
		MoleculeChEMBLID string `json:"molecule_chembl_id"`
		PrefName         string `json:"pref_name"`
	} `json:"molecules"`
}

// mechanismResponse is the subset of the mechanism payload the resolver
// consumes.
type mechanismResponse struct {
	Mechanisms []struct {
		MechanismOfAction string `json:"mechanism_of_action"`
	} `json:"mechanisms"`
}

// ResolveDrug matches a drug name to its best ChEMBL molecule and attaches
// mechanism-of-action context. Returns nil without error when no candidate
// scores acceptably; resolution failure is advisory, not fatal, for the
// pipeline.
func (c *ChEMBLClient) ResolveDrug(ctx context.Context, name string) (*types.MoleculeProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("empty drug name")
	}

	body, err := c.getJSON(ctx, "/molecule/search.json", url.Values{
		"q":     {name},
		"limit": {strconv.Itoa(moleculeSearchLimit)},
	})
	if err != nil {
		return nil, fmt.Errorf("searching ChEMBL molecules: %w", err)
	}

	var search moleculeSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("parsing molecule search response: %w", err)
	}
	if len(search.Molecules) == 0 {
		return nil, nil
	}

	bestID, bestName, bestScore := "", "", -1.0
	for _, m := range search.Molecules {
		score := scoreCandidate(name, m.PrefName)
		if score > bestScore {
			bestID, bestName, bestScore = m.MoleculeChEMBLID, m.PrefName, score
		}
	}
	if bestID == "" || bestScore < 40 {
		return nil, nil
	}

	reason := fmt.Sprintf("best name match (score %.0f)", bestScore)
	if normName(name) == normName(bestName) {
		reason = "exact preferred-name match"
	}

	profile := &types.MoleculeProfile{
		ChEMBLID:      bestID,
		PreferredName: bestName,
		MatchReason:   reason,
	}

	// Mechanism context is best-effort; a failed lookup leaves the
	// profile without targets.
	if targets, err := c.mechanisms(ctx, bestID); err == nil {
		profile.TopTargets = targets
	}

	return profile, nil
}

// mechanisms returns the molecule's mechanism-of-action descriptions.
func (c *ChEMBLClient) mechanisms(ctx context.Context, chemblID string) ([]string, error) {
	body, err := c.getJSON(ctx, "/mechanism.json", url.Values{
		"molecule_chembl_id": {chemblID},
		"limit":              {strconv.Itoa(mechanismLimit)},
	})
	if err != nil {
		return nil, err
	}

	var parsed mechanismResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing mechanism response: %w", err)
	}

	var targets []string
	for _, m := range parsed.Mechanisms {
		if moa := strings.TrimSpace(m.MechanismOfAction); moa != "" {
			targets = append(targets, moa)
		}
	}
	return targets, nil
}

// getJSON performs one cached ChEMBL request.
func (c *ChEMBLClient) getJSON(ctx context.Context, path string, params url.Values) ([]byte, error) {
	key := cache.Fingerprint("chembl", path, params.Encode())
	if data, ok, err := c.cache.Get(key); err == nil && ok {
		return data, nil
	}

	reqURL := chemblBase + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("ChEMBL request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ChEMBL returned HTTP %d", resp.StatusCode)
	}

	data, err := readAll(resp)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, data)
	return data, nil
}

// normName lowercases and collapses whitespace for comparison.
func normName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// looksLikeForm reports whether a molecule name denotes a salt or hydrate
// form.
func looksLikeForm(name string) bool {
	n := normName(name)
	for _, h := range formHints {
		if strings.Contains(n, h) {
			return true
		}
	}
	return false
}

// scoreCandidate ranks a preferred name against the query. Token overlap
// carries the score; salt forms are penalized when the query did not ask
// for one, and containing the query verbatim earns a small bonus.
func scoreCandidate(query, prefName string) float64 {
	q, pn := normName(query), normName(prefName)

	if pn == "" {
		return -30
	}

	var score float64
	if q == pn {
		score = 100
	} else {
		score = tokenOverlap(q, pn) * 100
	}

	if looksLikeForm(pn) && !looksLikeForm(q) {
		score -= 12
	}
	if q != "" && strings.Contains(pn, q) {
		score += 4
	}

	return score
}

// tokenOverlap computes |intersection| / |union| over whitespace tokens.
func tokenOverlap(a, b string) float64 {
	as, bs := strings.Fields(a), strings.Fields(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	set := make(map[string]bool, len(as))
	for _, t := range as {
		set[t] = true
	}

	union := make(map[string]bool, len(as)+len(bs))
	for _, t := range as {
		union[t] = true
	}

	inter := 0
	seen := make(map[string]bool)
	for _, t := range bs {
		union[t] = true
		if set[t] && !seen[t] {
			inter++
			seen[t] = true
		}
	}

	return float64(inter) / float64(len(union))
}
