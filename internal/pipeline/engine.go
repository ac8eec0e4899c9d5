// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one synthesis run: resolve the drug,
// retrieve evidence, generate the report, validate its grounding, and
// optionally repair uncited claims before the verdict header is attached.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/evidence-engine/internal/cache"
	"github.com/pdiddy/evidence-engine/internal/generate"
	"github.com/pdiddy/evidence-engine/internal/repair"
	"github.com/pdiddy/evidence-engine/internal/report"
	"github.com/pdiddy/evidence-engine/internal/retrieve"
	"github.com/pdiddy/evidence-engine/internal/validate"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// ErrNoSnippets indicates retrieval produced no citable evidence, so no
// report can be grounded.
var ErrNoSnippets = errors.New("no evidence snippets found")

// Resolver matches a drug name to molecular context. A nil profile with a
// nil error means no acceptable match.
type Resolver interface {
	ResolveDrug(ctx context.Context, name string) (*types.MoleculeProfile, error)
}

// PackBuilder retrieves the literature evidence pack for a query.
type PackBuilder interface {
	BuildEvidencePack(ctx context.Context, disease, drug, chemblID string) (*types.EvidencePack, error)
}

// Engine wires the pipeline stages together. Construct one with NewEngine
// for production collaborators, or assemble the struct directly in tests.
type Engine struct {
	Resolver  Resolver
	Packs     PackBuilder
	Generator generate.Backend
	Repairer  repair.Backend
	Config    types.PipelineConfig

	// Progress receives human-readable stage updates. Nil discards them.
	Progress io.Writer
}

// NewEngine builds an engine with live HTTP collaborators. The cache is
// shared between the PubMed and ChEMBL clients.
func NewEngine(cfg types.PipelineConfig, c cache.Cache) *Engine {
	return &Engine{
		Resolver:  retrieve.NewChEMBLClient(cfg.Retrieval, c),
		Packs:     retrieve.NewPubMedClient(cfg.Retrieval, c),
		Generator: generate.NewLMStudioBackend(cfg.Generation.AIConfig),
		Repairer:  repair.NewLMStudioBackend(cfg.Repair.AIConfig),
		Config:    cfg,
	}
}

// Run executes the full pipeline for one disease+drug pair. With agentic
// set, uncited bullets go through the bounded repair loop before final
// validation; otherwise the baseline report is validated as-is. The
// returned Result always carries metadata, even alongside ErrNoSnippets.
func (e *Engine) Run(ctx context.Context, disease, drug string, agentic bool) (*types.Result, error) {
	w := e.Progress
	if w == nil {
		w = io.Discard
	}

	fmt.Fprintf(w, "investigating %s for %s\n", drug, disease)

	res := &types.Result{
		Metadata: types.Metadata{Disease: disease, Drug: drug},
	}

	// Resolution failure is advisory: the pipeline proceeds on the raw
	// drug name.
	mol, err := e.Resolver.ResolveDrug(ctx, drug)
	if err != nil {
		fmt.Fprintf(w, "warning: ChEMBL resolution failed: %v\n", err)
	} else if mol != nil {
		res.Molecule = mol
		res.Metadata.ChEMBLID = mol.ChEMBLID
		res.Metadata.ChEMBLPreferredName = mol.PreferredName
		res.Metadata.ChEMBLMatchReason = mol.MatchReason
		fmt.Fprintf(w, "resolved %s to %s (%s)\n", drug, mol.ChEMBLID, mol.MatchReason)
	}

	pack, err := e.Packs.BuildEvidencePack(ctx, disease, drug, res.Metadata.ChEMBLID)
	if err != nil {
		return nil, fmt.Errorf("building evidence pack: %w", err)
	}

	snippets := retrieve.MakeSnippets(pack, e.Config.Retrieval.MaxSnippets)
	if len(snippets) == 0 {
		return res, ErrNoSnippets
	}
	res.Snippets = snippets
	fmt.Fprintf(w, "retrieved %d evidence snippet(s)\n", len(snippets))

	prompt, err := generate.BuildPrompt(disease, drug, snippets, res.Molecule)
	if err != nil {
		return nil, fmt.Errorf("building prompt: %w", err)
	}

	raw, err := e.Generator.Generate(ctx, prompt, e.Config.Generation.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating report: %w", err)
	}

	final := raw
	if agentic {
		outcome, err := repair.Run(ctx, raw, snippets, e.Repairer, repair.Options{
			MaxRetries:        e.Config.Repair.MaxRetries,
			TargetCoveragePct: e.Config.Repair.TargetCoveragePct,
		}, w)
		if err != nil {
			return nil, fmt.Errorf("repairing report: %w", err)
		}
		final = outcome.Report
		res.MetricsAll = outcome.Overall
		res.MetricsSection = outcome.Section
		res.AgenticUsed = outcome.AgenticUsed
		res.Attempts = outcome.Attempts
		res.RepairLog = outcome.Log
		res.RewrittenInsufficient = outcome.RewrittenInsufficient
	} else {
		res.MetricsAll = validate.Validate(final, snippets)
		res.MetricsSection = validate.ValidateBullets(report.EvidenceSummaryBullets(final), snippets)
	}

	res.TrustScore = res.MetricsAll.CoveragePct
	res.Report = AddHeaderBlock(final, snippets)
	res.Sources = sources(snippets)

	fmt.Fprintf(w, "trust score: %.2f%%\n", res.TrustScore)
	return res, nil
}

// sources maps snippets to the report's Sources entries.
func sources(snippets []types.Snippet) []types.Source {
	out := make([]types.Source, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, types.Source{
			SID:   s.SID,
			PMID:  s.PMID,
			Title: s.Title,
			URL:   s.URL,
		})
	}
	return out
}
