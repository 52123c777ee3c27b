// Package matrix drives the model × scope × API-variant enumeration and
// accumulates one row per (model, scope) pair.
package matrix

import (
	"context"
	"fmt"

	"github.com/everstacklabs/bedrockscan/internal/catalog"
	"github.com/everstacklabs/bedrockscan/internal/probe"
	"github.com/everstacklabs/bedrockscan/internal/profiles"
)

// Row holds the verdict per API variant for one (model, scope) pair.
type Row struct {
	Model    catalog.Model
	Scope    profiles.Scope
	Verdicts map[probe.Variant]probe.Verdict
}

// ErrorEntry records one indeterminate probe failure for the error log,
// with enough context to tell transient failure from true incompatibility.
type ErrorEntry struct {
	Model   catalog.Model
	Scope   profiles.Scope
	Variant probe.Variant
	Message string
}

// Prober is satisfied by *probe.Prober.
type Prober interface {
	Probe(ctx context.Context, target probe.Target, variant probe.Variant) probe.Result
}

// Build enumerates models in catalog order, each model's scopes in fixed
// scope order, and the four variants in fixed column order, probing every
// cell strictly sequentially. Enumeration order is deterministic given the
// same catalog and profile map. A progress line per completed cell goes to
// stdout for operator visibility.
func Build(ctx context.Context, models []catalog.Model, profileMap profiles.Map, prober Prober) ([]Row, []ErrorEntry) {
	total := cellCount(models, profileMap)

	var (
		rows []Row
		errs []ErrorEntry
		cell int
	)

	for _, model := range models {
		targets := profileMap.Scopes(model.ID)
		for _, scope := range profiles.ScopeOrder {
			invokeID, ok := targets[scope]
			if !ok {
				continue
			}
			target := probe.Target{Model: model, Scope: scope, InvokeID: invokeID}
			row := Row{
				Model:    model,
				Scope:    scope,
				Verdicts: make(map[probe.Variant]probe.Verdict, len(probe.Variants)),
			}
			for _, variant := range probe.Variants {
				res := prober.Probe(ctx, target, variant)
				row.Verdicts[variant] = res.Verdict
				cell++
				fmt.Printf("[%d/%d] %s (%s) %s %s: %s\n",
					cell, total, model.ID, model.Service, scope, variant, res.Verdict.Mark())
				if res.Indeterminate {
					errs = append(errs, ErrorEntry{
						Model:   model,
						Scope:   scope,
						Variant: variant,
						Message: res.Err.Error(),
					})
				}
			}
			rows = append(rows, row)
		}
	}

	return rows, errs
}

func cellCount(models []catalog.Model, profileMap profiles.Map) int {
	n := 0
	for _, m := range models {
		n += len(profileMap.Scopes(m.ID)) * len(probe.Variants)
	}
	return n
}
