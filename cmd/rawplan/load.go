package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/rawcodec"
	"github.com/wippyai/rawcodec/errors"
	"github.com/wippyai/rawcodec/schema"
)

// Input kinds are chosen by file extension.
const (
	extYAML   = ".yaml"
	extYML    = ".yml"
	extWIT    = ".json"
	extBundle = ".plans"
)

// loadPlans reads every file and resolves the declarations it holds. Bundles
// are already resolved and load as-is. Declarations from all files resolve
// together, so duplicate names across files are reported.
func loadPlans(paths []string) ([]*schema.Plan, error) {
	var decls []schema.Declaration
	var plans []*schema.Plan

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseIO, errors.CodeIOError, err, "read "+path)
		}
		log := rawcodec.Logger().With(zap.String("file", path))

		switch strings.ToLower(filepath.Ext(path)) {
		case extYAML, extYML:
			ds, err := schema.LoadYAML(data, path)
			if err != nil {
				return nil, err
			}
			log.Debug("loaded declarations", zap.Int("types", len(ds)))
			decls = append(decls, ds...)

		case extWIT:
			ds, err := witDeclarations(data)
			if err != nil {
				return nil, err
			}
			log.Debug("loaded WIT declarations", zap.Int("types", len(ds)))
			decls = append(decls, ds...)

		case extBundle:
			ps, err := schema.UnmarshalBundle(data)
			if err != nil {
				return nil, err
			}
			log.Debug("loaded plan bundle", zap.Int("plans", len(ps)))
			plans = append(plans, ps...)

		default:
			return nil, errors.NotSupport(errors.PhaseIO,
				fmt.Sprintf("%s: unknown input kind, want %s, %s, %s or %s", path, extYAML, extYML, extWIT, extBundle))
		}
	}

	resolved, err := schema.ResolveAll(decls)
	if err != nil {
		return nil, err
	}
	plans = append(plans, resolved...)
	sort.Slice(plans, func(i, j int) bool { return plans[i].Name < plans[j].Name })
	return plans, nil
}

// witDeclarations converts the named type definitions of a WIT package,
// as printed by `wasm-tools component wit --json`. Kinds without a
// declaration form, such as resources and aliases, are skipped.
func witDeclarations(data []byte) ([]schema.Declaration, error) {
	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.CodeInvalidFormat, err, "decode WIT json")
	}
	var decls []schema.Declaration
	for _, td := range res.TypeDefs {
		if td.Name == nil {
			continue
		}
		d, err := schema.FromWIT(*td.Name, td)
		if errors.CodeOf(err) == errors.CodeNotSupport {
			rawcodec.Logger().Debug("skip WIT type", zap.String("type", *td.Name), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func planIndex(plans []*schema.Plan) map[string]*schema.Plan {
	idx := make(map[string]*schema.Plan, len(plans))
	for _, p := range plans {
		idx[p.Name] = p
	}
	return idx
}
