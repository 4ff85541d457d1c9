// Package authz decides who may mutate the train catalog and who a caller is.
package authz

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
	"github.com/open-policy-agent/opa/storage/inmem"
)

//go:embed policy.rego
var policy string

const allowQuery = "data.eticket.authz.allow"

// Request is the policy input for one HTTP call.
type Request struct {
	Method     string
	Path       string
	AdminToken string
	Identity   *Identity
}

// Gate evaluates the catalog access policy in-process.
type Gate struct {
	query rego.PreparedEvalQuery
}

// NewGate compiles the policy with adminToken as the capability token.
func NewGate(ctx context.Context, adminToken string) (*Gate, error) {
	store := inmem.NewFromObject(map[string]interface{}{
		"config": map[string]interface{}{"admin_token": adminToken},
	})

	query, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("policy.rego", policy),
		rego.Store(store),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare access policy: %w", err)
	}
	return &Gate{query: query}, nil
}

func (g *Gate) Allow(ctx context.Context, req Request) (bool, error) {
	input := map[string]interface{}{
		"method":      req.Method,
		"path":        req.Path,
		"admin_token": req.AdminToken,
		"role":        "",
	}
	if req.Identity != nil {
		input["role"] = req.Identity.Role
		input["subject"] = req.Identity.Subject
	}

	rs, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("evaluate access policy: %w", err)
	}
	return rs.Allowed(), nil
}
