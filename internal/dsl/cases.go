package dsl

import (
	"context"
	"sort"

	"e2ekit/internal/domain"
	"e2ekit/internal/steplog"
)

// UndeclaredCase replaces the description of a case id missing from the case map.
const UndeclaredCase = "CASE IS NOT DECLARED"

// CaseLog records that the case with the given id was exercised.
type CaseLog func(id string)

// CasesBody is the body of a unit registered with RegisterCases.
type CasesBody func(ctx context.Context, logCase CaseLog) error

// RegisterCases registers a unit covering every case in cases (id -> description).
func RegisterCases(r Registrar, cases map[string]string, t string, body CasesBody) {
	RegisterCasesWithMode(r, cases, t, domain.ModeNone, body)
}

// RegisterCasesWithMode is RegisterCases with an explicit run modifier.
func RegisterCasesWithMode(r Registrar, cases map[string]string, t string, mode domain.Mode, body CasesBody) {
	ids := make([]string, 0, len(cases))
	for id := range cases {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	TestCase(r, Case{
		IDs:   ids,
		Title: t,
		Mode:  mode,
		Test: func(ctx context.Context) error {
			return body(ctx, caseLogger(steplog.FromContext(ctx), cases))
		},
	})
}

func caseLogger(log steplog.Logger, cases map[string]string) CaseLog {
	return func(id string) {
		desc, ok := cases[id]
		if !ok {
			log.Step(UndeclaredCase, map[string]any{"case": id, "warning": "undeclared case"})
			return
		}
		log.Step(desc, map[string]any{"case": id})
	}
}
