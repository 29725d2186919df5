// Package advisor generates classroom activity suggestions for catalog
// items. Suggestions are advisory text only and never touch inventory
// state, so a failed call degrades to a fixed message.
package advisor

import "context"

// Fallback messages shown when the upstream model cannot answer.
const (
	EmptyResponseMessage = "Não foi possível gerar sugestões no momento."
	ErrorMessage         = "Erro ao obter sugestões pedagógicas."
	DisabledMessage      = "Sugestões indisponíveis: nenhuma chave de API configurada."
)

// Advisor produces activity suggestions for an item. Implementations
// must be side-effect free so callers can re-invoke freely.
type Advisor interface {
	Suggest(ctx context.Context, name, description string) (string, error)
}

// Disabled is the advisor used when no API key is configured.
type Disabled struct{}

func (Disabled) Suggest(context.Context, string, string) (string, error) {
	return DisabledMessage, nil
}
