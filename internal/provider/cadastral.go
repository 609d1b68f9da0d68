package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

// Structural registry columns addressable as attributes alongside the
// free-form ones.
const (
	AttrNomeEntidade       = "nome_entidade"
	AttrCodConglPrud       = "cod_congl_prud"
	AttrCodConglFinanceiro = "cod_congl_financeiro"
)

// Cadastral projects registry attributes for resolved entities.
type Cadastral struct {
	store *refdata.Store
}

// NewCadastral creates the cadastral provider.
func NewCadastral(store *refdata.Store) *Cadastral {
	return &Cadastral{store: store}
}

// Get projects the requested attributes off the entity's most recent
// registry row. An attribute name absent from the registry fails the whole
// request with DataUnavailableError. An empty request returns every
// attribute the entity has.
func (p *Cadastral) Get(ctx context.Context, id model.CanonicalIdentity, attributes []string) (model.CadastralRow, error) {
	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return model.CadastralRow{}, err
	}

	cad, ok := snap.CadastroLatest(id.CNPJ8)
	if !ok {
		// The identity predates a reload that dropped the entity.
		return model.CadastralRow{}, &model.DataUnavailableError{
			Entity: id.NomeEntidade,
			Reason: "entity is no longer present in the registry",
		}
	}

	out := model.CadastralRow{
		NomeEntidade: id.NomeEntidade,
		CNPJ8:        id.CNPJ8,
		Atributos:    make(map[string]string),
	}

	if len(attributes) == 0 {
		for k, v := range cad.Atributos {
			out.Atributos[k] = v
		}
		return out, nil
	}

	for _, attr := range attributes {
		value, ok := lookupAttribute(cad, attr)
		if !ok {
			return model.CadastralRow{}, &model.DataUnavailableError{
				Entity: id.NomeEntidade,
				Reason: fmt.Sprintf("attribute %q not found in the registry", attr),
			}
		}
		out.Atributos[attr] = value
	}
	return out, nil
}

// Attributes lists every attribute name known to the registry across all
// entities, sorted, so callers can discover what Get accepts.
func (p *Cadastral) Attributes(ctx context.Context) ([]string, error) {
	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{
		AttrNomeEntidade:       true,
		AttrCodConglPrud:       true,
		AttrCodConglFinanceiro: true,
	}
	for _, entry := range snap.Names() {
		cad, ok := snap.CadastroLatest(entry.CNPJ8)
		if !ok {
			continue
		}
		for k := range cad.Atributos {
			seen[k] = true
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func lookupAttribute(cad *refdata.CadastroRow, attr string) (string, bool) {
	if v, ok := cad.Atributos[attr]; ok {
		return v, true
	}
	switch attr {
	case AttrNomeEntidade:
		return cad.NomeEntidade, true
	case AttrCodConglPrud:
		return cad.CodConglPrud, true
	case AttrCodConglFinanceiro:
		return cad.CodConglFinanceiro, true
	}
	return "", false
}
