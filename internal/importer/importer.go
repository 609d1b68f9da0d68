// Package importer loads BACEN reference-data drops (CSV exports of the
// COSIF ledgers, the IFDATA indicator series, and the institution
// registry) into a relational store. Upserts key on each table's natural
// key, so re-importing the same drop is idempotent.
package importer

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/normalize"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

// Dataset ties one CSV layout to its destination table.
type Dataset interface {
	// Name is the dataset's CLI identifier.
	Name() string
	// File is the expected file name inside the drop directory.
	File() string
	// Table is the destination table.
	Table() string
	// Columns is the destination column order ParseRecord emits.
	Columns() []string
	// ConflictKeys are the natural-key columns upserts match on.
	ConflictKeys() []string
	// Required lists header columns the file cannot be parsed without.
	Required() []string
	// ParseRecord converts one CSV record into a destination row. An
	// error marks the record as skipped, not the import as failed.
	ParseRecord(record []string, cols map[string]int) ([]any, error)
}

// Datasets returns all known datasets in import order.
func Datasets() []Dataset {
	return []Dataset{
		&CosifIndividual{},
		&CosifPrudencial{},
		&IFDataValores{},
		&Cadastro{},
	}
}

// Names lists the dataset identifiers in import order.
func Names() []string {
	all := Datasets()
	names := make([]string, len(all))
	for i, ds := range all {
		names[i] = ds.Name()
	}
	return names
}

// Select returns the named datasets, or all of them when names is empty.
func Select(names []string) ([]Dataset, error) {
	all := Datasets()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Dataset, len(all))
	for _, ds := range all {
		byName[ds.Name()] = ds
	}
	out := make([]Dataset, 0, len(names))
	for _, name := range names {
		ds, ok := byName[name]
		if !ok {
			return nil, eris.Errorf("importer: unknown dataset %q (valid: %s)", name, strings.Join(Names(), ", "))
		}
		out = append(out, ds)
	}
	return out, nil
}

// CosifIndividual imports the entity-level accounting ledger.
type CosifIndividual struct{}

func (d *CosifIndividual) Name() string           { return "cosif-individual" }
func (d *CosifIndividual) File() string           { return "cosif_individual.csv" }
func (d *CosifIndividual) Table() string          { return refdata.TableCosifIndividual }
func (d *CosifIndividual) Columns() []string      { return refdata.CosifIndividualColumns }
func (d *CosifIndividual) ConflictKeys() []string { return []string{"data", "cnpj_8", "conta", "documento"} }
func (d *CosifIndividual) Required() []string {
	return []string{"data", "cnpj_8", "conta", "saldo", "documento"}
}

func (d *CosifIndividual) ParseRecord(record []string, cols map[string]int) ([]any, error) {
	return parseCosifRecord(record, cols, model.LedgerIndividual, false)
}

// CosifPrudencial imports the consolidated accounting ledger, filed under
// each conglomerate's reporting leader.
type CosifPrudencial struct{}

func (d *CosifPrudencial) Name() string           { return "cosif-prudencial" }
func (d *CosifPrudencial) File() string           { return "cosif_prudencial.csv" }
func (d *CosifPrudencial) Table() string          { return refdata.TableCosifPrudencial }
func (d *CosifPrudencial) Columns() []string      { return refdata.CosifPrudencialColumns }
func (d *CosifPrudencial) ConflictKeys() []string { return []string{"data", "cnpj_8", "conta", "documento"} }
func (d *CosifPrudencial) Required() []string {
	return []string{"data", "cnpj_8", "cod_congl", "conta", "saldo", "documento"}
}

func (d *CosifPrudencial) ParseRecord(record []string, cols map[string]int) ([]any, error) {
	return parseCosifRecord(record, cols, model.LedgerPrudencial, true)
}

func parseCosifRecord(record []string, cols map[string]int, kind model.LedgerKind, withCongl bool) ([]any, error) {
	data, err := parseYearMonth(getCol(record, cols, "data"))
	if err != nil {
		return nil, err
	}
	cnpj8, ok := normalize.CNPJ(getCol(record, cols, "cnpj_8"))
	if !ok {
		return nil, eris.Errorf("importer: bad cnpj_8 %q", getCol(record, cols, "cnpj_8"))
	}
	conta, err := parseInt64Field(getCol(record, cols, "conta"))
	if err != nil {
		return nil, err
	}
	saldo, err := parseDecimal(getCol(record, cols, "saldo"))
	if err != nil {
		return nil, err
	}
	documento, err := parseIntField(getCol(record, cols, "documento"))
	if err != nil {
		return nil, err
	}
	// A document code from the wrong ledger means the row landed in the
	// wrong file; loading it would silently conflate the populations.
	if docKind, ok := model.DocumentLedgerKind(documento); !ok || docKind != kind {
		return nil, eris.Errorf("importer: document %d does not belong to the %s ledger", documento, kind)
	}

	nome := trimQuotes(getCol(record, cols, "nome"))
	nomeConta := trimQuotes(getCol(record, cols, "nome_conta"))
	if withCongl {
		codCongl := strings.TrimSpace(getCol(record, cols, "cod_congl"))
		if codCongl == "" {
			return nil, eris.New("importer: prudential row without cod_congl")
		}
		return []any{data, cnpj8, nome, codCongl, conta, nomeConta, saldo, documento}, nil
	}
	return []any{data, cnpj8, nome, conta, nomeConta, saldo, documento}, nil
}

// IFDataValores imports the quarterly regulatory-indicator series. Rows
// are keyed by institution code, which may be a tax-ID root or a
// conglomerate code.
type IFDataValores struct{}

func (d *IFDataValores) Name() string           { return "ifdata" }
func (d *IFDataValores) File() string           { return "ifdata_valores.csv" }
func (d *IFDataValores) Table() string          { return refdata.TableIFData }
func (d *IFDataValores) Columns() []string      { return refdata.IFDataColumns }
func (d *IFDataValores) ConflictKeys() []string { return []string{"data", "cod_inst", "conta"} }
func (d *IFDataValores) Required() []string     { return []string{"data", "cod_inst", "conta", "valor"} }

func (d *IFDataValores) ParseRecord(record []string, cols map[string]int) ([]any, error) {
	data, err := parseYearMonth(getCol(record, cols, "data"))
	if err != nil {
		return nil, err
	}
	codInst := strings.TrimSpace(getCol(record, cols, "cod_inst"))
	if codInst == "" {
		return nil, eris.New("importer: indicator row without cod_inst")
	}
	conta, err := parseInt64Field(getCol(record, cols, "conta"))
	if err != nil {
		return nil, err
	}
	valor, err := parseDecimal(getCol(record, cols, "valor"))
	if err != nil {
		return nil, err
	}
	nomeConta := trimQuotes(getCol(record, cols, "nome_conta"))
	return []any{data, codInst, conta, nomeConta, valor}, nil
}

// Cadastro imports the institution registry. Header columns beyond the
// structural ones become entries in the atributos JSON column, so a drop
// can carry whatever attributes the source published that period.
type Cadastro struct{}

func (d *Cadastro) Name() string           { return "cadastro" }
func (d *Cadastro) File() string           { return "cadastro.csv" }
func (d *Cadastro) Table() string          { return refdata.TableCadastro }
func (d *Cadastro) Columns() []string      { return refdata.CadastroColumns }
func (d *Cadastro) ConflictKeys() []string { return []string{"data", "cnpj_8"} }
func (d *Cadastro) Required() []string     { return []string{"data", "cnpj_8", "nome_entidade"} }

func (d *Cadastro) ParseRecord(record []string, cols map[string]int) ([]any, error) {
	data, err := parseYearMonth(getCol(record, cols, "data"))
	if err != nil {
		return nil, err
	}
	cnpj8, ok := normalize.CNPJ(getCol(record, cols, "cnpj_8"))
	if !ok {
		return nil, eris.Errorf("importer: bad cnpj_8 %q", getCol(record, cols, "cnpj_8"))
	}
	nome := trimQuotes(getCol(record, cols, "nome_entidade"))
	if nome == "" {
		return nil, eris.New("importer: registry row without nome_entidade")
	}
	codConglPrud := strings.TrimSpace(getCol(record, cols, "cod_congl_prud"))
	codConglFin := strings.TrimSpace(getCol(record, cols, "cod_congl_financeiro"))

	atributos, err := extraColumnsJSON(record, cols, map[string]bool{
		"data": true, "cnpj_8": true, "nome_entidade": true,
		"cod_congl_prud": true, "cod_congl_financeiro": true,
	})
	if err != nil {
		return nil, err
	}
	return []any{data, cnpj8, nome, codConglPrud, codConglFin, atributos}, nil
}
