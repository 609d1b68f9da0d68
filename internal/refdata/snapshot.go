package refdata

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/normalize"
)

// NameEntry is one searchable entity name: the display form, its normalized
// matching form, and the entity it belongs to. There is exactly one entry
// per registered entity, carrying its most recent name.
type NameEntry struct {
	Norm  string
	Name  string
	CNPJ8 string
}

// Account is one entry of an account dictionary.
type Account struct {
	Code int64  `json:"code"`
	Name string `json:"name"`
}

// AccountDict maps between account codes and names for one source table.
type AccountDict struct {
	byCode   map[int64]string
	byNorm   map[string]int64
	accounts []Account // sorted by code
}

func newAccountDict(byCode map[int64]string) *AccountDict {
	d := &AccountDict{
		byCode:   byCode,
		byNorm:   make(map[string]int64, len(byCode)),
		accounts: make([]Account, 0, len(byCode)),
	}
	for code, name := range byCode {
		d.accounts = append(d.accounts, Account{Code: code, Name: name})
		norm := normalize.Name(name)
		if _, ok := d.byNorm[norm]; !ok {
			d.byNorm[norm] = code
		}
	}
	sort.Slice(d.accounts, func(i, j int) bool { return d.accounts[i].Code < d.accounts[j].Code })
	return d
}

// Len returns the number of known accounts.
func (d *AccountDict) Len() int { return len(d.accounts) }

// Resolve maps an account selector to a dictionary entry. Name selectors
// match exactly after normalization; code selectors match by code. The
// second return is false when the selector matches nothing.
func (d *AccountDict) Resolve(sel model.AccountSelector) (Account, bool) {
	if sel.IsCode() {
		name, ok := d.byCode[sel.Code]
		if !ok {
			return Account{}, false
		}
		return Account{Code: sel.Code, Name: name}, true
	}
	code, ok := d.byNorm[normalize.Name(sel.Name)]
	if !ok {
		return Account{}, false
	}
	return Account{Code: code, Name: d.byCode[code]}, true
}

// Search returns accounts whose name contains the query (accent and case
// insensitive) or whose code starts with it when the query is numeric. An
// empty query returns every account.
func (d *AccountDict) Search(query string) []Account {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Account, len(d.accounts))
		copy(out, d.accounts)
		return out
	}

	var out []Account
	if _, err := strconv.ParseInt(query, 10, 64); err == nil {
		for _, a := range d.accounts {
			if strings.HasPrefix(strconv.FormatInt(a.Code, 10), query) {
				out = append(out, a)
			}
		}
		return out
	}

	norm := normalize.Name(query)
	for _, a := range d.accounts {
		if strings.Contains(normalize.Name(a.Name), norm) {
			out = append(out, a)
		}
	}
	return out
}

// Counts summarizes a snapshot's table sizes.
type Counts struct {
	CosifIndividual int `json:"cosif_individual"`
	CosifPrudencial int `json:"cosif_prudencial"`
	IFData          int `json:"ifdata"`
	Cadastro        int `json:"cadastro"`
	Entities        int `json:"entities"`
}

// Snapshot is an immutable view of the reference tables plus the derived
// indexes resolution and querying run against. Once built it is only ever
// read, so it is safe to share across goroutines without locking.
type Snapshot struct {
	loadedAt time.Time
	counts   Counts

	cadastro      map[string]*CadastroRow // latest registry row per cnpj_8
	names         []NameEntry             // sorted by (norm, cnpj_8)
	leaderByCongl map[string]string       // cod_congl_prud -> reporting leader cnpj_8

	cosif      map[model.LedgerKind]map[string][]*CosifRow
	ifdata     map[string][]*IFDataRow
	cosifDict  map[model.LedgerKind]*AccountDict
	ifdataDict *AccountDict
}

// NewSnapshot derives every index from raw tables in one pass per table.
func NewSnapshot(tables Tables) *Snapshot {
	s := &Snapshot{
		loadedAt:      time.Now().UTC(),
		cadastro:      make(map[string]*CadastroRow),
		leaderByCongl: make(map[string]string),
		cosif: map[model.LedgerKind]map[string][]*CosifRow{
			model.LedgerIndividual: make(map[string][]*CosifRow),
			model.LedgerPrudencial: make(map[string][]*CosifRow),
		},
		ifdata: make(map[string][]*IFDataRow),
	}

	for i := range tables.Cadastro {
		row := &tables.Cadastro[i]
		cur, ok := s.cadastro[row.CNPJ8]
		if !ok || row.Data > cur.Data {
			s.cadastro[row.CNPJ8] = row
		}
	}

	s.names = make([]NameEntry, 0, len(s.cadastro))
	for cnpj8, row := range s.cadastro {
		s.names = append(s.names, NameEntry{
			Norm:  normalize.Name(row.NomeEntidade),
			Name:  row.NomeEntidade,
			CNPJ8: cnpj8,
		})
	}
	sort.Slice(s.names, func(i, j int) bool {
		if s.names[i].Norm != s.names[j].Norm {
			return s.names[i].Norm < s.names[j].Norm
		}
		return s.names[i].CNPJ8 < s.names[j].CNPJ8
	})

	indAccounts := make(map[int64]string)
	for i := range tables.CosifIndividual {
		row := &tables.CosifIndividual[i]
		s.cosif[model.LedgerIndividual][row.CNPJ8] = append(s.cosif[model.LedgerIndividual][row.CNPJ8], row)
		if _, ok := indAccounts[row.Conta]; !ok {
			indAccounts[row.Conta] = row.NomeConta
		}
	}

	// The prudential ledger doubles as the conglomerate-leader registry:
	// whoever files for a conglomerate code is its reporting leader. The
	// most recent filing wins.
	prudAccounts := make(map[int64]string)
	leaderData := make(map[string]int)
	for i := range tables.CosifPrudencial {
		row := &tables.CosifPrudencial[i]
		s.cosif[model.LedgerPrudencial][row.CNPJ8] = append(s.cosif[model.LedgerPrudencial][row.CNPJ8], row)
		if _, ok := prudAccounts[row.Conta]; !ok {
			prudAccounts[row.Conta] = row.NomeConta
		}
		if row.CodCongl == "" {
			continue
		}
		if cur, ok := leaderData[row.CodCongl]; !ok || row.Data > cur {
			leaderData[row.CodCongl] = row.Data
			s.leaderByCongl[row.CodCongl] = row.CNPJ8
		}
	}

	ifdataAccounts := make(map[int64]string)
	for i := range tables.IFData {
		row := &tables.IFData[i]
		s.ifdata[row.CodInst] = append(s.ifdata[row.CodInst], row)
		if _, ok := ifdataAccounts[row.Conta]; !ok {
			ifdataAccounts[row.Conta] = row.NomeConta
		}
	}

	s.cosifDict = map[model.LedgerKind]*AccountDict{
		model.LedgerIndividual: newAccountDict(indAccounts),
		model.LedgerPrudencial: newAccountDict(prudAccounts),
	}
	s.ifdataDict = newAccountDict(ifdataAccounts)

	s.counts = Counts{
		CosifIndividual: len(tables.CosifIndividual),
		CosifPrudencial: len(tables.CosifPrudencial),
		IFData:          len(tables.IFData),
		Cadastro:        len(tables.Cadastro),
		Entities:        len(s.cadastro),
	}
	return s
}

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Counts returns the table sizes the snapshot was built from.
func (s *Snapshot) Counts() Counts { return s.counts }

// CadastroLatest returns the most recent registry row for a tax-ID root.
func (s *Snapshot) CadastroLatest(cnpj8 string) (*CadastroRow, bool) {
	row, ok := s.cadastro[cnpj8]
	return row, ok
}

// Names returns the searchable name index, sorted for deterministic scans.
// Callers must not mutate the returned slice.
func (s *Snapshot) Names() []NameEntry { return s.names }

// LeaderFor returns the tax-ID root that files consolidated statements for
// a prudential conglomerate code.
func (s *Snapshot) LeaderFor(codConglPrud string) (string, bool) {
	leader, ok := s.leaderByCongl[codConglPrud]
	return leader, ok
}

// CosifRows returns the ledger rows filed under a tax-ID root, nil when the
// root filed nothing in that ledger.
func (s *Snapshot) CosifRows(kind model.LedgerKind, cnpj8 string) []*CosifRow {
	return s.cosif[kind][cnpj8]
}

// IFDataRows returns the indicator rows published for a lookup code.
func (s *Snapshot) IFDataRows(code string) []*IFDataRow {
	return s.ifdata[code]
}

// CosifDict returns the account dictionary of one ledger.
func (s *Snapshot) CosifDict(kind model.LedgerKind) *AccountDict {
	return s.cosifDict[kind]
}

// IFDataDict returns the indicator account dictionary.
func (s *Snapshot) IFDataDict() *AccountDict { return s.ifdataDict }
