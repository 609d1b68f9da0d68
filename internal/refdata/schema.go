package refdata

// Reference table names shared by the loaders and the importer.
const (
	TableCosifIndividual = "cosif_individual"
	TableCosifPrudencial = "cosif_prudencial"
	TableIFData          = "ifdata_valores"
	TableCadastro        = "cadastro"
)

// Column orders used for bulk loads. Insert values must follow these.
var (
	CosifIndividualColumns = []string{"data", "cnpj_8", "nome", "conta", "nome_conta", "saldo", "documento"}
	CosifPrudencialColumns = []string{"data", "cnpj_8", "nome", "cod_congl", "conta", "nome_conta", "saldo", "documento"}
	IFDataColumns          = []string{"data", "cod_inst", "conta", "nome_conta", "valor"}
	CadastroColumns        = []string{"data", "cnpj_8", "nome_entidade", "cod_congl_prud", "cod_congl_financeiro", "atributos"}
)

// SQLiteSchema creates the reference tables on SQLite. Primary keys make
// re-imports idempotent via INSERT OR REPLACE.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS cosif_individual (
	data       INTEGER NOT NULL,
	cnpj_8     TEXT NOT NULL,
	nome       TEXT NOT NULL,
	conta      INTEGER NOT NULL,
	nome_conta TEXT NOT NULL,
	saldo      REAL NOT NULL,
	documento  INTEGER NOT NULL,
	PRIMARY KEY (data, cnpj_8, conta, documento)
);

CREATE TABLE IF NOT EXISTS cosif_prudencial (
	data       INTEGER NOT NULL,
	cnpj_8     TEXT NOT NULL,
	nome       TEXT NOT NULL,
	cod_congl  TEXT NOT NULL,
	conta      INTEGER NOT NULL,
	nome_conta TEXT NOT NULL,
	saldo      REAL NOT NULL,
	documento  INTEGER NOT NULL,
	PRIMARY KEY (data, cnpj_8, conta, documento)
);

CREATE TABLE IF NOT EXISTS ifdata_valores (
	data       INTEGER NOT NULL,
	cod_inst   TEXT NOT NULL,
	conta      INTEGER NOT NULL,
	nome_conta TEXT NOT NULL,
	valor      REAL NOT NULL,
	PRIMARY KEY (data, cod_inst, conta)
);

CREATE TABLE IF NOT EXISTS cadastro (
	data                 INTEGER NOT NULL,
	cnpj_8               TEXT NOT NULL,
	nome_entidade        TEXT NOT NULL,
	cod_congl_prud       TEXT NOT NULL DEFAULT '',
	cod_congl_financeiro TEXT NOT NULL DEFAULT '',
	atributos            TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (data, cnpj_8)
);

CREATE INDEX IF NOT EXISTS idx_cosif_individual_cnpj ON cosif_individual(cnpj_8);
CREATE INDEX IF NOT EXISTS idx_cosif_prudencial_cnpj ON cosif_prudencial(cnpj_8);
CREATE INDEX IF NOT EXISTS idx_cosif_prudencial_congl ON cosif_prudencial(cod_congl);
CREATE INDEX IF NOT EXISTS idx_ifdata_cod_inst ON ifdata_valores(cod_inst);
CREATE INDEX IF NOT EXISTS idx_cadastro_cnpj ON cadastro(cnpj_8);
`

// PostgresSchema creates the reference tables on PostgreSQL.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS cosif_individual (
	data       INTEGER NOT NULL,
	cnpj_8     TEXT NOT NULL,
	nome       TEXT NOT NULL,
	conta      BIGINT NOT NULL,
	nome_conta TEXT NOT NULL,
	saldo      DOUBLE PRECISION NOT NULL,
	documento  INTEGER NOT NULL,
	PRIMARY KEY (data, cnpj_8, conta, documento)
);

CREATE TABLE IF NOT EXISTS cosif_prudencial (
	data       INTEGER NOT NULL,
	cnpj_8     TEXT NOT NULL,
	nome       TEXT NOT NULL,
	cod_congl  TEXT NOT NULL,
	conta      BIGINT NOT NULL,
	nome_conta TEXT NOT NULL,
	saldo      DOUBLE PRECISION NOT NULL,
	documento  INTEGER NOT NULL,
	PRIMARY KEY (data, cnpj_8, conta, documento)
);

CREATE TABLE IF NOT EXISTS ifdata_valores (
	data       INTEGER NOT NULL,
	cod_inst   TEXT NOT NULL,
	conta      BIGINT NOT NULL,
	nome_conta TEXT NOT NULL,
	valor      DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (data, cod_inst, conta)
);

CREATE TABLE IF NOT EXISTS cadastro (
	data                 INTEGER NOT NULL,
	cnpj_8               TEXT NOT NULL,
	nome_entidade        TEXT NOT NULL,
	cod_congl_prud       TEXT NOT NULL DEFAULT '',
	cod_congl_financeiro TEXT NOT NULL DEFAULT '',
	atributos            JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (data, cnpj_8)
);

CREATE INDEX IF NOT EXISTS idx_cosif_individual_cnpj ON cosif_individual(cnpj_8);
CREATE INDEX IF NOT EXISTS idx_cosif_prudencial_cnpj ON cosif_prudencial(cnpj_8);
CREATE INDEX IF NOT EXISTS idx_cosif_prudencial_congl ON cosif_prudencial(cod_congl);
CREATE INDEX IF NOT EXISTS idx_ifdata_cod_inst ON ifdata_valores(cod_inst);
CREATE INDEX IF NOT EXISTS idx_cadastro_cnpj ON cadastro(cnpj_8);
`
