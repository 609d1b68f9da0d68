package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "cosif_individual", []string{"data", "cnpj_8"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"cosif_individual"}, []string{"data", "cnpj_8", "saldo"}).WillReturnResult(3)

	rows := [][]any{
		{202312, "60701190", 1000.0},
		{202312, "00000208", 2000.0},
		{202312, "00416968", 3000.0},
	}
	n, err := CopyFrom(context.Background(), mock, "cosif_individual", []string{"data", "cnpj_8", "saldo"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_SchemaQualified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"bacen", "cadastro"}, []string{"data", "cnpj_8"}).WillReturnResult(1)

	n, err := CopyFrom(context.Background(), mock, "bacen.cadastro", []string{"data", "cnpj_8"}, [][]any{{202312, "60701190"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ifdata_valores"}, []string{"data"}).
		WillReturnError(fmt.Errorf("connection reset"))

	_, err = CopyFrom(context.Background(), mock, "ifdata_valores", []string{"data"}, [][]any{{202312}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO ifdata_valores")
}

func TestTableIdentifier(t *testing.T) {
	assert.Equal(t, pgx.Identifier{"cadastro"}, tableIdentifier("cadastro"))
	assert.Equal(t, pgx.Identifier{"bacen", "cadastro"}, tableIdentifier("bacen.cadastro"))
}
