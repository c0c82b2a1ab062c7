package snowflake

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tghanchidnx/Databridge-AI-sub003/pkg/adapter"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name      string
		cfg       adapter.Config
		want      string
		expectErr string
	}{
		{
			name: "full config",
			cfg: adapter.Config{
				Account:   "xy12345",
				Username:  "wright",
				Password:  "secret",
				Database:  "ANALYTICS",
				Schema:    "FINANCE",
				Warehouse: "COMPUTE_WH",
				Role:      "TRANSFORMER",
			},
			want: "wright:secret@xy12345/ANALYTICS/FINANCE?role=TRANSFORMER&warehouse=COMPUTE_WH",
		},
		{
			name: "no warehouse or role",
			cfg: adapter.Config{
				Account:  "xy12345",
				Username: "wright",
				Password: "secret",
				Database: "ANALYTICS",
				Schema:   "FINANCE",
			},
			want: "wright:secret@xy12345/ANALYTICS/FINANCE",
		},
		{
			name: "database without schema",
			cfg: adapter.Config{
				Account:  "xy12345",
				Username: "wright",
				Password: "secret",
				Database: "ANALYTICS",
			},
			want: "wright:secret@xy12345/ANALYTICS",
		},
		{
			name: "extra options",
			cfg: adapter.Config{
				Account:  "xy12345",
				Username: "wright",
				Password: "secret",
				Options:  map[string]string{"client_session_keep_alive": "true"},
			},
			want: "wright:secret@xy12345?client_session_keep_alive=true",
		},
		{
			name:      "missing account",
			cfg:       adapter.Config{Username: "wright", Password: "secret"},
			expectErr: "requires an account",
		},
		{
			name:      "missing username",
			cfg:       adapter.Config{Account: "xy12345", Password: "secret"},
			expectErr: "requires a username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildDSN(tt.cfg)
			if tt.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDialect(t *testing.T) {
	a := New(nil)
	assert.Equal(t, "snowflake", a.Dialect())
}

func TestSelfRegistration(t *testing.T) {
	assert.True(t, adapter.IsRegistered("snowflake"), "snowflake adapter should be auto-registered")

	ad, err := adapter.NewAdapter(adapter.Config{Type: "snowflake"}, nil)
	require.NoError(t, err)
	require.NotNil(t, ad)
	assert.Equal(t, "snowflake", ad.Dialect())
}

func TestConnect_InvalidConfig(t *testing.T) {
	a := New(nil)
	err := a.Connect(context.Background(), adapter.Config{Type: "snowflake"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an account")
	assert.False(t, a.IsConnected())
}

func TestFetchDDL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := New(nil)
	a.DB = db

	const stored = "create or replace dynamic table DT_3_GROSS_SALES_MART ..."
	rows := sqlmock.NewRows([]string{"GET_DDL"}).AddRow(stored)
	mock.ExpectQuery(`SELECT GET_DDL\('TABLE', 'ANALYTICS\.FINANCE\.DT_3_GROSS_SALES_MART'\)`).
		WillReturnRows(rows)

	ddl, err := a.FetchDDL(context.Background(), "TABLE", "ANALYTICS.FINANCE.DT_3_GROSS_SALES_MART")
	require.NoError(t, err)
	assert.Equal(t, stored, ddl)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchDDL_NotConnected(t *testing.T) {
	a := New(nil)
	_, err := a.FetchDDL(context.Background(), "VIEW", "ANALYTICS.FINANCE.VW_1_GROSS_SALES_TRANSLATION")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection not established")
}

func TestExec_DeployStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	a := New(nil)
	a.DB = db

	mock.ExpectExec("CREATE OR REPLACE DYNAMIC TABLE DT_2_GROSS_SALES_GRANULARITY").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = a.Exec(context.Background(), "CREATE OR REPLACE DYNAMIC TABLE DT_2_GROSS_SALES_GRANULARITY ...")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
