package app

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/pkg/config"
)

func TestWireWithoutRedis(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	cfg := &config.Config{ReportCards: config.ReportCardsConfig{CacheEnabled: true, SkillPolicy: config.SkillPolicyOmit}}
	container := Wire(cfg, nil, sqlx.NewDb(db, "sqlmock"), nil)

	assert.NotNil(t, container.ReportCards)
	assert.NotNil(t, container.Promotions)
	assert.NotNil(t, container.Terms)
	assert.False(t, container.Cache.Enabled())

	mock.ExpectPing()
	require.NoError(t, container.Ping(context.Background()))

	mock.ExpectClose()
	require.NoError(t, container.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
