package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

func TestParseVector(t *testing.T) {
	vec, err := parseVector(pgtype.Text{String: "[1,0.5,-2]", Valid: true})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5, -2}, vec)

	vec, err = parseVector(pgtype.Text{})
	require.NoError(t, err)
	assert.Nil(t, vec)
}

func TestClaimLockID(t *testing.T) {
	assert.Equal(t, ClaimLockID("claim-1"), ClaimLockID("claim-1"))
	assert.NotEqual(t, ClaimLockID("claim-1"), ClaimLockID("claim-2"))
}

func TestMarshalNullable(t *testing.T) {
	raw, err := marshalNullable[domain.SignalProfile](nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = marshalNullable(&domain.SignalProfile{UncertaintyCount: 2, Score: 0.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uncertainty_count":2,"systematic_count":0,"failure_count":0,"advancement_count":0,"routine_count":0,"score":0.5}`, string(raw))
}

func TestApplyPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://user@localhost:5432/db")
	require.NoError(t, err)

	before := cfg.MinConns

	applyPoolOptions(cfg, PoolOptions{MaxConns: 7, MaxConnIdleTime: time.Minute})

	assert.Equal(t, int32(7), cfg.MaxConns)
	assert.Equal(t, before, cfg.MinConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "ok", SanitizeUTF8("ok"))
	assert.Equal(t, "ab", SanitizeUTF8("a\xffb"))
}
