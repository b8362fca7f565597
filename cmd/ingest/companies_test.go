package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stocklens/services/market"
)

func TestAddCompany(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, addCompany(ctx, db, " bbca.jk ", []string{"Bank", "Central", "Asia"}))
	require.Error(t, addCompany(ctx, db, "TLKM.JK", nil))

	companies, err := market.NewStore(db).ListCompanies(ctx)
	require.NoError(t, err)
	require.Equal(t, []market.Company{{Symbol: "BBCA.JK", Name: "Bank Central Asia"}}, companies)

	require.NoError(t, listCompanies(ctx, db))
}
