package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/testutil"
)

func TestExportService_CGT(t *testing.T) {
	ctx := context.Background()
	key := model.AccountKey{ClientName: testutil.DefaultClientName, AccountType: model.AccountFundAndShare}

	setup := func(t *testing.T) *testutil.Services {
		t.Helper()
		db := testutil.SetupTestDB(t)
		testutil.NewTransaction().
			WithAccount(model.AccountFundAndShare).
			WithTradeDate(testutil.Date("2024-03-01")).
			WithReference("B1").
			WithType(model.TypeBuy).
			WithTicker("VWRL").
			WithQuantity("10.5").
			WithUnitCost("9512.3456").
			WithValue("-998.80").
			Build(t, db)
		testutil.NewTransaction().
			WithAccount(model.AccountFundAndShare).
			WithTradeDate(testutil.Date("2024-04-10")).
			WithReference("S1").
			WithType(model.TypeSell).
			WithTicker("VWRL").
			WithQuantity("4").
			WithUnitCost("10000").
			WithValue("400").
			Build(t, db)
		testutil.NewTransaction().WithAccount(model.AccountFundAndShare).Build(t, db)
		return testutil.NewTestServices(t, db)
	}

	tests := []struct {
		name    string
		taxYear *int
		tsv     bool
		want    string
	}{
		{
			name: "all time csv",
			want: "B/S,Date,Company,Shares,Price,Charges,Tax\n" +
				"B,01/03/2024,VWRL,11,95.123,0.0,0.0\n" +
				"S,10/04/2024,VWRL,4,100.000,0.0,0.0\n",
		},
		{
			name:    "one tax year",
			taxYear: func() *int { y := 2024; return &y }(),
			want: "B/S,Date,Company,Shares,Price,Charges,Tax\n" +
				"S,10/04/2024,VWRL,4,100.000,0.0,0.0\n",
		},
		{
			name: "tab separated",
			tsv:  true,
			want: "B/S\tDate\tCompany\tShares\tPrice\tCharges\tTax\n" +
				"B\t01/03/2024\tVWRL\t11\t95.123\t0.0\t0.0\n" +
				"S\t10/04/2024\tVWRL\t4\t100.000\t0.0\t0.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs := setup(t)
			var buf bytes.Buffer

			if err := svcs.Export.CGT(ctx, &buf, key, tt.taxYear, tt.tsv); err != nil {
				t.Fatalf("CGT() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("CGT() output mismatch\ngot:\n%s\nwant:\n%s", buf.String(), tt.want)
			}
		})
	}
}
