package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"fincoach/internal/testutil"
)

func TestCreateTaxRecord_DerivesTaxableIncome(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)

	record, err := c.CreateTaxRecord(context.Background(), user.ID, TaxRecordInput{
		FinancialYear:   "2024-25",
		GrossIncome:     decimal.NewFromInt(450000),
		TotalDeductions: decimal.NewFromInt(150000),
	})
	testutil.AssertNoError(t, err)

	if !record.TaxableIncome.Equal(decimal.NewFromInt(300000)) {
		t.Errorf("expected taxable income 300000, got %s", record.TaxableIncome)
	}
	if record.FilingStatus != "not_filed" {
		t.Errorf("expected not_filed, got %q", record.FilingStatus)
	}
}

func TestCreateTaxRecord_FloorsNegativeTaxable(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)

	record, err := c.CreateTaxRecord(context.Background(), user.ID, TaxRecordInput{
		FinancialYear:   "2024-25",
		GrossIncome:     decimal.NewFromInt(100000),
		TotalDeductions: decimal.NewFromInt(150000),
	})
	testutil.AssertNoError(t, err)

	if !record.TaxableIncome.IsZero() {
		t.Errorf("deductions above income should floor at zero, got %s", record.TaxableIncome)
	}
}

func TestCreateTaxRecord_RequiresYear(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)

	_, err := c.CreateTaxRecord(context.Background(), user.ID, TaxRecordInput{})
	testutil.AssertAppError(t, err, "INVALID_REQUEST")
}

func TestListTaxRecords_RecentYearFirst(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	ctx := context.Background()

	for _, year := range []string{"2022-23", "2024-25", "2023-24"} {
		_, err := c.CreateTaxRecord(ctx, user.ID, TaxRecordInput{FinancialYear: year})
		testutil.AssertNoError(t, err)
	}

	records, err := c.ListTaxRecords(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	want := []string{"2024-25", "2023-24", "2022-23"}
	for i, w := range want {
		if records[i].FinancialYear != w {
			t.Errorf("position %d: got %s, want %s", i, records[i].FinancialYear, w)
		}
	}
}

func TestTaxRecordByYear(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	ctx := context.Background()

	_, err := c.CreateTaxRecord(ctx, user.ID, TaxRecordInput{FinancialYear: "2024-25"})
	testutil.AssertNoError(t, err)

	record, err := c.TaxRecordByYear(ctx, user.ID, "2024-25")
	testutil.AssertNoError(t, err)
	if record.FinancialYear != "2024-25" {
		t.Errorf("unexpected record: %+v", record)
	}

	_, err = c.TaxRecordByYear(ctx, user.ID, "2019-20")
	testutil.AssertAppError(t, err, "TAX_RECORD_NOT_FOUND")
}

func TestUpdateTaxRecord_Filing(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	ctx := context.Background()

	record, err := c.CreateTaxRecord(ctx, user.ID, TaxRecordInput{FinancialYear: "2024-25"})
	testutil.AssertNoError(t, err)

	filed := "filed"
	filedOn := testutil.Today()
	ack := "ACK-12345"
	updated, err := c.UpdateTaxRecord(ctx, user.ID, record.ID, TaxRecordUpdate{
		FilingStatus:          &filed,
		FilingDate:            &filedOn,
		AcknowledgementNumber: &ack,
	})
	testutil.AssertNoError(t, err)
	if updated.FilingStatus != "filed" || updated.AcknowledgementNumber != ack {
		t.Errorf("filing fields not saved: %+v", updated)
	}
}
