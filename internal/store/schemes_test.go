package store

import (
	"context"
	"testing"

	"fincoach/internal/testutil"
)

func TestListSchemes_ActiveOnlyByDefault(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	active := testutil.CreateTestScheme(t, c.db)
	inactive := testutil.CreateTestScheme(t, c.db)
	if err := c.db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate scheme: %v", err)
	}

	schemes, err := c.ListSchemes(ctx, SchemeFilter{})
	testutil.AssertNoError(t, err)

	found := map[string]bool{}
	for _, s := range schemes {
		found[s.ID] = true
	}
	if !found[active.ID] {
		t.Error("active scheme missing from listing")
	}
	if found[inactive.ID] {
		t.Error("inactive scheme should be hidden by default")
	}

	all, err := c.ListSchemes(ctx, SchemeFilter{IncludeInactive: true})
	testutil.AssertNoError(t, err)
	found = map[string]bool{}
	for _, s := range all {
		found[s.ID] = true
	}
	if !found[inactive.ID] {
		t.Error("IncludeInactive should surface inactive schemes")
	}
}

func TestListSchemes_SortedByName(t *testing.T) {
	c := newTestClient(t)

	schemes, err := c.ListSchemes(context.Background(), SchemeFilter{})
	testutil.AssertNoError(t, err)
	for i := 1; i < len(schemes); i++ {
		if schemes[i-1].SchemeName > schemes[i].SchemeName {
			t.Errorf("schemes out of order: %q before %q", schemes[i-1].SchemeName, schemes[i].SchemeName)
		}
	}
}

func TestSchemeByID_NotFound(t *testing.T) {
	c := newTestClient(t)

	_, err := c.SchemeByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	testutil.AssertAppError(t, err, "SCHEME_NOT_FOUND")
}

func TestCreateSchemeApplication(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	scheme := testutil.CreateTestScheme(t, c.db)
	ctx := context.Background()

	app, err := c.CreateSchemeApplication(ctx, user.ID, SchemeApplicationInput{
		SchemeID:        scheme.ID,
		ApplicationDate: testutil.Today(),
	})
	testutil.AssertNoError(t, err)
	if app.ApplicationStatus != "submitted" {
		t.Errorf("new applications start submitted, got %q", app.ApplicationStatus)
	}
	if app.Scheme.ID != scheme.ID {
		t.Error("application should carry its scheme")
	}

	apps, err := c.ListSchemeApplications(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	if apps[0].Scheme.SchemeName != scheme.SchemeName {
		t.Error("listing should preload the scheme record")
	}
}

func TestCreateSchemeApplication_InactiveScheme(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	scheme := testutil.CreateTestScheme(t, c.db)
	if err := c.db.Model(scheme).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate scheme: %v", err)
	}

	_, err := c.CreateSchemeApplication(context.Background(), user.ID, SchemeApplicationInput{
		SchemeID:        scheme.ID,
		ApplicationDate: testutil.Today(),
	})
	testutil.AssertAppError(t, err, "INVALID_REQUEST")
}

func TestApplicationsBySchemeID(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	schemeA := testutil.CreateTestScheme(t, c.db)
	schemeB := testutil.CreateTestScheme(t, c.db)
	ctx := context.Background()

	_, err := c.CreateSchemeApplication(ctx, user.ID, SchemeApplicationInput{SchemeID: schemeA.ID, ApplicationDate: testutil.Today()})
	testutil.AssertNoError(t, err)
	_, err = c.CreateSchemeApplication(ctx, user.ID, SchemeApplicationInput{SchemeID: schemeB.ID, ApplicationDate: testutil.Today()})
	testutil.AssertNoError(t, err)

	apps, err := c.ApplicationsBySchemeID(ctx, user.ID, schemeA.ID)
	testutil.AssertNoError(t, err)
	if len(apps) != 1 || apps[0].SchemeID != schemeA.ID {
		t.Errorf("expected only scheme A applications, got %+v", apps)
	}
}

func TestUpdateSchemeApplication_Status(t *testing.T) {
	c := newTestClient(t)
	user := testutil.CreateTestUser(t, c.db)
	scheme := testutil.CreateTestScheme(t, c.db)
	ctx := context.Background()

	app, err := c.CreateSchemeApplication(ctx, user.ID, SchemeApplicationInput{SchemeID: scheme.ID, ApplicationDate: testutil.Today()})
	testutil.AssertNoError(t, err)

	approved := "approved"
	approvedOn := testutil.Today()
	updated, err := c.UpdateSchemeApplication(ctx, user.ID, app.ID, SchemeApplicationUpdate{
		ApplicationStatus: &approved,
		ApprovalDate:      &approvedOn,
	})
	testutil.AssertNoError(t, err)
	if updated.ApplicationStatus != "approved" {
		t.Errorf("expected approved, got %q", updated.ApplicationStatus)
	}
	if updated.ApprovalDate == nil || *updated.ApprovalDate != approvedOn {
		t.Error("approval date not saved")
	}
}
