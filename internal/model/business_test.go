package model

import "testing"

// TestBusinessInfoSet tests the fill-once field semantics.
func TestBusinessInfoSet(t *testing.T) {
	t.Parallel()

	t.Run("first value wins", func(t *testing.T) {
		t.Parallel()

		info := NewBusinessInfo()
		if !info.Set(FieldTelephone, "(214) 324-8811", "https://example.com/", true) {
			t.Fatal("first Set should report success")
		}
		if info.Set(FieldTelephone, "(555) 000-0000", "https://example.com/contact", false) {
			t.Error("second Set on a filled slot should report false")
		}

		field, ok := info.Get(FieldTelephone)
		if !ok {
			t.Fatal("telephone should be set")
		}
		if field.Value != "(214) 324-8811" {
			t.Errorf("value = %q, want the first value kept verbatim", field.Value)
		}
		if field.Source != "https://example.com/" {
			t.Errorf("source = %q, want the first page", field.Source)
		}
		if !field.Priority {
			t.Error("priority flag of the first source should be kept")
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		t.Parallel()

		info := NewBusinessInfo()
		if info.Set(FieldName, "", "https://example.com/", false) {
			t.Error("empty value should not fill a slot")
		}
		if info.Set(FieldName, "   ", "https://example.com/", false) {
			t.Error("whitespace value should not fill a slot")
		}
		if _, ok := info.Get(FieldName); ok {
			t.Error("name should remain unset")
		}
	})

	t.Run("unknown names land in extra", func(t *testing.T) {
		t.Parallel()

		info := NewBusinessInfo()
		if !info.Set("slogan", "We fix pipes", "https://example.com/", false) {
			t.Fatal("extra field Set should report success")
		}
		if info.Set("slogan", "other", "https://example.com/about", false) {
			t.Error("extra fields are fill-once too")
		}

		field, ok := info.Get("slogan")
		if !ok || field.Value != "We fix pipes" {
			t.Errorf("extra field = %+v, ok=%v", field, ok)
		}
	})
}

// TestBusinessInfoFieldNames verifies report ordering: recognized
// vocabulary first, extras in fill order.
func TestBusinessInfoFieldNames(t *testing.T) {
	t.Parallel()

	info := NewBusinessInfo()
	info.Set("zeta", "1", "u", false)
	info.Set(FieldRating, "4.9/5", "u", false)
	info.Set("alpha", "2", "u", false)
	info.Set(FieldName, "Acme", "u", false)

	names := info.FieldNames()
	want := []string{FieldName, FieldRating, "zeta", "alpha"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

// TestBusinessInfoComplete tests the short-circuit completeness check.
func TestBusinessInfoComplete(t *testing.T) {
	t.Parallel()

	info := NewBusinessInfo()
	fill := map[string]string{
		FieldName:         "Acme Plumbing",
		FieldTelephone:    "(214) 324-8811",
		FieldAddress:      "123 Main St, Dallas, TX, 75201",
		FieldServices:     "Drain Cleaning, Water Heaters",
		FieldOpeningHours: "Mo-Fr: 08:00 - 17:00",
	}

	names := []string{FieldName, FieldTelephone, FieldAddress, FieldServices, FieldOpeningHours}
	for i, name := range names {
		if info.Complete() {
			t.Fatalf("complete after %d of %d core fields", i, len(names))
		}
		info.Set(name, fill[name], "https://example.com/", false)
	}

	if !info.Complete() {
		t.Error("all core fields set, expected Complete")
	}
}

// TestBusinessInfoMaps tests the flat view used by report writers.
func TestBusinessInfoMaps(t *testing.T) {
	t.Parallel()

	info := NewBusinessInfo()
	info.Set(FieldName, "Acme", "https://example.com/about", true)

	if got := info.Fields()[FieldName]; got != "Acme" {
		t.Errorf("Fields()[name] = %q, want Acme", got)
	}
	if got := info.Sources()[FieldName]; got != "https://example.com/about" {
		t.Errorf("Sources()[name] = %q", got)
	}
}

// TestScanReportAddFailure tests failure accumulation.
func TestScanReportAddFailure(t *testing.T) {
	t.Parallel()

	report := NewScanReport("https://example.com/")
	report.AddFailure("https://example.com/gone", "http", "status 404")

	if report.PagesFailed != 1 {
		t.Errorf("PagesFailed = %d, want 1", report.PagesFailed)
	}
	if len(report.Failures) != 1 || report.Failures[0].Kind != "http" {
		t.Errorf("failures = %+v", report.Failures)
	}
	if report.Business == nil {
		t.Error("new report should carry an empty business record")
	}
}
