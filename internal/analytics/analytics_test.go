package analytics_test

import (
	"context"
	"testing"

	"linkbio-backend/internal/analytics"
	"linkbio-backend/internal/config"
	"linkbio-backend/internal/store"
)

func testService(t *testing.T) *analytics.Service {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Path: t.TempDir(), Name: "test"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return analytics.NewService(s)
}

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		want      analytics.ClientInfo
	}{
		{
			"chrome on windows",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			analytics.ClientInfo{Browser: "Chrome", OS: "Windows", Device: "Desktop"},
		},
		{
			"edge claims chrome and safari",
			"Mozilla/5.0 (Windows NT 10.0) AppleWebKit/537.36 Chrome/120.0 Safari/537.36 Edg/120.0",
			analytics.ClientInfo{Browser: "Edge", OS: "Windows", Device: "Desktop"},
		},
		{
			"safari on iphone",
			"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
			analytics.ClientInfo{Browser: "Safari", OS: "macOS", Device: "Mobile"},
		},
		{
			"firefox on linux",
			"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			analytics.ClientInfo{Browser: "Firefox", OS: "Linux", Device: "Desktop"},
		},
		{
			"chrome on android",
			"Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 Chrome/120.0 Mobile Safari/537.36",
			analytics.ClientInfo{Browser: "Chrome", OS: "Android", Device: "Mobile"},
		},
		{
			"ipad",
			"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Safari/604.1",
			analytics.ClientInfo{Browser: "Safari", OS: "macOS", Device: "Tablet"},
		},
		{
			"empty",
			"",
			analytics.ClientInfo{Browser: "Unknown", OS: "Unknown", Device: "Desktop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analytics.ParseUserAgent(tt.userAgent)
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestVisitorIDStable(t *testing.T) {
	a := analytics.VisitorID("1.2.3.4", "agent")
	b := analytics.VisitorID("1.2.3.4", "agent")
	c := analytics.VisitorID("1.2.3.5", "agent")
	if a != b {
		t.Error("same inputs should give the same id")
	}
	if a == c {
		t.Error("different inputs should give different ids")
	}
}

func TestRecordAndOverview(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)

	chromeUA := "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36"
	views := []analytics.PageView{
		{PagePath: "/", VisitorID: "v1", UserAgent: chromeUA, Country: "DE"},
		{PagePath: "/", VisitorID: "v1", UserAgent: chromeUA},
		{PagePath: "/projects", VisitorID: "v1", UserAgent: chromeUA},
		{PagePath: "/", VisitorID: "v2", UserAgent: "Mozilla/5.0 (iPhone) Mobile Safari/604.1"},
	}
	for i, pv := range views {
		if err := svc.Record(ctx, pv); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	ov, err := svc.GetOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.TotalPageViews != 4 {
		t.Errorf("total page views = %d, want 4", ov.TotalPageViews)
	}
	if ov.UniqueVisitors != 2 {
		t.Errorf("unique visitors = %d, want 2", ov.UniqueVisitors)
	}
	if len(ov.PageViews) == 0 || ov.PageViews[0].Label != "/" || ov.PageViews[0].Count != 3 {
		t.Errorf("top pages = %+v", ov.PageViews)
	}
	if len(ov.ByBrowser) != 2 {
		t.Errorf("browsers = %+v", ov.ByBrowser)
	}
	if len(ov.RecentTraffic) != 1 || ov.RecentTraffic[0].Count != 4 {
		t.Errorf("recent traffic = %+v", ov.RecentTraffic)
	}
}

func TestRecordKeepsFirstCountry(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)

	if err := svc.Record(ctx, analytics.PageView{PagePath: "/", VisitorID: "v1", Country: "DE"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	// A later view without country must not blank the stored one.
	if err := svc.Record(ctx, analytics.PageView{PagePath: "/", VisitorID: "v1"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	ov, err := svc.GetOverview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.ByCountry) != 1 || ov.ByCountry[0].Label != "DE" {
		t.Errorf("countries = %+v", ov.ByCountry)
	}
}

func TestRecordRequiresPagePath(t *testing.T) {
	ctx := context.Background()
	svc := testService(t)
	if err := svc.Record(ctx, analytics.PageView{VisitorID: "v1"}); err == nil {
		t.Error("expected error for missing page path")
	}
}
