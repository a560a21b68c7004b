// Package analytics records page views and aggregates them for the admin
// dashboard.
package analytics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"linkbio-backend/internal/store"
)

// PageView is one recorded visit.
type PageView struct {
	PagePath  string `json:"page_path"`
	VisitorID string `json:"visitor_id"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	Referrer  string `json:"referrer"`
	Country   string `json:"country"`
}

type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// VisitorID derives a stable anonymous id when the client did not supply one.
func VisitorID(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + userAgent))
	return hex.EncodeToString(sum[:16])
}

// Record inserts a page view and folds it into the per-visitor rollup. A
// visitor's country keeps its first known value; client info follows the
// latest user agent.
func (s *Service) Record(ctx context.Context, pv PageView) error {
	if pv.PagePath == "" {
		return fmt.Errorf("page path required")
	}
	if pv.VisitorID == "" {
		pv.VisitorID = VisitorID(pv.IPAddress, pv.UserAgent)
	}

	_, err := store.Exec(ctx, s.store.DB,
		`INSERT INTO analytics_page_views (page_path, visitor_id, ip_address, user_agent, referrer, country)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pv.PagePath, pv.VisitorID, emptyToNil(pv.IPAddress), emptyToNil(pv.UserAgent),
		emptyToNil(pv.Referrer), emptyToNil(pv.Country))
	if err != nil {
		return fmt.Errorf("insert page view: %w", err)
	}

	ua := ParseUserAgent(pv.UserAgent)

	_, err = store.QueryRow(ctx, s.store.DB,
		"SELECT visitor_id FROM analytics_visitors WHERE visitor_id = ?", pv.VisitorID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_, err = store.Exec(ctx, s.store.DB,
			`INSERT INTO analytics_visitors (visitor_id, country, browser, os, device_type)
			 VALUES (?, ?, ?, ?, ?)`,
			pv.VisitorID, emptyToNil(pv.Country), ua.Browser, ua.OS, ua.Device)
		if err != nil {
			return fmt.Errorf("insert visitor: %w", err)
		}
	case err != nil:
		return fmt.Errorf("look up visitor: %w", err)
	default:
		_, err = store.Exec(ctx, s.store.DB,
			`UPDATE analytics_visitors SET
			   last_visit = datetime('now'),
			   visit_count = visit_count + 1,
			   country = COALESCE(?, country),
			   browser = COALESCE(?, browser),
			   os = COALESCE(?, os),
			   device_type = COALESCE(?, device_type)
			 WHERE visitor_id = ?`,
			emptyToNil(pv.Country), ua.Browser, ua.OS, ua.Device, pv.VisitorID)
		if err != nil {
			return fmt.Errorf("update visitor: %w", err)
		}
	}
	return nil
}

// ClientInfo is what the user-agent string gives away.
type ClientInfo struct {
	Browser string
	OS      string
	Device  string
}

// ParseUserAgent picks browser, OS and device class out of a user-agent
// string. Order matters: Edge and Chrome both claim Safari.
func ParseUserAgent(userAgent string) ClientInfo {
	info := ClientInfo{Browser: "Unknown", OS: "Unknown", Device: "Desktop"}

	switch {
	case strings.Contains(userAgent, "Firefox/"):
		info.Browser = "Firefox"
	case strings.Contains(userAgent, "Edg/"):
		info.Browser = "Edge"
	case strings.Contains(userAgent, "Chrome/"):
		info.Browser = "Chrome"
	case strings.Contains(userAgent, "Safari/"):
		info.Browser = "Safari"
	case strings.Contains(userAgent, "MSIE"), strings.Contains(userAgent, "Trident/"):
		info.Browser = "Internet Explorer"
	}

	switch {
	case strings.Contains(userAgent, "Windows"):
		info.OS = "Windows"
	case strings.Contains(userAgent, "Mac OS X"):
		info.OS = "macOS"
	case strings.Contains(userAgent, "Android"):
		info.OS = "Android"
	case strings.Contains(userAgent, "iOS"), strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		info.OS = "iOS"
	case strings.Contains(userAgent, "Linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(userAgent, "iPad"), strings.Contains(userAgent, "Tablet"):
		info.Device = "Tablet"
	case strings.Contains(userAgent, "Mobile"), strings.Contains(userAgent, "Android"), strings.Contains(userAgent, "iPhone"):
		info.Device = "Mobile"
	}

	return info
}

// CountRow is one bucket of an aggregation.
type CountRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Overview is the admin dashboard aggregate.
type Overview struct {
	TotalPageViews int        `json:"totalPageViews"`
	UniqueVisitors int        `json:"uniqueVisitors"`
	PageViews      []CountRow `json:"pageViews"`
	ByCountry      []CountRow `json:"visitorsByCountry"`
	ByBrowser      []CountRow `json:"visitorsByBrowser"`
	ByOS           []CountRow `json:"visitorsByOS"`
	ByDevice       []CountRow `json:"visitorsByDevice"`
	RecentTraffic  []CountRow `json:"recentTraffic"`
}

// GetOverview aggregates stored analytics: totals, top pages, visitor
// breakdowns and the last seven days of traffic.
func (s *Service) GetOverview(ctx context.Context) (*Overview, error) {
	ov := &Overview{}
	ctxDB := s.store.DB

	row, err := store.QueryRow(ctx, ctxDB, "SELECT COUNT(*) AS count FROM analytics_page_views")
	if err != nil {
		return nil, fmt.Errorf("count page views: %w", err)
	}
	ov.TotalPageViews = store.AsInt(row["count"])

	row, err = store.QueryRow(ctx, ctxDB, "SELECT COUNT(*) AS count FROM analytics_visitors")
	if err != nil {
		return nil, fmt.Errorf("count visitors: %w", err)
	}
	ov.UniqueVisitors = store.AsInt(row["count"])

	queries := []struct {
		dst  *[]CountRow
		sql  string
		name string
	}{
		{&ov.PageViews,
			`SELECT page_path AS label, COUNT(*) AS count FROM analytics_page_views
			 GROUP BY page_path ORDER BY count DESC LIMIT 10`, "top pages"},
		{&ov.ByCountry,
			`SELECT country AS label, COUNT(*) AS count FROM analytics_visitors
			 WHERE country IS NOT NULL GROUP BY country ORDER BY count DESC LIMIT 10`, "countries"},
		{&ov.ByBrowser,
			`SELECT browser AS label, COUNT(*) AS count FROM analytics_visitors
			 WHERE browser IS NOT NULL GROUP BY browser ORDER BY count DESC`, "browsers"},
		{&ov.ByOS,
			`SELECT os AS label, COUNT(*) AS count FROM analytics_visitors
			 WHERE os IS NOT NULL GROUP BY os ORDER BY count DESC`, "operating systems"},
		{&ov.ByDevice,
			`SELECT device_type AS label, COUNT(*) AS count FROM analytics_visitors
			 WHERE device_type IS NOT NULL GROUP BY device_type ORDER BY count DESC`, "devices"},
		{&ov.RecentTraffic,
			`SELECT strftime('%Y-%m-%d', timestamp) AS label, COUNT(*) AS count
			 FROM analytics_page_views WHERE timestamp > datetime('now', '-7 days')
			 GROUP BY label ORDER BY label`, "recent traffic"},
	}
	for _, q := range queries {
		rows, err := store.QueryRows(ctx, ctxDB, q.sql)
		if err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", q.name, err)
		}
		buckets := make([]CountRow, 0, len(rows))
		for _, r := range rows {
			buckets = append(buckets, CountRow{
				Label: store.AsString(r["label"]),
				Count: store.AsInt(r["count"]),
			})
		}
		*q.dst = buckets
	}

	return ov, nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
