package domain

import (
	"net/url"
	"strconv"
	"strings"
)

type Device struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Heartbeat string `json:"heartbeat,omitempty"`
	// HeartbeatDisplay is Heartbeat as the devices table shows it.
	HeartbeatDisplay string `json:"heartbeatDisplay"`
	LocationName     string `json:"locationName,omitempty"`
	CampaignName     string `json:"campaignName,omitempty"`
}

// FormatHeartbeat renders the backend's local date-time for tables.
func FormatHeartbeat(ldt string) string {
	if ldt == "" {
		return "-"
	}
	return strings.Replace(ldt, "T", " ", 1)
}

type DevicePage struct {
	Content    []Device `json:"content"`
	TotalPages int      `json:"totalPages"`
}

type FilterOptions struct {
	LocationNames    []string `json:"locationNames"`
	CampaignNames    []string `json:"campaignNames"`
	CampaignStatuses []string `json:"campaignStatuses"`
}

func (f *FilterOptions) Normalize() {
	if f.LocationNames == nil {
		f.LocationNames = []string{}
	}
	if f.CampaignNames == nil {
		f.CampaignNames = []string{}
	}
	if f.CampaignStatuses == nil {
		f.CampaignStatuses = []string{}
	}
}

var PageSizes = []int{10, 20, 50}

type DeviceQuery struct {
	LocationNames    []string `json:"locationNames"`
	CampaignNames    []string `json:"campaignNames"`
	CampaignStatuses []string `json:"campaignStatuses"`
	SearchTerm       string   `json:"searchTerm"`
	ActiveOnly       bool     `json:"activeOnly"`
	Page             int      `json:"page"`
	Size             int      `json:"size"`
}

// ParseDeviceQuery reads the devices screen state from a URL query.
func ParseDeviceQuery(q url.Values, defaultSize int) DeviceQuery {
	query := DeviceQuery{
		LocationNames:    uniqueNonEmpty(q["locationNames"]),
		CampaignNames:    uniqueNonEmpty(q["campaignNames"]),
		CampaignStatuses: uniqueNonEmpty(q["campaignStatuses"]),
		SearchTerm:       q.Get("searchTerms"),
		Size:             defaultSize,
	}

	if active, err := strconv.ParseBool(q.Get("active")); err == nil {
		query.ActiveOnly = active
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page >= 0 {
		query.Page = page
	}
	if size, err := strconv.Atoi(q.Get("size")); err == nil && isPageSize(size) {
		query.Size = size
	}
	if !isPageSize(query.Size) {
		query.Size = PageSizes[0]
	}

	return query
}

// Values builds the backend query: one key per selected value, never comma-joined.
func (q DeviceQuery) Values() url.Values {
	v := url.Values{}
	for _, name := range q.LocationNames {
		v.Add("locationNames", name)
	}
	for _, name := range q.CampaignNames {
		v.Add("campaignNames", name)
	}
	for _, status := range q.CampaignStatuses {
		v.Add("campaignStatuses", status)
	}
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		v.Add("searchTerms", term)
	}
	if q.ActiveOnly {
		v.Add("active", "true")
	}
	v.Add("page", strconv.Itoa(q.Page))
	v.Add("size", strconv.Itoa(q.Size))
	return v
}

// WithFilters applies a non-paging change; the page index goes back to 0.
func (q DeviceQuery) WithFilters(change func(*DeviceQuery)) DeviceQuery {
	next := q
	change(&next)
	next.Page = 0
	return next
}

// Cleared is the "clear all" state: filters and search dropped, size kept.
func (q DeviceQuery) Cleared() DeviceQuery {
	return DeviceQuery{Size: q.Size}
}

func isPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
