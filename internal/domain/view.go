package domain

// View models returned by the screen endpoints.

type CampaignRow struct {
	Campaign
	Actions []CampaignAction `json:"actions"`
}

func NewCampaignRow(c Campaign) CampaignRow {
	c.Normalize()
	return CampaignRow{Campaign: c, Actions: c.Status.Actions()}
}

type CampaignsView struct {
	Search string        `json:"search"`
	Rows   []CampaignRow `json:"rows"`
}

type CampaignDetailView struct {
	Campaign CampaignRow `json:"campaign"`
}

type DevicesView struct {
	Query      DeviceQuery   `json:"query"`
	Devices    []Device      `json:"devices"`
	TotalPages int           `json:"totalPages"`
	HasPrev    bool          `json:"hasPrev"`
	HasNext    bool          `json:"hasNext"`
	PageSizes  []int         `json:"pageSizes"`
	Filters    FilterOptions `json:"filters"`
}

type LocationsView struct {
	Terms     []string   `json:"terms"`
	Locations []Location `json:"locations"`
}

type DashboardView struct {
	NumberOfActiveDevices int           `json:"numberOfActiveDevices"`
	NumberOfLocations     int           `json:"numberOfLocations"`
	StoragePercent        float64       `json:"storagePercent"`
	StorageTier           UsageTier     `json:"storageTier"`
	Campaigns             []CampaignRef `json:"campaigns"`
}
