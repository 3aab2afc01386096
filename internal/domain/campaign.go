package domain

import "strings"

type CampaignStatus string

const (
	CampaignStatusPrepared         CampaignStatus = "PREPARED"
	CampaignStatusReady            CampaignStatus = "READY"
	CampaignStatusRunning          CampaignStatus = "RUNNING"
	CampaignStatusPartiallyRunning CampaignStatus = "PARTIALLY_RUNNING"
	CampaignStatusRetired          CampaignStatus = "RETIRED"
	CampaignStatusUploadError      CampaignStatus = "UPLOAD_ERROR"
	CampaignStatusDownloadError    CampaignStatus = "DOWNLOAD_ERROR"
	CampaignStatusDeploying        CampaignStatus = "DEPLOYING"
)

var CampaignStatuses = []CampaignStatus{
	CampaignStatusPrepared,
	CampaignStatusReady,
	CampaignStatusRunning,
	CampaignStatusPartiallyRunning,
	CampaignStatusRetired,
	CampaignStatusUploadError,
	CampaignStatusDownloadError,
	CampaignStatusDeploying,
}

// Normalize upper-cases and trims the raw status so comparisons are case-insensitive.
func (s CampaignStatus) Normalize() CampaignStatus {
	return CampaignStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

func (s CampaignStatus) IsKnown() bool {
	n := s.Normalize()
	for _, known := range CampaignStatuses {
		if n == known {
			return true
		}
	}
	return false
}

func (s CampaignStatus) CanDeploy() bool {
	switch s.Normalize() {
	case CampaignStatusPrepared, CampaignStatusRetired, CampaignStatusUploadError:
		return true
	default:
		return false
	}
}

func (s CampaignStatus) CanPlay() bool {
	return s.Normalize() == CampaignStatusReady
}

func (s CampaignStatus) CanStop() bool {
	switch s.Normalize() {
	case CampaignStatusRunning, CampaignStatusPartiallyRunning:
		return true
	default:
		return false
	}
}

// CanDelete uses the deny-list rule: anything on screens or mid-deploy is kept.
func (s CampaignStatus) CanDelete() bool {
	switch s.Normalize() {
	case CampaignStatusRunning, CampaignStatusPartiallyRunning, CampaignStatusDeploying:
		return false
	default:
		return true
	}
}

type CampaignAction string

const (
	ActionDeploy CampaignAction = "deploy"
	ActionPlay   CampaignAction = "play"
	ActionStop   CampaignAction = "stop"
	ActionDelete CampaignAction = "delete"
)

// CampaignActions is the display order used on list rows.
var CampaignActions = []CampaignAction{ActionDelete, ActionDeploy, ActionPlay, ActionStop}

func ParseCampaignAction(raw string) (CampaignAction, bool) {
	switch a := CampaignAction(strings.ToLower(strings.TrimSpace(raw))); a {
	case ActionDeploy, ActionPlay, ActionStop, ActionDelete:
		return a, true
	default:
		return "", false
	}
}

// IsStatusAction reports whether the action is sent as POST .../{action}.
func (a CampaignAction) IsStatusAction() bool {
	return a == ActionDeploy || a == ActionPlay || a == ActionStop
}

func (s CampaignStatus) Allows(action CampaignAction) bool {
	switch action {
	case ActionDeploy:
		return s.CanDeploy()
	case ActionPlay:
		return s.CanPlay()
	case ActionStop:
		return s.CanStop()
	case ActionDelete:
		return s.CanDelete()
	default:
		return false
	}
}

func (s CampaignStatus) Actions() []CampaignAction {
	actions := make([]CampaignAction, 0, len(CampaignActions))
	for _, a := range CampaignActions {
		if s.Allows(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

type Campaign struct {
	ID              ID             `json:"campaignId"`
	Name            string         `json:"name"`
	Status          CampaignStatus `json:"campaignStatus"`
	IsDefault       bool           `json:"isDefault"`
	ImageDuration   *int           `json:"imageDuration,omitempty"`
	NumberOfDevices int            `json:"numberOfDevices"`
	MediaItems      []MediaItem    `json:"mediaItems"`
	Devices         []Device       `json:"devices"`
}

// Normalize replaces null collections with empty ones.
func (c *Campaign) Normalize() {
	if c.MediaItems == nil {
		c.MediaItems = []MediaItem{}
	}
	if c.Devices == nil {
		c.Devices = []Device{}
	}
}

func (c *Campaign) DeviceIDs() []ID {
	ids := make([]ID, 0, len(c.Devices))
	for _, d := range c.Devices {
		ids = append(ids, d.ID)
	}
	return ids
}

// MatchesSearch is the campaigns screen filter: a case-insensitive substring
// of either the name or the status.
func (c *Campaign) MatchesSearch(term string) bool {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(string(c.Status)), q)
}

type CampaignRef struct {
	ID   ID     `json:"campaignId"`
	Name string `json:"campaignName"`
}

type CreatedCampaign struct {
	ID ID `json:"campaignId"`
}

type RenameCampaignRequest struct {
	Name string `json:"name" validate:"max=255"`
}

type AssignDevicesRequest struct {
	DeviceIDs []ID `json:"deviceIds" validate:"required"`
	Prepared  bool `json:"prepared"`
}
