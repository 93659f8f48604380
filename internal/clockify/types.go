package clockify

// TimeEntryRequest is the body for creating a time entry.
type TimeEntryRequest struct {
	ProjectID   string `json:"projectId"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

// TimeEntryResponse is the relevant part of a created time entry.
type TimeEntryResponse struct {
	ID string `json:"id"`
}

// Project is a Clockify project in the configured workspace.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}
