package dto

// SyncStatusResponse is the body of GET /v1/local/sync/status/{operation_id}.
type SyncStatusResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// TriggerSyncResponse is the body of POST /v1/local/sync/trigger.
type TriggerSyncResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
