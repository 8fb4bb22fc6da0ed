package capture

import (
	"time"

	"iotower.com/console/users"
)

// MandatoryField is a configuration field a protocol requires on its
// endpoints. ValueType is the backend declaration, see ParseValueType.
type MandatoryField struct {
	Name          string `json:"name"`
	ValueType     string `json:"valueType"`
	Description   string `json:"description"`
	EnDescription string `json:"enDescription"`
}

// Protocol is a data ingestion protocol offered by the backend
type Protocol struct {
	ID              string           `json:"id"`
	Version         int              `json:"version"`
	ProtocolFamily  string           `json:"protocolFamily"`
	ProtocolType    string           `json:"protocolType"`
	ProtocolVersion string           `json:"protocolVersion"`
	Description     string           `json:"description"`
	EnDescription   string           `json:"enDescription"`
	MandatoryFields []MandatoryField `json:"mandatoryFields"`
	DefaultWideOpen bool             `json:"defaultWideOpen"`
}

// EndpointCreationBody creates a capture endpoint
type EndpointCreationBody struct {
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	Encrypted     bool                `json:"encrypted"`
	ProtocolID    string              `json:"protocolId" validate:"required"`
	ForceWideOpen bool                `json:"forceWideOpen"`
	CustomConfig  []users.CustomField `json:"customConfig" validate:"dive"`
}

// Endpoint is a capture endpoint with its ingestion counters
type Endpoint struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Ref          string              `json:"ref"`
	Owner        string              `json:"owner"`
	WideOpen     bool                `json:"wideOpen"`
	Encrypted    bool                `json:"encrypted"`
	CreationMs   int64               `json:"creationMs"`
	ProtocolID   string              `json:"protocolId"`
	CustomConfig []users.CustomField `json:"customConfig"`

	TotalFramesReceived          int64 `json:"totalFramesReceived"`
	TotalFramesAcceptedToPivot   int64 `json:"totalFramesAcceptedToPivot"`
	TotalInDriver                int64 `json:"totalInDriver"`
	TotalFramesAcceptedToProcess int64 `json:"totalFramesAcceptedToProcess"`
	TotalBadOwnerRefused         int64 `json:"totalBadOwnerRefused"`
	TotalBadPayloadFormat        int64 `json:"totalBadPayloadFormat"`
	TotalBadDeviceRight          int64 `json:"totalBadDeviceRight"`
	TotalQueuedToProcess         int64 `json:"totalQueuedToProcess"`
}

// Created returns the creation time of the endpoint
func (e Endpoint) Created() time.Time {
	return time.UnixMilli(e.CreationMs)
}

// Refused sums the frames refused for any reason
func (e Endpoint) Refused() int64 {
	return e.TotalBadOwnerRefused + e.TotalBadPayloadFormat + e.TotalBadDeviceRight
}
