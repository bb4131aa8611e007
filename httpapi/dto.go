package httpapi

// errorResponse is the JSON envelope for every non-2xx response,
// matching the teacher's server.go {"message": "..."} shape.
type errorResponse struct {
	Message string `json:"message"`
}

// paginationRequest is the shared shape embedded in every paginated
// POST body; nil Limit means unbounded and nil Offset means 0, per
// SPEC_FULL.md §6.
type paginationRequest struct {
	Limit   *uint64 `json:"limit"`
	Offset  *uint64 `json:"offset"`
	Reverse bool    `json:"reverse"`
}

type sendSmsRequest struct {
	To      string `json:"to" binding:"required"`
	Content string `json:"content" binding:"required"`
	Flash   bool   `json:"flash"`
}

type sendSmsResponse struct {
	MessageID    int64 `json:"message_id"`
	ReferenceID  int   `json:"reference_id"`
	SegmentIndex int   `json:"segment_index"`
	Segments     int   `json:"segments"`
}

type dbMessagesRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	paginationRequest
}

type dbDeliveryReportsRequest struct {
	MessageID int64 `json:"message_id" binding:"required"`
	paginationRequest
}

type dbLatestNumbersRequest struct {
	paginationRequest
}

type messageDTO struct {
	MessageID        int64  `json:"message_id"`
	PhoneNumber      string `json:"phone_number"`
	Content          string `json:"content"`
	MessageReference *int   `json:"message_reference"`
	IsOutgoing       bool   `json:"is_outgoing"`
	Status           *int   `json:"status"`
	CreatedAt        int64  `json:"created_at"`
	CompletedAt      *int64 `json:"completed_at"`
	DecryptFailed    bool   `json:"decrypt_failed"`
}

type deliveryReportDTO struct {
	ReportID  int64 `json:"report_id"`
	MessageID int64 `json:"message_id"`
	Status    int   `json:"status"`
	IsFinal   bool  `json:"is_final"`
	CreatedAt int64 `json:"created_at"`
}

type numberSummaryDTO struct {
	PhoneNumber  string  `json:"phone_number"`
	FriendlyName *string `json:"friendly_name"`
}

type setFriendlyNameRequest struct {
	PhoneNumber  string  `json:"phone_number" binding:"required"`
	FriendlyName *string `json:"friendly_name"`
}

type friendlyNameResponse struct {
	PhoneNumber  string `json:"phone_number"`
	FriendlyName string `json:"friendly_name"`
}

type networkStatusResponse struct {
	Registered bool   `json:"registered"`
	Roaming    bool   `json:"roaming"`
	Raw        string `json:"raw"`
}

type signalStrengthResponse struct {
	RSSI int `json:"rssi"`
	BER  int `json:"ber"`
}

type networkOperatorResponse struct {
	Operator string `json:"operator"`
}

type serviceProviderResponse struct {
	ServiceProvider string `json:"service_provider"`
}

type batteryLevelResponse struct {
	Charging   bool `json:"charging"`
	Percentage int  `json:"percentage"`
}

type deviceInfoResponse struct {
	Version          string `json:"version"`
	Manufacturer     string `json:"manufacturer"`
	Model            string `json:"model"`
	FirmwareRevision string `json:"firmware_revision"`
	SerialNumber     string `json:"serial_number"`
}

type gnssStatusResponse struct {
	Fixed      bool `json:"fixed"`
	Satellites int  `json:"satellites"`
}

type gnssLocationResponse struct {
	Fixed          bool    `json:"fixed"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AltitudeMeters float64 `json:"altitude_meters"`
	SpeedKmh       float64 `json:"speed_kmh"`
	CourseDegrees  float64 `json:"course_degrees"`
	Timestamp      int64   `json:"timestamp"`
}

type setLogLevelRequest struct {
	Level string `json:"level" binding:"required"`
}

type healthzResponse struct {
	Online bool `json:"online"`
}
