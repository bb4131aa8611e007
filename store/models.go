package store

// Message is a single SMS, incoming or outgoing. MessageContent holds
// the XChaCha20-Poly1305-sealed ciphertext, not plaintext — see
// messageCipher. CreatedAt/CompletedAt are unix seconds, matching the
// original schema's unixepoch() columns rather than Go's time.Time, so
// pagination can order on a plain integer column.
type Message struct {
	ID               int64  `gorm:"column:message_id;primaryKey;autoIncrement"`
	PhoneNumber      string `gorm:"column:phone_number;index;not null"`
	MessageContent   string `gorm:"column:message_content;not null"`
	MessageReference *int   `gorm:"column:message_reference;index"`
	SegmentIndex     int    `gorm:"column:segment_index;not null;default:0"`
	IsOutgoing       bool   `gorm:"column:is_outgoing;index;not null"`
	Status           *int   `gorm:"column:status;index"`
	CreatedAt        int64  `gorm:"column:created_at;autoCreateTime;index"`
	CompletedAt      *int64 `gorm:"column:completed_at;index"`

	DeliveryReports []DeliveryReport `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	SendFailures    []SendFailure    `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string { return "messages" }

// DeliveryReport is one status-report TPDU received for an outgoing
// message. Appended-only; never updated.
type DeliveryReport struct {
	ID        int64 `gorm:"column:report_id;primaryKey;autoIncrement"`
	MessageID int64 `gorm:"column:message_id;index;not null"`
	Status    int   `gorm:"column:status;not null"`
	IsFinal   bool  `gorm:"column:is_final;not null"`
	CreatedAt int64 `gorm:"column:created_at;autoCreateTime"`
}

func (DeliveryReport) TableName() string { return "delivery_reports" }

// SendFailure records a modem-reported error for an outgoing message.
// At most one row per message.
type SendFailure struct {
	ID           int64  `gorm:"column:failure_id;primaryKey;autoIncrement"`
	MessageID    int64  `gorm:"column:message_id;index;not null"`
	ErrorMessage string `gorm:"column:error_message;not null"`
	CreatedAt    int64  `gorm:"column:created_at;autoCreateTime"`
}

func (SendFailure) TableName() string { return "send_failures" }

// FriendlyName is an administrative label for a phone number.
type FriendlyName struct {
	PhoneNumber  string `gorm:"column:phone_number;primaryKey"`
	FriendlyName string `gorm:"column:friendly_name;index;not null"`
}

func (FriendlyName) TableName() string { return "friendly_names" }
