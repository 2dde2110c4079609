package domain

// CalendarSyncMessage is published after a technician accepts an assignment
type CalendarSyncMessage struct {
	OrganizationID  string `json:"organization_id"`
	JobTechnicianID string `json:"job_technician_id"`
}

// CalendarSyncDelivery pairs a decoded message with its RabbitMQ delivery tag
type CalendarSyncDelivery struct {
	CalendarSyncMessage
	DeliveryTag uint64 `json:"-"`
}
