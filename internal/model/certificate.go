package model

// CertificateRecord binds a user to their certificate's display data and
// chosen template. Exactly one record exists per user id.
//
// StudentName, RegistrationNumber and the event fields are a snapshot of
// the user's profile taken when the record was materialized, a one-time
// copy-on-create join, not a live one. Later profile edits do not propagate
// here; the only mutable field after creation is TemplateID.
type CertificateRecord struct {
	ID                 string `json:"id"`
	UserID             int    `json:"userId"`
	TemplateID         string `json:"templateId"`
	StudentName        string `json:"studentName"`
	RegistrationNumber string `json:"registrationNumber"`
	CourseName         string `json:"courseName"`
	EventName          string `json:"eventName"`
	EventType          string `json:"eventType"`
	IssueDate          string `json:"issueDate"`
}
