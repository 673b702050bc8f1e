package models

import "time"

// BookingRun tracks one end-to-end workflow execution. Live state is kept in
// the Redis run store while the run progresses; terminal runs are archived to
// Mongo for history.
type BookingRun struct {
	RunID         string         `bson:"runId" json:"runId"`
	Status        WorkflowState  `bson:"status" json:"status"`
	RawText       string         `bson:"rawText" json:"rawText"`
	DateOverride  string         `bson:"dateOverride,omitempty" json:"dateOverride,omitempty"` // explicit date, wins over parsed date
	Execute       bool           `bson:"execute" json:"execute"`                               // false = query-only run
	DeviceToken   string         `bson:"deviceToken,omitempty" json:"deviceToken,omitempty"`   // FCM token for the outcome push
	Request       BookingRequest `bson:"request" json:"request"`                               // filled once parsing completes
	Result        *BookingResult `bson:"result,omitempty" json:"result,omitempty"`
	ScreenshotURL string         `bson:"screenshotUrl,omitempty" json:"screenshotUrl,omitempty"`
	VisitorMode   bool           `bson:"visitorMode,omitempty" json:"visitorMode,omitempty"`
	FailureReason string         `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// RunTaskPayload is the queue message that hands a run to the worker.
type RunTaskPayload struct {
	RunID string `json:"runId"`
}
