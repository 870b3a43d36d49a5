package models

import (
	"time"
)

const (
	DEAD_LETTER_REASON_DECODE       = "decode_error"
	DEAD_LETTER_REASON_UNKNOWN_USER = "unknown_user"
	DEAD_LETTER_REASON_EXHAUSTED    = "retries_exhausted"
)

// DeadLetterMessage is the terminal holding record for a queue message that
// could not be processed. Rows are written by the consumer and only ever read
// by operators; nothing in the pipeline consumes them again.
type DeadLetterMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Queue     string    `gorm:"type:varchar(100);index" json:"queue"`
	MessageID string    `gorm:"type:varchar(64);index" json:"message_id"`
	Body      string    `gorm:"type:text" json:"body"`
	Reason    string    `gorm:"type:varchar(50);index" json:"reason"`
	Error     string    `gorm:"type:text" json:"error"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
