package store

import "time"

// Session tracks one conversation. LastActivity drives idle expiry.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey;size:64"`
	LastActivity time.Time `json:"last_activity" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Session) TableName() string {
	return "sessions"
}

// ChatMessage is one turn in a conversation, ordered by ID.
type ChatMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID string    `json:"session_id" gorm:"index;size:64;not null"`
	Role      string    `json:"role" gorm:"size:16;not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// UploadedFile records a file received through the upload endpoint,
// together with any extracted text kept for conversation context.
type UploadedFile struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	SessionID string    `json:"session_id" gorm:"index;size:64;not null"`
	Filename  string    `json:"filename" gorm:"size:255;not null"`
	Path      string    `json:"path" gorm:"size:512;not null"`
	Size      int64     `json:"size"`
	Kind      string    `json:"kind" gorm:"size:16;not null"`
	Extension string    `json:"extension" gorm:"size:16"`
	Content   string    `json:"-"`
	Analyzed  bool      `json:"analyzed"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

// Document is a generated file offered for download.
type Document struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Filename  string    `json:"filename" gorm:"size:255;not null"`
	Format    string    `json:"format" gorm:"size:16;not null"`
	Path      string    `json:"path" gorm:"size:512;not null"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// CalendarEvent is a scheduled greeting or reminder. Date is "YYYY-MM-DD";
// the dispatcher emails unsent events on their date.
type CalendarEvent struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Date      string     `json:"date" gorm:"index;size:10;not null"`
	Email     string     `json:"email" gorm:"size:255;not null"`
	EventType string     `json:"event_type" gorm:"size:32;not null"`
	Message   string     `json:"message"`
	ImagePath string     `json:"image_path" gorm:"size:512"`
	Sent      bool       `json:"sent" gorm:"index;default:false"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}
