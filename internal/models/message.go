package models

// MaxMessageTextLength 訊息內容的最大字元數
// 欄位為 varchar(255)，保留兩個位元組存放長度
const MaxMessageTextLength = 253

// Message 表示一則由帳號發佈的訊息
type Message struct {
	MessageID       uint   `gorm:"primaryKey;column:message_id" json:"messageId"`
	PostedBy        uint   `gorm:"column:posted_by;index;not null" json:"postedBy"` // 發佈者的 account_id
	MessageText     string `gorm:"column:message_text;size:255;not null" json:"messageText"`
	TimePostedEpoch int64  `gorm:"column:time_posted_epoch" json:"timePostedEpoch"`
}

// TableName 指定 GORM 使用的資料表名稱
func (Message) TableName() string {
	return "message"
}

// MessageEventType 訊息事件類型
type MessageEventType string

const (
	MessageCreated MessageEventType = "created"
	MessageUpdated MessageEventType = "updated"
	MessageDeleted MessageEventType = "deleted"
)

// MessageEvent 推送給即時訂閱者的訊息異動事件
type MessageEvent struct {
	Type    MessageEventType `json:"type"`
	Message Message          `json:"message"`
}
