package models

// Account 表示系統中已註冊的帳號
type Account struct {
	AccountID uint   `gorm:"primaryKey;column:account_id" json:"accountId"`
	Username  string `gorm:"uniqueIndex;size:255;not null" json:"username"` // 用戶名，必須唯一
	Password  string `gorm:"size:255;not null" json:"password"`              // 明文儲存，登入時直接比對
}

// TableName 指定 GORM 使用的資料表名稱
func (Account) TableName() string {
	return "account"
}
