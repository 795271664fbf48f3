package db

import "time"

// Contact submission statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactSubmission 保存前台联系表单的提交内容。
// 仅后台可以修改 Status。
type ContactSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Subject   string    `gorm:"size:200;not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Budget    string    `gorm:"size:100" json:"budget,omitempty"`
	Timeline  string    `gorm:"size:100" json:"timeline,omitempty"`
	Status    string    `gorm:"size:20;index;default:new" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名。
func (ContactSubmission) TableName() string {
	return "contact_submissions"
}
