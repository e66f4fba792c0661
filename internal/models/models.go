package models

import (
	"time"

	"gorm.io/gorm"
)

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Name                string     `gorm:"not null" json:"name"`
	Email               string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	Phone               string     `gorm:"not null" json:"phone"`
	Role                string     `gorm:"not null;default:user" json:"role"` // user | admin
	ResetPasswordToken  string     `gorm:"index" json:"-"`                    // SHA-256 от токена сброса
	ResetPasswordExpire *time.Time `json:"-"`
}

// QueueStatus — состояние очереди: принимает ли она новых участников.
type QueueStatus string

const (
	QueueActive QueueStatus = "active"
	QueuePaused QueueStatus = "paused"
)

type Queue struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	// Максимальное число участников.
	MaxSize int `gorm:"not null" json:"max_size"`
	// Текущее число участников, всегда равно числу записей Joined.
	CurrentSize int `gorm:"not null;default:0" json:"current_size"`
	// Минут на обслуживание одного человека.
	EstimatedTimePerPerson int `gorm:"not null" json:"estimated_time_per_person"`
	// Счётчик вызванных; двигается только действием админа.
	CurrentNumber int         `gorm:"not null;default:0" json:"current_number"`
	Status        QueueStatus `gorm:"not null;default:active" json:"status"`
	// Создатель очереди, выставляется один раз.
	AdminID uint `gorm:"index;not null" json:"admin_id"`
}

// MembershipStatus — состояние записи участия. Joined — единственное
// нетерминальное состояние; из Completed и Cancelled переходов нет.
type MembershipStatus string

const (
	StatusJoined    MembershipStatus = "Joined"
	StatusCompleted MembershipStatus = "Completed"
	StatusCancelled MembershipStatus = "Cancelled"
)

// UserQueue — запись участия пользователя в очереди, одна строка на попытку.
type UserQueue struct {
	gorm.Model
	UserID   uint             `gorm:"index;not null" json:"user_id"`
	User     User             `gorm:"foreignKey:UserID" json:"-"`
	QueueID  uint             `gorm:"index;not null" json:"queue_id"`
	Status   MembershipStatus `gorm:"index;not null;default:Joined" json:"status"`
	JoinedAt time.Time        `gorm:"index;not null" json:"joined_at"`
	LeftAt   *time.Time       `json:"left_at"`   // Заполняется при выходе из Joined
	WaitTime *int             `json:"wait_time"` // Минуты ожидания, считается в момент выхода
}

type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"index;not null" json:"user_id"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"not null" json:"message"`
	IsRead  bool   `gorm:"default:false" json:"is_read"`
}
