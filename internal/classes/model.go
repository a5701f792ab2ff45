package classes

import "time"

type Category string
type Equipment string
type Status string

const (
	CategoryGroup    Category = "group"
	CategoryPersonal Category = "personal"

	EquipmentMat      Equipment = "mat"
	EquipmentReformer Equipment = "reformer"
	EquipmentBoth     Equipment = "both"

	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

type ClassSlot struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	DurationMin int       `db:"duration_min" json:"duration_min"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Enrolled    int       `db:"enrolled" json:"enrolled"`
	Category    Category  `db:"category" json:"category"`
	Equipment   Equipment `db:"equipment" json:"equipment"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type ClassSlotWithAvailability struct {
	ClassSlot
	Available      int  `json:"available"`
	IsFull         bool `json:"is_full"`
	WaitlistLength int  `json:"waitlist_length"`
}

type CreateClassRequest struct {
	Title       string `json:"title" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	DurationMin int    `json:"duration_min" binding:"required,min=15"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	Category    string `json:"category" binding:"required,oneof=group personal"`
	Equipment   string `json:"equipment" binding:"required,oneof=mat reformer both"`
}
