package model

// Contador is a named monotonic counter. The only one today is "ticket",
// advanced with a single atomic UPDATE … RETURNING — never read-then-write.
type Contador struct {
	Nombre string `gorm:"primaryKey;type:varchar(30)"`
	Ultimo int64  `gorm:"not null;default:0"`
}

func (Contador) TableName() string { return "contadores" }

// NombreContadorTicket is the seed row created by the schema patches.
const NombreContadorTicket = "ticket"
