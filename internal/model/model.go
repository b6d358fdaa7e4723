package model

// ContactMessage is one stored contact form submission. Records are only ever
// inserted; the Id is assigned by the database.
type ContactMessage struct {
	Id      int64  `db:"id"`
	Name    string `db:"name"`
	Email   string `db:"email"`
	Phone   string `db:"phone"`
	Message string `db:"message"`
}
