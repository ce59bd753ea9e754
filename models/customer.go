package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer places orders and receives the confirmation email.
type Customer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name" gorm:"type:varchar(255);not null"`
	Mail       string         `json:"mail" gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone      string         `json:"phone" gorm:"type:varchar(20)"`
	Birthdate  *time.Time     `json:"birthdate,omitempty" gorm:"type:date"`
	Place      string         `json:"place" gorm:"type:varchar(255)"`
	Number     string         `json:"number" gorm:"type:varchar(10)"`
	Zipcode    string         `json:"zipcode" gorm:"type:varchar(9)"`
	District   string         `json:"district" gorm:"type:varchar(255)"`
	Complement *string        `json:"complement"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// CustomerRequest is the create/update payload. Pointer fields are optional on update.
type CustomerRequest struct {
	Name       *string `json:"name" binding:"omitempty,max=255"`
	Mail       *string `json:"mail" binding:"omitempty,email,max=255"`
	Phone      *string `json:"phone" binding:"omitempty,max=20"`
	Birthdate  *string `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	Place      *string `json:"place" binding:"omitempty,max=255"`
	Number     *string `json:"number" binding:"omitempty,max=10"`
	Zipcode    *string `json:"zipcode" binding:"omitempty,max=9"`
	District   *string `json:"district" binding:"omitempty,max=255"`
	Complement *string `json:"complement" binding:"omitempty,max=255"`
}

// MissingForCreate names the fields a new customer must carry.
func (r *CustomerRequest) MissingForCreate() []string {
	var missing []string
	required := []struct {
		name string
		v    *string
	}{
		{"name", r.Name}, {"mail", r.Mail}, {"phone", r.Phone}, {"birthdate", r.Birthdate},
		{"place", r.Place}, {"number", r.Number}, {"zipcode", r.Zipcode}, {"district", r.District},
	}
	for _, f := range required {
		if f.v == nil || *f.v == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Apply copies the supplied fields onto c.
func (r *CustomerRequest) Apply(c *Customer) error {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Mail != nil {
		c.Mail = *r.Mail
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Birthdate != nil {
		d, err := time.Parse("2006-01-02", *r.Birthdate)
		if err != nil {
			return err
		}
		c.Birthdate = &d
	}
	if r.Place != nil {
		c.Place = *r.Place
	}
	if r.Number != nil {
		c.Number = *r.Number
	}
	if r.Zipcode != nil {
		c.Zipcode = *r.Zipcode
	}
	if r.District != nil {
		c.District = *r.District
	}
	if r.Complement != nil {
		c.Complement = r.Complement
	}
	return nil
}
