package model

type Observation struct {
	ID                int64  `gorm:"column:id;primaryKey;autoIncrement"`
	DateStr           string `gorm:"column:date_str;type:text;not null"`
	Floor             string `gorm:"column:floor;type:text;not null"`
	Location          string `gorm:"column:location;type:text;not null"`
	Description       string `gorm:"column:description;type:text"`
	Impact            string `gorm:"column:impact;type:text"`
	Likelihood        int    `gorm:"column:likelihood"`
	Severity          int    `gorm:"column:severity"`
	RiskRating        int    `gorm:"column:risk_rating;index"`
	CorrectiveAction  string `gorm:"column:corrective_action;type:text"`
	ResponsiblePerson string `gorm:"column:responsible_person;type:text"`
	Deadline          string `gorm:"column:deadline;type:text"`
	PhotoBytes        []byte `gorm:"column:photo_bytes;type:blob"`
}

func (Observation) TableName() string {
	return "observations"
}
