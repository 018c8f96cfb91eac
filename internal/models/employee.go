package models

import "time"

// Rank determines the commission rate an employee earns on non-exempt sales.
type Rank string

const (
	RankTrainee        Rank = "Trainee"
	RankMechanic       Rank = "Mechanic"
	RankSeniorMechanic Rank = "Senior Mechanic"
	RankLeadUpgrade    Rank = "Lead Upgrade Specialist"
	RankStockManager   Rank = "Stock Manager"
	RankManager        Rank = "Manager"
	RankCEO            Rank = "CEO"
)

// DefaultHood is assigned when an employee has no team yet.
const DefaultHood = "unassigned"

type Employee struct {
	ID   uint   `gorm:"primaryKey"`
	CID  string `gorm:"column:cid;size:40;uniqueIndex;not null"`
	Name string `gorm:"size:120;not null"`
	Rank Rank   `gorm:"size:40;not null"`
	Hood string `gorm:"size:80;not null;default:'unassigned';index"`
	// Optional login credential pair, issued by an admin. The hash is bcrypt;
	// credential verification itself lives outside this service.
	Username     *string `gorm:"size:80;uniqueIndex"`
	PasswordHash string  `gorm:"size:100"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hood is a named team/territory grouping used for leaderboard aggregation.
type Hood struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:80;uniqueIndex;not null"`
	CreatedAt time.Time
}
