package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Price       float64            `bson:"price" json:"price"`
	ArtistID    primitive.ObjectID `bson:"artistId,omitempty" json:"artistId,omitempty"`
	ArtistName  string             `bson:"artistName,omitempty" json:"artistName,omitempty"`
	Series      string             `bson:"series,omitempty" json:"series,omitempty"`
	Category    StringList         `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ImagePath   string             `bson:"imagePath,omitempty" json:"imagePath,omitempty"`

	// Limited-edition ledger. TotalCopies is fixed at creation; SoldCopies
	// only grows, and IsSoldOut must equal soldCopies >= totalCopies in every
	// persisted state.
	IsLimitedEdition bool     `bson:"isLimitedEdition" json:"isLimitedEdition"`
	TotalCopies      int      `bson:"totalCopies,omitempty" json:"totalCopies,omitempty"`
	SoldCopies       int      `bson:"soldCopies" json:"soldCopies"`
	IsSoldOut        bool     `bson:"isSoldOut" json:"isSoldOut"`
	WaitlistEmails   []string `bson:"waitlistEmails,omitempty" json:"-"`

	SalesCount int        `bson:"salesCount" json:"salesCount"`
	IsActive   bool       `bson:"isActive" json:"isActive"`
	IsDeleted  bool       `bson:"isDeleted" json:"isDeleted,omitempty"`
	DeletedAt  *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// AvailableCopies is the number of copies still purchasable. Zero for
// regular products.
func (p Product) AvailableCopies() int {
	if !p.IsLimitedEdition || p.SoldCopies >= p.TotalCopies {
		return 0
	}
	return p.TotalCopies - p.SoldCopies
}
