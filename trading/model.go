package trading

import (
	"fmt"
	"strconv"
	"time"

	"github.com/mdzio/go-ebay/record"
	"github.com/mdzio/go-ebay/xmlapi"
)

// Listing types
const (
	ListingTypeChinese    = "Chinese"
	ListingTypeFixedPrice = "FixedPriceItem"
)

// Listing states
const (
	ListingStatusActive    = "Active"
	ListingStatusCompleted = "Completed"
	ListingStatusEnded     = "Ended"
)

// Amount is a price with currency. On the wire the currency is the attribute
// currencyID.
type Amount struct {
	Value      float64
	CurrencyID string
}

// ReadFrom reads an amount from an element with or without attributes.
func (a *Amount) ReadFrom(r *record.Record) error {
	if !r.Exists() {
		return nil
	}
	v := r
	if r.IsMap() {
		v = r.Get("value")
		a.CurrencyID = r.Get("attr").Get("currencyID").String()
	}
	if v.String() == "" {
		return nil
	}
	f, err := v.Float64()
	if err != nil {
		return err
	}
	a.Value = f
	return nil
}

// ToValue returns the amount as attributed element content.
func (a Amount) ToValue() xmlapi.Value {
	v := strconv.FormatFloat(a.Value, 'f', -1, 64)
	if a.CurrencyID == "" {
		return xmlapi.Scalar(v)
	}
	return xmlapi.WithAttrs(v, xmlapi.Attr{Name: "currencyID", Value: a.CurrencyID})
}

func (a Amount) String() string {
	return fmt.Sprintf("%.2f %s", a.Value, a.CurrencyID)
}

// User describes an eBay member.
type User struct {
	UserID                  string
	Email                   string
	EIASToken               string
	Site                    string
	Status                  string
	FeedbackScore           int
	PositiveFeedbackPercent float64
	IDVerified              bool
	RegistrationDate        time.Time
}

// ReadFrom reads the field values from a User element.
func (u *User) ReadFrom(r *record.Record) error {
	f := &fieldReader{rec: r}
	u.UserID = f.str("UserID")
	u.Email = f.str("Email")
	u.EIASToken = f.str("EIASToken")
	u.Site = f.str("Site")
	u.Status = f.str("Status")
	u.FeedbackScore = f.int("FeedbackScore")
	u.PositiveFeedbackPercent = f.float("PositiveFeedbackPercent")
	u.IDVerified = f.bool("IDVerified")
	u.RegistrationDate = f.time("RegistrationDate")
	return f.err
}

// ToValue returns the content of a User element.
func (u *User) ToValue() xmlapi.Value {
	return xmlapi.Mapping{
		xmlapi.M("UserID", u.UserID),
		xmlapi.M("Email", u.Email),
		xmlapi.M("EIASToken", u.EIASToken),
		xmlapi.M("Site", u.Site),
		xmlapi.M("Status", u.Status),
		xmlapi.M("FeedbackScore", u.FeedbackScore),
		xmlapi.M("PositiveFeedbackPercent", u.PositiveFeedbackPercent),
		xmlapi.M("IDVerified", u.IDVerified),
		xmlapi.M("RegistrationDate", u.RegistrationDate),
	}
}

// Category is a node of the category tree of a site.
type Category struct {
	CategoryID    string
	CategoryName  string
	CategoryLevel int

	// ParentIDs contains the id of the parent category. Top level categories
	// refer to themselves.
	ParentIDs []string

	LeafCategory bool
	Expired      bool
}

// ReadFrom reads the field values from a Category element.
func (c *Category) ReadFrom(r *record.Record) error {
	f := &fieldReader{rec: r}
	c.CategoryID = f.str("CategoryID")
	c.CategoryName = f.str("CategoryName")
	c.CategoryLevel = f.int("CategoryLevel")
	c.ParentIDs = f.strs("CategoryParentID")
	c.LeafCategory = f.bool("LeafCategory")
	c.Expired = f.bool("Expired")
	return f.err
}

// ToValue returns the content of a Category element.
func (c *Category) ToValue() xmlapi.Value {
	return xmlapi.Mapping{
		xmlapi.M("CategoryID", c.CategoryID),
		xmlapi.M("CategoryName", c.CategoryName),
		xmlapi.M("CategoryLevel", c.CategoryLevel),
		xmlapi.M("CategoryParentID", c.ParentIDs),
		xmlapi.M("LeafCategory", c.LeafCategory),
		xmlapi.M("Expired", c.Expired),
	}
}

// SellingStatus is the progress of a listing.
type SellingStatus struct {
	CurrentPrice  Amount
	BidCount      int
	QuantitySold  int
	ListingStatus string
}

// Item is a listing.
type Item struct {
	ItemID          string
	Title           string
	Description     string
	Site            string
	Country         string
	Currency        string
	Location        string
	ListingType     string
	ListingDuration string
	Quantity        int
	StartPrice      Amount
	BuyItNowPrice   Amount
	StartTime       time.Time
	EndTime         time.Time
	PictureURLs     []string
	PrimaryCategory Category
	Seller          User
	SellingStatus   SellingStatus
}

// ReadFrom reads the field values from an Item element.
func (i *Item) ReadFrom(r *record.Record) error {
	f := &fieldReader{rec: r}
	i.ItemID = f.str("ItemID")
	i.Title = f.str("Title")
	i.Description = f.str("Description")
	i.Site = f.str("Site")
	i.Country = f.str("Country")
	i.Currency = f.str("Currency")
	i.Location = f.str("Location")
	i.ListingType = f.str("ListingType")
	i.ListingDuration = f.str("ListingDuration")
	i.Quantity = f.int("Quantity")
	i.StartPrice = f.amount("StartPrice")
	i.BuyItNowPrice = f.amount("BuyItNowPrice")
	i.StartTime = f.time("ListingDetails.StartTime")
	i.EndTime = f.time("ListingDetails.EndTime")
	i.PictureURLs = f.strs("PictureDetails.PictureURL")
	i.SellingStatus.CurrentPrice = f.amount("SellingStatus.CurrentPrice")
	i.SellingStatus.BidCount = f.int("SellingStatus.BidCount")
	i.SellingStatus.QuantitySold = f.int("SellingStatus.QuantitySold")
	i.SellingStatus.ListingStatus = f.str("SellingStatus.ListingStatus")
	if f.err != nil {
		return f.err
	}
	if err := i.PrimaryCategory.ReadFrom(r.Get("PrimaryCategory")); err != nil {
		return fmt.Errorf("PrimaryCategory: %w", err)
	}
	if err := i.Seller.ReadFrom(r.Get("Seller")); err != nil {
		return fmt.Errorf("Seller: %w", err)
	}
	return nil
}

// Ended returns true, if the listing is over.
func (i *Item) Ended() bool {
	switch i.SellingStatus.ListingStatus {
	case ListingStatusCompleted, ListingStatusEnded:
		return true
	}
	return false
}

// ToValue returns the content of an Item element.
func (i *Item) ToValue() xmlapi.Value {
	return xmlapi.Mapping{
		xmlapi.M("ItemID", i.ItemID),
		xmlapi.M("Title", i.Title),
		xmlapi.M("Description", i.Description),
		xmlapi.M("Site", i.Site),
		xmlapi.M("Country", i.Country),
		xmlapi.M("Currency", i.Currency),
		xmlapi.M("Location", i.Location),
		xmlapi.M("ListingType", i.ListingType),
		xmlapi.M("ListingDuration", i.ListingDuration),
		xmlapi.M("Quantity", i.Quantity),
		xmlapi.M("StartPrice", i.StartPrice.ToValue()),
		xmlapi.M("BuyItNowPrice", i.BuyItNowPrice.ToValue()),
		xmlapi.M("ListingDetails", xmlapi.Mapping{
			xmlapi.M("StartTime", i.StartTime),
			xmlapi.M("EndTime", i.EndTime),
		}),
		xmlapi.M("PictureDetails", xmlapi.Mapping{
			xmlapi.M("PictureURL", i.PictureURLs),
		}),
		xmlapi.M("PrimaryCategory", xmlapi.Mapping{
			xmlapi.M("CategoryID", i.PrimaryCategory.CategoryID),
			xmlapi.M("CategoryName", i.PrimaryCategory.CategoryName),
		}),
		xmlapi.M("Seller", i.Seller.ToValue()),
		xmlapi.M("SellingStatus", xmlapi.Mapping{
			xmlapi.M("CurrentPrice", i.SellingStatus.CurrentPrice.ToValue()),
			xmlapi.M("BidCount", i.SellingStatus.BidCount),
			xmlapi.M("QuantitySold", i.SellingStatus.QuantitySold),
			xmlapi.M("ListingStatus", i.SellingStatus.ListingStatus),
		}),
	}
}
