// Package trading provides typed access to frequently used calls of the
// Trading API.
package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-ebay/record"
	"github.com/mdzio/go-ebay/xmlapi"
)

// CategoriesTTL is the cache duration for the category tree.
const CategoriesTTL = 24 * time.Hour

var clnLog = logging.Get("trading-client")

// Client provides access to the Trading API. An API failure is returned as
// *xmlapi.APIError.
type Client struct {
	Name string
	xmlapi.Caller
}

func (c *Client) call(ctx context.Context, command string, input interface{}, opts ...xmlapi.Option) (*record.Record, error) {
	clnLog.Debugf("Calling %s on %s", command, c.Name)
	resp, err := c.Call(ctx, command, input, opts...)
	if err != nil {
		return nil, err
	}
	if apiErr := resp.APIError(); apiErr != nil {
		return nil, apiErr
	}
	for _, w := range resp.Warnings() {
		clnLog.Warningf("Call %s on %s returned warning: %s", command, c.Name, w)
	}
	return resp.Record(), nil
}

// GeteBayOfficialTime retrieves the official eBay system time.
func (c *Client) GeteBayOfficialTime(ctx context.Context) (time.Time, error) {
	r, err := c.call(ctx, "GeteBayOfficialTime", nil)
	if err != nil {
		return time.Time{}, err
	}
	t, err := r.Get("Timestamp").Time()
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid XML response for GeteBayOfficialTime: %w", err)
	}
	return t, nil
}

// GetUser retrieves a member. An empty userID selects the owner of the auth
// token.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	in := xmlapi.Mapping{xmlapi.M("DetailLevel", "ReturnAll")}
	if userID != "" {
		in = append(in, xmlapi.M("UserID", userID))
	}
	r, err := c.call(ctx, "GetUser", in)
	if err != nil {
		return nil, err
	}

	// build result
	e := r.Get("User")
	if !e.Exists() {
		return nil, errors.New("Invalid XML response for GetUser: missing User")
	}
	u := &User{}
	if err := u.ReadFrom(e); err != nil {
		return nil, fmt.Errorf("Invalid XML response for GetUser: %w", err)
	}
	return u, nil
}

// GetItem retrieves a listing with all details.
func (c *Client) GetItem(ctx context.Context, itemID string) (*Item, error) {
	r, err := c.call(ctx, "GetItem", xmlapi.Mapping{
		xmlapi.M("ItemID", itemID),
		xmlapi.M("DetailLevel", "ReturnAll"),
	})
	if err != nil {
		return nil, err
	}

	// build result
	e := r.Get("Item")
	if !e.Exists() {
		return nil, errors.New("Invalid XML response for GetItem: missing Item")
	}
	i := &Item{}
	if err := i.ReadFrom(e); err != nil {
		return nil, fmt.Errorf("Invalid XML response for GetItem: %w", err)
	}
	return i, nil
}

// GetCategories retrieves the category tree of a site down to levelLimit. A
// levelLimit of 0 retrieves all levels. Responses are cached for
// CategoriesTTL, if the Caller has a cache.
func (c *Client) GetCategories(ctx context.Context, siteID, levelLimit int) ([]*Category, error) {
	in := xmlapi.Mapping{
		xmlapi.M("CategorySiteID", siteID),
		xmlapi.M("DetailLevel", "ReturnAll"),
	}
	if levelLimit > 0 {
		in = append(in, xmlapi.M("LevelLimit", levelLimit))
	}
	r, err := c.call(ctx, "GetCategories", in, xmlapi.WithSiteID(siteID), xmlapi.WithCacheTTL(CategoriesTTL))
	if err != nil {
		return nil, err
	}

	// build result
	var cs []*Category
	for _, e := range r.Path("CategoryArray.Category").Items() {
		cat := &Category{}
		if err := cat.ReadFrom(e); err != nil {
			return nil, fmt.Errorf("Invalid XML response for GetCategories: %w", err)
		}
		cs = append(cs, cat)
	}
	return cs, nil
}
